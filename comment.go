/*
Copyright 2024 Pizza Hunt Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pizzahunt

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pizzahunt/pizzahunt/model"
)

// AddComment attaches a comment to the pizza and returns the updated pizza.
func (p *PizzaHunt) AddComment(ctx context.Context, pizzaID string, comment model.Comment) (*model.Pizza, error) {
	ctx, span := tracer.Start(ctx, "AddComment")
	defer span.End()
	span.SetAttributes(attribute.String("pizzahunt.pizza_id", pizzaID))

	pizza, err := p.datasource.AddComment(ctx, pizzaID, comment)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	p.invalidate(ctx, pizzaID)
	p.SendWebhook(ctx, NewWebhook{Event: EventCommentCreated, Payload: pizza})
	return pizza, nil
}

// RemoveComment deletes the comment and returns the pizza it belonged to.
func (p *PizzaHunt) RemoveComment(ctx context.Context, pizzaID, commentID string) (*model.Pizza, error) {
	ctx, span := tracer.Start(ctx, "RemoveComment")
	defer span.End()
	span.SetAttributes(
		attribute.String("pizzahunt.pizza_id", pizzaID),
		attribute.String("pizzahunt.comment_id", commentID),
	)

	pizza, err := p.datasource.RemoveComment(ctx, pizzaID, commentID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	p.invalidate(ctx, pizzaID)
	p.SendWebhook(ctx, NewWebhook{Event: EventCommentDeleted, Payload: pizza})
	return pizza, nil
}

func (p *PizzaHunt) AddReply(ctx context.Context, pizzaID, commentID string, reply model.Reply) (*model.Comment, error) {
	ctx, span := tracer.Start(ctx, "AddReply")
	defer span.End()
	span.SetAttributes(
		attribute.String("pizzahunt.pizza_id", pizzaID),
		attribute.String("pizzahunt.comment_id", commentID),
	)

	comment, err := p.datasource.AddReply(ctx, pizzaID, commentID, reply)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	p.invalidate(ctx, pizzaID)
	p.SendWebhook(ctx, NewWebhook{Event: EventReplyCreated, Payload: comment})
	return comment, nil
}

func (p *PizzaHunt) RemoveReply(ctx context.Context, pizzaID, commentID, replyID string) (*model.Comment, error) {
	ctx, span := tracer.Start(ctx, "RemoveReply")
	defer span.End()
	span.SetAttributes(
		attribute.String("pizzahunt.pizza_id", pizzaID),
		attribute.String("pizzahunt.comment_id", commentID),
		attribute.String("pizzahunt.reply_id", replyID),
	)

	comment, err := p.datasource.RemoveReply(ctx, pizzaID, commentID, replyID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	p.invalidate(ctx, pizzaID)
	p.SendWebhook(ctx, NewWebhook{Event: EventReplyDeleted, Payload: comment})
	return comment, nil
}
