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
	"errors"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pizzahunt/pizzahunt/cache"
	"github.com/pizzahunt/pizzahunt/internal/apierror"
	"github.com/pizzahunt/pizzahunt/model"
)

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// CreatePizza stores one pizza.
func (p *PizzaHunt) CreatePizza(ctx context.Context, pizza model.Pizza) (*model.Pizza, error) {
	created, err := p.CreatePizzas(ctx, []model.Pizza{pizza})
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "pizza was not created", nil)
	}
	return &created[0], nil
}

// CreatePizzas stores a batch of pizzas in one write; either all are created or
// none are.
func (p *PizzaHunt) CreatePizzas(ctx context.Context, pizzas []model.Pizza) ([]model.Pizza, error) {
	ctx, span := tracer.Start(ctx, "CreatePizzas")
	defer span.End()
	span.SetAttributes(attribute.Int("pizzahunt.batch_size", len(pizzas)))

	created, err := p.datasource.CreatePizzas(ctx, pizzas)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	for i := range created {
		p.SendWebhook(ctx, NewWebhook{Event: EventPizzaCreated, Payload: created[i]})
	}
	return created, nil
}

// GetAllPizzas returns every pizza, newest first, with comments.
func (p *PizzaHunt) GetAllPizzas(ctx context.Context) ([]model.Pizza, error) {
	ctx, span := tracer.Start(ctx, "GetAllPizzas")
	defer span.End()

	pizzas, err := p.datasource.GetAllPizzas(ctx)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return pizzas, nil
}

// GetPizzaByID reads through the cache when one is configured.
func (p *PizzaHunt) GetPizzaByID(ctx context.Context, id string) (*model.Pizza, error) {
	ctx, span := tracer.Start(ctx, "GetPizzaByID")
	defer span.End()
	span.SetAttributes(attribute.String("pizzahunt.pizza_id", id))

	if p.cache != nil {
		var cached model.Pizza
		err := p.cache.Get(ctx, cache.PizzaKey(id), &cached)
		if err == nil {
			span.AddEvent("cache hit")
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			logrus.WithError(err).Warn("pizza cache read failed")
		}
	}

	pizza, err := p.datasource.GetPizzaByID(ctx, id)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, cache.PizzaKey(id), pizza, p.cacheTTL); err != nil {
			logrus.WithError(err).Warn("pizza cache write failed")
		}
	}
	return pizza, nil
}

func (p *PizzaHunt) UpdatePizza(ctx context.Context, id string, update model.PizzaUpdate) (*model.Pizza, error) {
	ctx, span := tracer.Start(ctx, "UpdatePizza")
	defer span.End()
	span.SetAttributes(attribute.String("pizzahunt.pizza_id", id))

	pizza, err := p.datasource.UpdatePizza(ctx, id, update)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	p.invalidate(ctx, id)
	p.SendWebhook(ctx, NewWebhook{Event: EventPizzaUpdated, Payload: pizza})
	return pizza, nil
}

// DeletePizza removes the pizza with its comments and returns what was deleted.
func (p *PizzaHunt) DeletePizza(ctx context.Context, id string) (*model.Pizza, error) {
	ctx, span := tracer.Start(ctx, "DeletePizza")
	defer span.End()
	span.SetAttributes(attribute.String("pizzahunt.pizza_id", id))

	pizza, err := p.datasource.DeletePizza(ctx, id)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	p.invalidate(ctx, id)
	p.SendWebhook(ctx, NewWebhook{Event: EventPizzaDeleted, Payload: pizza})
	return pizza, nil
}

func (p *PizzaHunt) invalidate(ctx context.Context, pizzaID string) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Delete(ctx, cache.PizzaKey(pizzaID)); err != nil {
		logrus.WithError(err).WithField("pizza_id", pizzaID).Warn("pizza cache invalidation failed")
	}
}
