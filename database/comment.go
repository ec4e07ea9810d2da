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

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/pizzahunt/pizzahunt/internal/apierror"
	"github.com/pizzahunt/pizzahunt/model"
)

const commentColumns = `comment_id, pizza_id, written_by, comment_body, replies, created_at`

func scanComment(row rowScanner) (model.Comment, error) {
	var c model.Comment
	var repliesJSON []byte
	if err := row.Scan(&c.CommentID, &c.PizzaID, &c.WrittenBy, &c.CommentBody, &repliesJSON, &c.CreatedAt); err != nil {
		return model.Comment{}, err
	}
	if err := json.Unmarshal(repliesJSON, &c.Replies); err != nil {
		return model.Comment{}, err
	}
	if c.Replies == nil {
		c.Replies = []model.Reply{}
	}
	c.ReplyCount = len(c.Replies)
	return c, nil
}

// AddComment stores the comment and returns the pizza it was attached to.
func (d Datasource) AddComment(ctx context.Context, pizzaID string, comment model.Comment) (*model.Pizza, error) {
	comment.PizzaID = pizzaID
	comment.ApplyDefaults(time.Now())

	repliesJSON, err := json.Marshal(comment.Replies)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal replies", err)
	}

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO comments (comment_id, pizza_id, written_by, comment_body, replies, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, comment.CommentID, pizzaID, comment.WrittenBy, comment.CommentBody, repliesJSON, comment.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "foreign_key_violation":
				return nil, apierror.NewAPIError(apierror.ErrNotFound, pizzaNotFound, err)
			case "unique_violation":
				return nil, apierror.NewAPIError(apierror.ErrConflict, "Comment with this ID already exists", err)
			}
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to save comment", err)
	}

	return d.GetPizzaByID(ctx, pizzaID)
}

// RemoveComment deletes the comment and returns the pizza it belonged to.
func (d Datasource) RemoveComment(ctx context.Context, pizzaID, commentID string) (*model.Pizza, error) {
	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM comments
		WHERE comment_id = $1 AND pizza_id = $2
	`, commentID, pizzaID)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete comment", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete comment", err)
	}
	if affected == 0 {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, commentNotFound, nil)
	}

	return d.GetPizzaByID(ctx, pizzaID)
}

// AddReply appends a reply to the comment's reply array.
func (d Datasource) AddReply(ctx context.Context, pizzaID, commentID string, reply model.Reply) (*model.Comment, error) {
	reply.ApplyDefaults(time.Now())
	replyJSON, err := json.Marshal(reply)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal reply", err)
	}

	row := d.Conn.QueryRowContext(ctx, `
		UPDATE comments
		SET replies = replies || jsonb_build_array($3::jsonb)
		WHERE comment_id = $1 AND pizza_id = $2
		RETURNING `+commentColumns,
		commentID, pizzaID, string(replyJSON))

	return scanCommentResult(row)
}

// RemoveReply drops the reply with replyID from the comment. Removing an unknown
// reply leaves the comment untouched.
func (d Datasource) RemoveReply(ctx context.Context, pizzaID, commentID, replyID string) (*model.Comment, error) {
	row := d.Conn.QueryRowContext(ctx, `
		UPDATE comments
		SET replies = COALESCE((
			SELECT jsonb_agg(r.value ORDER BY r.ordinality)
			FROM jsonb_array_elements(replies) WITH ORDINALITY AS r(value, ordinality)
			WHERE r.value->>'replyId' <> $3
		), '[]'::jsonb)
		WHERE comment_id = $1 AND pizza_id = $2
		RETURNING `+commentColumns,
		commentID, pizzaID, replyID)

	return scanCommentResult(row)
}

func scanCommentResult(row *sql.Row) (*model.Comment, error) {
	c, err := scanComment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, commentNotFound, nil)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update comment", err)
	}
	return &c, nil
}
