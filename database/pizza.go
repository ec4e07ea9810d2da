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

const pizzaColumns = `pizza_id, pizza_name, created_by, size, toppings, created_at`

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPizza(row rowScanner) (model.Pizza, error) {
	var p model.Pizza
	var toppingsJSON []byte
	if err := row.Scan(&p.PizzaID, &p.PizzaName, &p.CreatedBy, &p.Size, &toppingsJSON, &p.CreatedAt); err != nil {
		return model.Pizza{}, err
	}
	if err := json.Unmarshal(toppingsJSON, &p.Toppings); err != nil {
		return model.Pizza{}, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal toppings", err)
	}
	return p, nil
}

// CreatePizzas inserts every pizza inside one transaction, so a batch is accepted
// or rejected as a whole.
func (d Datasource) CreatePizzas(ctx context.Context, pizzas []model.Pizza) ([]model.Pizza, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	created := make([]model.Pizza, 0, len(pizzas))
	for _, p := range pizzas {
		p.ApplyDefaults(now)
		toppingsJSON, err := json.Marshal(p.Toppings)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal toppings", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO pizzas (pizza_id, pizza_name, created_by, size, toppings, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.PizzaID, p.PizzaName, p.CreatedBy, p.Size, toppingsJSON, p.CreatedAt)
		if err != nil {
			return nil, mapPizzaWriteError(err)
		}
		p.Populate([]model.Comment{})
		created = append(created, p)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit pizzas", err)
	}
	return created, nil
}

func (d Datasource) GetAllPizzas(ctx context.Context) ([]model.Pizza, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT `+pizzaColumns+`
		FROM pizzas
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve pizzas", err)
	}
	defer rows.Close()

	pizzas := []model.Pizza{}
	for rows.Next() {
		p, err := scanPizza(rows)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan pizza data", err)
		}
		pizzas = append(pizzas, p)
	}
	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over pizzas", err)
	}

	if err := populateComments(ctx, d.Conn, pizzas); err != nil {
		return nil, err
	}
	return pizzas, nil
}

func (d Datasource) GetPizzaByID(ctx context.Context, id string) (*model.Pizza, error) {
	return getPizzaByID(ctx, d.Conn, id)
}

func getPizzaByID(ctx context.Context, q queryer, id string) (*model.Pizza, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+pizzaColumns+`
		FROM pizzas
		WHERE pizza_id = $1
	`, id)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve pizza", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve pizza", err)
		}
		return nil, apierror.NewAPIError(apierror.ErrNotFound, pizzaNotFound, nil)
	}
	p, err := scanPizza(rows)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan pizza data", err)
	}
	rows.Close()

	pizzas := []model.Pizza{p}
	if err := populateComments(ctx, q, pizzas); err != nil {
		return nil, err
	}
	return &pizzas[0], nil
}

// UpdatePizza only overwrites the fields set in update; validation happens in the API layer.
func (d Datasource) UpdatePizza(ctx context.Context, id string, update model.PizzaUpdate) (*model.Pizza, error) {
	var toppingsJSON []byte
	if update.Toppings != nil {
		var err error
		toppingsJSON, err = json.Marshal(*update.Toppings)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal toppings", err)
		}
	}

	row := d.Conn.QueryRowContext(ctx, `
		UPDATE pizzas
		SET pizza_name = COALESCE($2, pizza_name),
			created_by = COALESCE($3, created_by),
			size = COALESCE($4, size),
			toppings = COALESCE($5, toppings)
		WHERE pizza_id = $1
		RETURNING `+pizzaColumns,
		id, nullString(update.PizzaName), nullString(update.CreatedBy), nullString(update.Size), toppingsJSON)

	p, err := scanPizza(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, pizzaNotFound, nil)
		}
		return nil, mapPizzaWriteError(err)
	}

	pizzas := []model.Pizza{p}
	if err := populateComments(ctx, d.Conn, pizzas); err != nil {
		return nil, err
	}
	return &pizzas[0], nil
}

// DeletePizza removes the pizza and, through the foreign key, its comments. The
// returned document carries the comments it had before deletion.
func (d Datasource) DeletePizza(ctx context.Context, id string) (*model.Pizza, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deleted, err := getPizzaByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM pizzas WHERE pizza_id = $1`, id)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to delete pizza", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit pizza deletion", err)
	}
	return deleted, nil
}

// populateComments loads the comments of all given pizzas with a single query and
// attaches them in creation order.
func populateComments(ctx context.Context, q queryer, pizzas []model.Pizza) error {
	if len(pizzas) == 0 {
		return nil
	}

	ids := make([]string, 0, len(pizzas))
	for _, p := range pizzas {
		ids = append(ids, p.PizzaID)
	}

	rows, err := q.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE pizza_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`, pq.Array(ids))
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve comments", err)
	}
	defer rows.Close()

	byPizza := make(map[string][]model.Comment, len(pizzas))
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan comment data", err)
		}
		byPizza[c.PizzaID] = append(byPizza[c.PizzaID], c)
	}
	if err := rows.Err(); err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over comments", err)
	}

	for i := range pizzas {
		comments := byPizza[pizzas[i].PizzaID]
		if comments == nil {
			comments = []model.Comment{}
		}
		ids := make([]string, 0, len(comments))
		for _, c := range comments {
			ids = append(ids, c.CommentID)
		}
		pizzas[i].CommentIDs = ids
		pizzas[i].Populate(comments)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapPizzaWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return apierror.NewAPIError(apierror.ErrConflict, "Pizza with this ID already exists", err)
		case "not_null_violation", "check_violation":
			return apierror.NewAPIError(apierror.ErrInvalidInput, "Pizza failed validation", err)
		default:
			return apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", err)
		}
	}
	return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to save pizza", err)
}
