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

package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pizzahunt/pizzahunt/model"
)

var errEmptyBatch = errors.New("at least one pizza is required")

// CreatePizza has no required fields. Field types are checked when the body is
// decoded and missing values are defaulted by the datasource.
type CreatePizza struct {
	PizzaName string         `json:"pizzaName"`
	CreatedBy string         `json:"createdBy"`
	Size      string         `json:"size"`
	Toppings  model.Toppings `json:"toppings"`
}

// UpdatePizza only changes the fields that are present in the request.
type UpdatePizza struct {
	PizzaName *string   `json:"pizzaName"`
	CreatedBy *string   `json:"createdBy"`
	Size      *string   `json:"size"`
	Toppings  *[]string `json:"toppings"`
}

type CreateComment struct {
	WrittenBy   string `json:"writtenBy"`
	CommentBody string `json:"commentBody"`
}

type CreateReply struct {
	WrittenBy string `json:"writtenBy"`
	ReplyBody string `json:"replyBody"`
}

// ValidateCreatePizzas rejects an empty batch. Elements are not validated, so a
// batch is accepted or rejected as a whole only on its shape.
func ValidateCreatePizzas(pizzas []CreatePizza) error {
	if len(pizzas) == 0 {
		return errEmptyBatch
	}
	return nil
}

func (p CreatePizza) ToPizza() model.Pizza {
	return model.Pizza{
		PizzaName: p.PizzaName,
		CreatedBy: p.CreatedBy,
		Size:      p.Size,
		Toppings:  []string(p.Toppings),
	}
}

func ToPizzas(pizzas []CreatePizza) []model.Pizza {
	out := make([]model.Pizza, 0, len(pizzas))
	for _, p := range pizzas {
		out = append(out, p.ToPizza())
	}
	return out
}

func (u *UpdatePizza) ValidateUpdatePizza() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.PizzaName, validation.NilOrNotEmpty),
		validation.Field(&u.CreatedBy, validation.NilOrNotEmpty),
		validation.Field(&u.Size, validation.NilOrNotEmpty, validation.In(model.PizzaSizes...)),
	)
}

func (u UpdatePizza) ToPizzaUpdate() model.PizzaUpdate {
	return model.PizzaUpdate{
		PizzaName: u.PizzaName,
		CreatedBy: u.CreatedBy,
		Size:      u.Size,
		Toppings:  u.Toppings,
	}
}

func (c *CreateComment) ValidateCreateComment() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.WrittenBy, validation.Required),
		validation.Field(&c.CommentBody, validation.Required),
	)
}

func (c CreateComment) ToComment() model.Comment {
	return model.Comment{WrittenBy: c.WrittenBy, CommentBody: c.CommentBody}
}

func (r *CreateReply) ValidateCreateReply() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.WrittenBy, validation.Required),
		validation.Field(&r.ReplyBody, validation.Required),
	)
}

func (r CreateReply) ToReply() model.Reply {
	return model.Reply{WrittenBy: r.WrittenBy, ReplyBody: r.ReplyBody}
}
