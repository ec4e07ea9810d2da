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

	"github.com/pizzahunt/pizzahunt/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	pizza     // Interface for pizza documents
	comment   // Interface for comments and their embedded replies
	lifecycle // Interface for connection management
}

// pizza defines methods for handling pizza documents.
type pizza interface {
	CreatePizzas(ctx context.Context, pizzas []model.Pizza) ([]model.Pizza, error)              // Inserts one or more pizzas as a unit
	GetAllPizzas(ctx context.Context) ([]model.Pizza, error)                                    // Retrieves all pizzas, newest first, comments populated
	GetPizzaByID(ctx context.Context, id string) (*model.Pizza, error)                          // Retrieves a pizza by ID with its comments
	UpdatePizza(ctx context.Context, id string, update model.PizzaUpdate) (*model.Pizza, error) // Applies a partial update and returns the new document
	DeletePizza(ctx context.Context, id string) (*model.Pizza, error)                           // Deletes a pizza and its comments, returning the deleted document
}

// comment defines methods for handling comments and replies.
type comment interface {
	AddComment(ctx context.Context, pizzaID string, comment model.Comment) (*model.Pizza, error)        // Adds a comment and returns the updated pizza
	RemoveComment(ctx context.Context, pizzaID, commentID string) (*model.Pizza, error)                 // Removes a comment and returns the updated pizza
	AddReply(ctx context.Context, pizzaID, commentID string, reply model.Reply) (*model.Comment, error) // Pushes a reply onto a comment
	RemoveReply(ctx context.Context, pizzaID, commentID, replyID string) (*model.Comment, error)        // Pulls a reply from a comment
}

// lifecycle defines connection management methods.
type lifecycle interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

const (
	pizzaNotFound   = "No pizza found with this id!"
	commentNotFound = "No comment with this id!"
)
