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

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pizzahunt/pizzahunt/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Pizza methods

func (m *MockDataSource) CreatePizzas(ctx context.Context, pizzas []model.Pizza) ([]model.Pizza, error) {
	args := m.Called(ctx, pizzas)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pizza), args.Error(1)
}

func (m *MockDataSource) GetAllPizzas(ctx context.Context) ([]model.Pizza, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pizza), args.Error(1)
}

func (m *MockDataSource) GetPizzaByID(ctx context.Context, id string) (*model.Pizza, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pizza), args.Error(1)
}

func (m *MockDataSource) UpdatePizza(ctx context.Context, id string, update model.PizzaUpdate) (*model.Pizza, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pizza), args.Error(1)
}

func (m *MockDataSource) DeletePizza(ctx context.Context, id string) (*model.Pizza, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pizza), args.Error(1)
}

// Comment methods

func (m *MockDataSource) AddComment(ctx context.Context, pizzaID string, comment model.Comment) (*model.Pizza, error) {
	args := m.Called(ctx, pizzaID, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pizza), args.Error(1)
}

func (m *MockDataSource) RemoveComment(ctx context.Context, pizzaID, commentID string) (*model.Pizza, error) {
	args := m.Called(ctx, pizzaID, commentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pizza), args.Error(1)
}

func (m *MockDataSource) AddReply(ctx context.Context, pizzaID, commentID string, reply model.Reply) (*model.Comment, error) {
	args := m.Called(ctx, pizzaID, commentID, reply)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockDataSource) RemoveReply(ctx context.Context, pizzaID, commentID, replyID string) (*model.Comment, error) {
	args := m.Called(ctx, pizzaID, commentID, replyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

// Lifecycle

func (m *MockDataSource) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDataSource) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
