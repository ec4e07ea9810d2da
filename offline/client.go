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

package offline

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pizzahunt/pizzahunt/model"
)

// Enqueuer is the part of the Store the client needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, record any) (int64, error)
}

// SinglePizzaAPI creates one pizza at a time.
type SinglePizzaAPI interface {
	CreatePizza(ctx context.Context, pizza PizzaSubmission) (model.Pizza, error)
}

type SubmitResult struct {
	// Queued is true when the server could not be reached and the pizza was saved
	// locally under Key.
	Queued bool
	Key    int64
	Pizza  model.Pizza
}

// Client submits pizzas directly and falls back to the local queue when offline.
type Client struct {
	api   SinglePizzaAPI
	queue Enqueuer
}

func NewClient(api SinglePizzaAPI, queue Enqueuer) *Client {
	return &Client{api: api, queue: queue}
}

// SubmitPizza posts pizza. If no response arrives the submission is queued for the
// next flush; a rejection from the server is returned and nothing is queued.
func (c *Client) SubmitPizza(ctx context.Context, pizza PizzaSubmission) (SubmitResult, error) {
	created, err := c.api.CreatePizza(ctx, pizza)
	if err == nil {
		return SubmitResult{Pizza: created}, nil
	}
	if !IsTransportError(err) {
		return SubmitResult{}, err
	}

	key, qErr := c.queue.Enqueue(ctx, pizza)
	if qErr != nil {
		return SubmitResult{}, errors.Wrap(qErr, "queue pizza while offline")
	}

	logrus.WithFields(logrus.Fields{
		"component": "client",
		"key":       key,
		"error":     err,
	}).Warn("pizza api unreachable, submission queued")
	return SubmitResult{Queued: true, Key: key}, nil
}
