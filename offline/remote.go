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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pizzahunt/pizzahunt/internal/request"
	"github.com/pizzahunt/pizzahunt/model"
)

const (
	// PizzasPath is the batch-create endpoint.
	PizzasPath = "/api/pizzas"

	apiKeyHeader = "X-Pizzahunt-Key"
)

// PizzaSubmission is what the order form posts.
type PizzaSubmission struct {
	PizzaName string         `json:"pizzaName"`
	CreatedBy string         `json:"createdBy"`
	Size      string         `json:"size,omitempty"`
	Toppings  model.Toppings `json:"toppings,omitempty"`
}

// UnmarshalJSON accepts any JSON object. Queued records are not validated, so
// fields of the wrong type are kept as their JSON text and missing fields stay
// empty for the server to default.
func (s *PizzaSubmission) UnmarshalJSON(data []byte) error {
	var fields struct {
		PizzaName json.RawMessage `json:"pizzaName"`
		CreatedBy json.RawMessage `json:"createdBy"`
		Size      json.RawMessage `json:"size"`
		Toppings  model.Toppings  `json:"toppings"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*s = PizzaSubmission{
		PizzaName: model.JSONText(fields.PizzaName),
		CreatedBy: model.JSONText(fields.CreatedBy),
		Size:      model.JSONText(fields.Size),
		Toppings:  fields.Toppings,
	}
	return nil
}

// PizzaAPI is the server the dispatcher submits to.
type PizzaAPI interface {
	CreatePizzas(ctx context.Context, pizzas []PizzaSubmission) ([]model.Pizza, error)
}

// HTTPClient talks to the pizza REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type HTTPClientOption func(*HTTPClient)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPClientOption {
	return func(h *HTTPClient) {
		h.client = c
	}
}

// WithAPIKey sends key on every request, for servers running with server.secure.
func WithAPIKey(key string) HTTPClientOption {
	return func(h *HTTPClient) {
		h.apiKey = key
	}
}

func NewHTTPClient(baseURL string, opts ...HTTPClientOption) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CreatePizzas posts pizzas as one JSON array. Any response without a "message"
// field counts as accepted; the created documents are returned when the body is
// the usual array.
func (h *HTTPClient) CreatePizzas(ctx context.Context, pizzas []PizzaSubmission) ([]model.Pizza, error) {
	if pizzas == nil {
		pizzas = []PizzaSubmission{}
	}

	body, err := h.post(ctx, pizzas)
	if err != nil {
		return nil, err
	}

	created := []model.Pizza{}
	if err := json.Unmarshal(body, &created); err != nil {
		logrus.WithError(err).Debug("pizza api accepted the batch with a non-array body")
		return []model.Pizza{}, nil
	}
	return created, nil
}

// CreatePizza posts a single pizza object.
func (h *HTTPClient) CreatePizza(ctx context.Context, pizza PizzaSubmission) (model.Pizza, error) {
	body, err := h.post(ctx, pizza)
	if err != nil {
		return model.Pizza{}, err
	}

	var created model.Pizza
	if err := json.Unmarshal(body, &created); err != nil {
		return model.Pizza{}, errors.Wrap(err, "decode created pizza")
	}
	return created, nil
}

// post sends payload to the pizzas endpoint and returns the raw response body. A
// body holding a "message" field is a *RemoteError whatever the status code.
func (h *HTTPClient) post(ctx context.Context, payload interface{}) (json.RawMessage, error) {
	buf, err := request.ToJsonReq(payload)
	if err != nil {
		return nil, errors.Wrap(err, "encode pizza submission")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+PizzasPath, buf)
	if err != nil {
		return nil, errors.Wrap(err, "build pizza request")
	}
	if h.apiKey != "" {
		req.Header.Set(apiKeyHeader, h.apiKey)
	}

	var body json.RawMessage
	resp, err := request.Call(h.client, req, &body)
	if resp == nil {
		return nil, &TransportError{Err: err}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode pizza api response (status %d)", resp.StatusCode)
	}

	if msg, ok := messageOf(body); ok {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: msg, Body: body}
	}
	return body, nil
}

// messageOf reports whether body is a JSON object with a "message" field.
func messageOf(body json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return "", false
	}
	raw, ok := fields["message"]
	if !ok {
		return "", false
	}

	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		msg = string(raw)
	}
	return msg, true
}
