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
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(req *http.Request, v interface{}) error {
	defer req.Body.Close()
	return json.NewDecoder(req.Body).Decode(v)
}

func TestSubmitPizza_Online(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testServer+PizzasPath,
		httpmock.NewStringResponder(http.StatusOK, `{"_id":"pza_1","pizzaName":"Test","size":"Large"}`))
	s := openTestStore(t)

	result, err := NewClient(client, s).SubmitPizza(context.Background(), PizzaSubmission{PizzaName: "Test", CreatedBy: "Ana"})
	require.NoError(t, err)
	assert.False(t, result.Queued)
	assert.Equal(t, "pza_1", result.Pizza.PizzaID)

	n, err := s.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSubmitPizza_OfflineQueues(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testServer+PizzasPath,
		httpmock.NewErrorResponder(errors.New("dial tcp: connection refused")))
	s := openTestStore(t)

	result, err := NewClient(client, s).SubmitPizza(context.Background(), PizzaSubmission{PizzaName: "Test", Size: "Large"})
	require.NoError(t, err)
	assert.True(t, result.Queued)
	assert.NotZero(t, result.Key)

	records, err := s.Drain(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, result.Key, records[0].Key)
	assert.JSONEq(t, `{"pizzaName":"Test","createdBy":"","size":"Large"}`, string(records[0].Payload))
}

func TestSubmitPizza_RejectionIsNotQueued(t *testing.T) {
	client, transport := newMockedClient(t)
	transport.RegisterResponder(http.MethodPost, testServer+PizzasPath,
		httpmock.NewStringResponder(http.StatusBadRequest, `{"message":"pizzaName: cannot be blank."}`))
	s := openTestStore(t)

	_, err := NewClient(client, s).SubmitPizza(context.Background(), PizzaSubmission{})
	require.Error(t, err)
	assert.True(t, IsRemoteError(err))

	n, err := s.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
