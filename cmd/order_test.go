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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizzahunt/pizzahunt/config"
	"github.com/pizzahunt/pizzahunt/offline"
)

func offlineConfig(t *testing.T, serverURL string) config.OfflineConfig {
	t.Helper()
	return config.OfflineConfig{
		ServerURL:        serverURL,
		QueuePath:        filepath.Join(t.TempDir(), "queue.db"),
		CheckIntervalSec: 1,
		CheckTimeoutSec:  1,
	}
}

func newTestKit(t *testing.T, conf config.OfflineConfig) (*orderKit, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	k, err := newOrderKit(conf, out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Close() })
	return k, out
}

// unreachableURL returns the address of a server that has already shut down.
func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestOrderSubmit_QueuesWhenOffline(t *testing.T) {
	k, out := newTestKit(t, offlineConfig(t, unreachableURL(t)))
	ctx := context.Background()

	require.NoError(t, k.submit(ctx, offline.PizzaSubmission{PizzaName: "Margherita", CreatedBy: "Ana"}))
	assert.Contains(t, out.String(), "saved offline")

	n, err := k.store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOrderFlush_SubmitsSavedPizzas(t *testing.T) {
	var batches atomic.Int32
	var received []offline.PizzaSubmission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batches.Add(1)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode([]map[string]string{{"_id": "pza_1"}, {"_id": "pza_2"}})
	}))
	defer srv.Close()

	k, out := newTestKit(t, offlineConfig(t, srv.URL))
	ctx := context.Background()

	_, err := k.store.Enqueue(ctx, offline.PizzaSubmission{PizzaName: "Margherita", CreatedBy: "Ana"})
	require.NoError(t, err)
	_, err = k.store.Enqueue(ctx, offline.PizzaSubmission{PizzaName: "Pepperoni", CreatedBy: "Ben"})
	require.NoError(t, err)

	require.NoError(t, k.flush(ctx))
	assert.Equal(t, int32(1), batches.Load())
	require.Len(t, received, 2)
	assert.Equal(t, "Pepperoni", received[1].PizzaName)
	assert.Contains(t, out.String(), offline.SubmittedMessage)

	n, err := k.store.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	out.Reset()
	require.NoError(t, k.flush(ctx))
	assert.Contains(t, out.String(), "no saved pizzas")
	assert.Equal(t, int32(1), batches.Load())
}

func TestOrderListAndClear(t *testing.T) {
	k, out := newTestKit(t, offlineConfig(t, unreachableURL(t)))
	ctx := context.Background()

	_, err := k.store.Enqueue(ctx, offline.PizzaSubmission{PizzaName: "Hawaiian", CreatedBy: "Cy"})
	require.NoError(t, err)

	require.NoError(t, k.list(ctx))
	assert.Contains(t, out.String(), "Hawaiian")

	require.NoError(t, k.clear(ctx))
	n, err := k.store.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrderWatch_FlushesWhenServerIsUp(t *testing.T) {
	var batches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			batches.Add(1)
			_ = json.NewEncoder(w).Encode([]map[string]string{{"_id": "pza_1"}})
			return
		}
		_ = json.NewEncoder(w).Encode("server running...")
	}))
	defer srv.Close()

	conf := offlineConfig(t, srv.URL)
	k, _ := newTestKit(t, conf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, err := k.store.Enqueue(ctx, offline.PizzaSubmission{PizzaName: "Veggie", CreatedBy: "Di"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- k.watch(ctx, conf) }()

	assert.Eventually(t, func() bool {
		n, err := k.store.Len(context.Background())
		return err == nil && n == 0
	}, 2*time.Second, 20*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), batches.Load())
}
