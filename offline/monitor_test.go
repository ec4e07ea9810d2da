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
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_FiresOncePerTransition(t *testing.T) {
	var fired int32
	m := NewMonitor(nil, func(context.Context) { atomic.AddInt32(&fired, 1) })
	ctx := context.Background()

	steps := []struct {
		online bool
		fired  int32
	}{
		{online: false, fired: 0},
		{online: true, fired: 1},
		{online: true, fired: 1},
		{online: false, fired: 1},
		{online: false, fired: 1},
		{online: true, fired: 2},
	}
	for i, step := range steps {
		m.Observe(ctx, step.online)
		assert.Equal(t, step.fired, atomic.LoadInt32(&fired), "step %d", i)
		assert.Equal(t, step.online, m.Online())
	}
}

func TestMonitor_ConcurrentOnlineSignalsFireOnce(t *testing.T) {
	var fired int32
	m := NewMonitor(nil, func(context.Context) { atomic.AddInt32(&fired, 1) })

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Observe(context.Background(), true)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestMonitor_RunFlushesAtStartupWhenOnline(t *testing.T) {
	fired := make(chan struct{}, 10)
	m := NewMonitor(CheckFunc(func(context.Context) bool { return true }), func(context.Context) {
		fired <- struct{}{}
	}, WithCheckInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("startup flush did not fire")
	}

	// Stays online across further checks, so nothing else fires.
	time.Sleep(50 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Len(t, fired, 0)
}

func TestMonitor_RunDetectsReconnect(t *testing.T) {
	var reachable atomic.Bool
	fired := make(chan struct{}, 10)
	m := NewMonitor(CheckFunc(func(context.Context) bool { return reachable.Load() }), func(context.Context) {
		fired <- struct{}{}
	}, WithCheckInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	assert.Len(t, fired, 0)
	assert.False(t, m.Online())

	reachable.Store(true)
	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("reconnect did not trigger a flush")
	}
}

func TestHTTPChecker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		_, _ = w.Write([]byte("server running..."))
	}))

	checker := NewHTTPChecker(server.URL+"/", time.Second)
	assert.True(t, checker.Reachable(context.Background()))

	server.Close()
	assert.False(t, checker.Reachable(context.Background()))
}

func TestHTTPChecker_ServerErrorStillReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	require.True(t, NewHTTPChecker(server.URL, time.Second).Reachable(context.Background()))
}
