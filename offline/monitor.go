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
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const defaultCheckInterval = 5 * time.Second

// Checker answers whether the pizza server can currently be reached.
type Checker interface {
	Reachable(ctx context.Context) bool
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) bool

func (f CheckFunc) Reachable(ctx context.Context) bool { return f(ctx) }

// HTTPChecker treats any HTTP response from GET <server>/ as reachable.
type HTTPChecker struct {
	URL    string
	Client *http.Client
}

func NewHTTPChecker(serverURL string, timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		URL:    strings.TrimRight(serverURL, "/") + "/",
		Client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPChecker) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return false
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// Monitor tracks connectivity and calls onOnline once for each offline to online
// transition. The state starts offline, so a reachable server at startup counts as
// a transition.
type Monitor struct {
	checker  Checker
	onOnline func(context.Context)
	interval time.Duration
	online   atomic.Bool
}

type MonitorOption func(*Monitor)

func WithCheckInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func NewMonitor(checker Checker, onOnline func(context.Context), opts ...MonitorOption) *Monitor {
	m := &Monitor{
		checker:  checker,
		onOnline: onOnline,
		interval: defaultCheckInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run checks immediately and then on every interval until ctx is done. onOnline
// runs on the Run goroutine, so a slow flush delays the next check.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := backoff.NewTicker(backoff.WithContext(backoff.NewConstantBackOff(m.interval), ctx))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticker.C:
			if !ok {
				return ctx.Err()
			}
			m.Observe(ctx, m.checker.Reachable(ctx))
		}
	}
}

// Observe records the current connectivity. It is also the entry point for hosts
// that learn about connectivity from elsewhere.
func (m *Monitor) Observe(ctx context.Context, online bool) {
	was := m.online.Swap(online)
	if was == online {
		return
	}

	logrus.WithFields(logrus.Fields{
		"component": "monitor",
		"online":    online,
	}).Info("connectivity changed")

	if online && m.onOnline != nil {
		m.onOnline(ctx)
	}
}

func (m *Monitor) Online() bool {
	return m.online.Load()
}
