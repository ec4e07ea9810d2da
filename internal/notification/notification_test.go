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

package notification

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pizzahunt/pizzahunt/config"
)

func TestSlackMessageFor(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := slackMessageFor("Pizza Hunt", errors.New("queue flush failed"), at)

	require.Len(t, msg.Blocks, 3)
	assert.Equal(t, "Error From Pizza Hunt 🐞", msg.Blocks[0].Text.Text)
	assert.Equal(t, "*Error:*\nqueue flush failed", msg.Blocks[1].Fields[0].Text)
	assert.Equal(t, "*Time:*\n"+at.Format(time.RFC822), msg.Blocks[2].Fields[0].Text)
}

func TestSendSlack(t *testing.T) {
	var got slackMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	err := sendSlack(srv.Client(), srv.URL, slackMessageFor("Pizza Hunt", errors.New("boom"), time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "header", got.Blocks[0].Type)
}

func TestSendSlack_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("invalid_token"))
	}))
	defer srv.Close()

	err := sendSlack(srv.Client(), srv.URL, slackMessageFor("Pizza Hunt", errors.New("boom"), time.Now()))
	assert.EqualError(t, err, "slack webhook returned status 403")
}

func TestNotifyError_PostsToSlack(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	config.MockConfig(&config.Configuration{
		ProjectName:  "Pizza Hunt",
		Notification: config.Notification{Slack: config.SlackWebhook{WebhookUrl: srv.URL}},
	})

	NotifyError(errors.New("datasource unreachable"))
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
}

func TestNotify_WithoutSlackDoesNothing(t *testing.T) {
	config.MockConfig(&config.Configuration{ProjectName: "Pizza Hunt"})
	assert.NotPanics(t, func() { notify(errors.New("ignored")) })
}
