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

package pizzahunt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/pizzahunt/pizzahunt/config"
)

// Webhook events.
const (
	EventPizzaCreated   = "pizza.created"
	EventPizzaUpdated   = "pizza.updated"
	EventPizzaDeleted   = "pizza.deleted"
	EventCommentCreated = "comment.created"
	EventCommentDeleted = "comment.deleted"
	EventReplyCreated   = "reply.created"
	EventReplyDeleted   = "reply.deleted"
)

const webhookTimeout = 10 * time.Second

// NewWebhook is the body posted to the configured webhook URL.
type NewWebhook struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"data"`
}

// SendWebhook queues hook for delivery. It does nothing when no webhook URL or no
// Redis is configured. Failures are logged and never fail the request that caused
// the event.
func (p *PizzaHunt) SendWebhook(ctx context.Context, hook NewWebhook) {
	conf, err := config.Fetch()
	if err != nil || conf.Notification.Webhook.Url == "" || p.queue == nil {
		return
	}

	if _, err := p.queue.enqueueWebhook(ctx, hook); err != nil {
		logrus.WithError(err).WithField("event", hook.Event).Error("failed to enqueue webhook")
	}
}

// ProcessWebhook is the asynq handler that delivers a queued webhook. Non-2xx
// responses are returned as errors so asynq retries them.
func ProcessWebhook(ctx context.Context, task *asynq.Task) error {
	conf, err := config.Fetch()
	if err != nil {
		return err
	}
	if conf.Notification.Webhook.Url == "" {
		return nil
	}

	var hook NewWebhook
	if err := json.Unmarshal(task.Payload(), &hook); err != nil {
		logrus.Errorf("Error unmarshaling webhook payload: %v", err)
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	logrus.WithField("event", hook.Event).Info("delivering webhook")
	return deliverWebhook(ctx, conf.Notification.Webhook, task.Payload())
}

func deliverWebhook(ctx context.Context, hook config.WebhookConfig, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hook.Url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range hook.Headers {
		req.Header.Set(key, value)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
