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
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/pizzahunt/pizzahunt/config"
	redis_db "github.com/pizzahunt/pizzahunt/internal/redis-db"
)

// Queue enqueues webhook deliveries for the workers command.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
	name      string
	retries   int
}

// RedisClientOpt builds asynq connection options from the configured Redis DNS.
func RedisClientOpt(conf *config.Configuration) (asynq.RedisClientOpt, error) {
	addresses := redis_db.SplitAddresses(conf.Redis.Dns)
	if len(addresses) == 0 {
		return asynq.RedisClientOpt{}, errNoRedis
	}
	redisOption, err := redis_db.ParseRedisURL(addresses[0], conf.Redis.SkipTLSVerify)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      redisOption.Addr,
		Password:  redisOption.Password,
		DB:        redisOption.DB,
		TLSConfig: redisOption.TLSConfig,
	}, nil
}

func NewQueue(conf *config.Configuration) (*Queue, error) {
	opts, err := RedisClientOpt(conf)
	if err != nil {
		return nil, err
	}
	return &Queue{
		Client:    asynq.NewClient(opts),
		Inspector: asynq.NewInspector(opts),
		name:      conf.Queue.WebhookQueue,
		retries:   conf.Queue.WebhookRetries,
	}, nil
}

// Name is the asynq queue and task type webhooks are enqueued under.
func (q *Queue) Name() string {
	return q.name
}

func (q *Queue) enqueueWebhook(ctx context.Context, hook NewWebhook) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(hook)
	if err != nil {
		return nil, err
	}

	task := asynq.NewTask(q.name, payload, asynq.Queue(q.name), asynq.MaxRetry(q.retries))
	info, err := q.Client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"event": hook.Event,
		"task":  info.ID,
	}).Debug("webhook enqueued")
	return info, nil
}

func (q *Queue) Close() error {
	if err := q.Inspector.Close(); err != nil {
		logrus.Error(err)
	}
	return q.Client.Close()
}
