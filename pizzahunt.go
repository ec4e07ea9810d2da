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
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/pizzahunt/pizzahunt/cache"
	"github.com/pizzahunt/pizzahunt/config"
	"github.com/pizzahunt/pizzahunt/database"
	redis_db "github.com/pizzahunt/pizzahunt/internal/redis-db"
)

var (
	tracer     = otel.Tracer("pizzahunt.service")
	errNoRedis = errors.New("redis is not configured")
)

// PizzaHunt is the service behind the REST API. The cache and the webhook queue
// are only present when Redis is configured.
type PizzaHunt struct {
	datasource database.IDataSource
	redis      *redis_db.Redis
	cache      cache.Cache
	queue      *Queue
	cacheTTL   time.Duration
}

// NewPizzaHunt builds the service around db using the loaded configuration.
func NewPizzaHunt(db database.IDataSource) (*PizzaHunt, error) {
	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	p := &PizzaHunt{datasource: db, cacheTTL: conf.CacheTTL()}
	addresses := redis_db.SplitAddresses(conf.Redis.Dns)
	if len(addresses) == 0 {
		logrus.Warn("redis not configured, pizza cache and webhooks are disabled")
		return p, nil
	}

	client, err := redis_db.NewRedisClient(addresses, conf.Redis.SkipTLSVerify)
	if err != nil {
		return nil, err
	}
	queue, err := NewQueue(conf)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	p.redis = client
	p.cache = cache.NewCache(client)
	p.queue = queue
	return p, nil
}

// Datasource returns the store the service writes to.
func (p *PizzaHunt) Datasource() database.IDataSource {
	return p.datasource
}

// Ping checks the datasource.
func (p *PizzaHunt) Ping(ctx context.Context) error {
	return p.datasource.Ping(ctx)
}

func (p *PizzaHunt) Close(ctx context.Context) error {
	if p.queue != nil {
		if err := p.queue.Close(); err != nil {
			logrus.Error(err)
		}
	}
	if p.redis != nil {
		if err := p.redis.Close(); err != nil {
			logrus.Error(err)
		}
	}
	return p.datasource.Close(ctx)
}
