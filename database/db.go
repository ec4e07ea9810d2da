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

package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/pizzahunt/pizzahunt/config"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// connectRetries bounds how many times a datasource ping is retried at startup.
const connectRetries = 5

// Datasource is the Postgres document store. Toppings and replies are kept as
// JSONB so a pizza and its comments keep their document shape.
type Datasource struct {
	Conn *sql.DB
}

// NewDataSource connects to the store named by the configured DNS. mongodb:// and
// mongodb+srv:// DNS values select MongoDB, everything else is treated as Postgres.
func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	dns := configuration.DataSource.Dns
	if dns == "" {
		return nil, errors.New("data source DNS is required")
	}

	if isMongoDNS(dns) {
		ds, err := NewMongoDataSource(context.Background(), dns, configuration.DataSource.Database)
		if err != nil {
			return nil, err
		}
		return ds, nil
	}

	con, err := ConnectDB(dns)
	if err != nil {
		return nil, err
	}

	if _, err := Migrate(con, migrate.Up); err != nil {
		_ = con.Close()
		return nil, err
	}
	return &Datasource{Conn: con}, nil
}

func isMongoDNS(dns string) bool {
	return strings.HasPrefix(dns, "mongodb://") || strings.HasPrefix(dns, "mongodb+srv://")
}

// ConnectDB opens a Postgres connection and waits for it to answer a ping.
func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}

	err = pingWithRetry(context.Background(), func(ctx context.Context) error {
		return db.PingContext(ctx)
	})
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies or rolls back the embedded Postgres migrations.
func Migrate(db *sql.DB, direction migrate.MigrationDirection) (int, error) {
	migrations := migrate.EmbedFileSystemMigrationSource{
		FileSystem: SQLFiles,
		Root:       "sql",
	}
	return migrate.Exec(db, "postgres", migrations, direction)
}

func pingWithRetry(ctx context.Context, ping func(ctx context.Context) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return ping(pingCtx)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, connectRetries), ctx))
}

func (d Datasource) Ping(ctx context.Context) error {
	return d.Conn.PingContext(ctx)
}

func (d Datasource) Close(_ context.Context) error {
	return d.Conn.Close()
}
