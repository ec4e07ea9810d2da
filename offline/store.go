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
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	// StoreName is the table holding queued submissions.
	StoreName = "new_pizza"
	// StoreVersion is the schema version stamped into PRAGMA user_version.
	StoreVersion = 1
)

// QueuedSubmission is one pizza submission waiting for the server. Key is assigned
// by the store and only has meaning locally.
type QueuedSubmission struct {
	Key      int64           `json:"key"`
	Payload  json.RawMessage `json:"payload"`
	QueuedAt time.Time       `json:"queuedAt"`
}

// Store is the local durable queue backed by a single SQLite file.
//
// Every method runs in its own transaction. A Drain followed by an Acknowledge is
// not atomic; the Dispatcher guards that sequence.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the queue at path, creating the file and table when missing. Opening
// an existing queue never removes records.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, storeError("open", CodeOpenFailed, err, "open sqlite file")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, storeError("open", CodeOpenFailed, err, "connect to sqlite file")
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, storeError("open", CodeOpenFailed, err, "apply pragmas")
	}

	if err := applySchema(db); err != nil {
		_ = db.Close()
		if errors.Is(err, ErrStoreVersion) {
			return nil, &StoreError{Op: "open", Code: CodeVersionError, Err: err}
		}
		return nil, storeError("open", CodeOpenFailed, err, "apply schema")
	}

	return &Store{db: db, path: path}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Wrapf(err, "execute %q", pragma)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return errors.Wrap(err, "read user_version")
	}
	if version > StoreVersion {
		return errors.Wrapf(ErrStoreVersion, "found version %d, want %d", version, StoreVersion)
	}

	migrations := migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}
	if _, err := migrate.Exec(db, "sqlite3", migrations, migrate.Up); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", StoreVersion)); err != nil {
		return errors.Wrap(err, "set user_version")
	}
	return nil
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// Enqueue appends record and returns its key once the write has committed. Any
// JSON-serializable value is accepted; a json.RawMessage is stored as given.
func (s *Store) Enqueue(ctx context.Context, record any) (int64, error) {
	payload, err := encodeRecord(record)
	if err != nil {
		return 0, storeError("enqueue", CodeEncodeFailed, err, "encode record")
	}

	var key int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO `+StoreName+` (payload, queued_at) VALUES (?, ?)`,
			string(payload), time.Now().UnixNano())
		if err != nil {
			return err
		}
		key, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, storeError("enqueue", CodeWriteFailed, err, "insert record")
	}
	return key, nil
}

func encodeRecord(record any) ([]byte, error) {
	if raw, ok := record.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, errors.New("record is not valid JSON")
		}
		return raw, nil
	}
	return json.Marshal(record)
}

// Drain returns every queued record in insertion order without removing any.
func (s *Store) Drain(ctx context.Context) ([]QueuedSubmission, error) {
	records := []QueuedSubmission{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id, payload, queued_at FROM `+StoreName+` ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				rec      QueuedSubmission
				payload  string
				queuedAt int64
			)
			if err := rows.Scan(&rec.Key, &payload, &queuedAt); err != nil {
				return err
			}
			rec.Payload = json.RawMessage(payload)
			rec.QueuedAt = time.Unix(0, queuedAt)
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, storeError("drain", CodeReadFailed, err, "read records")
	}
	return records, nil
}

// Clear removes every record. Callers must only clear after the server accepted
// what they drained; prefer Acknowledge.
func (s *Store) Clear(ctx context.Context) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM `+StoreName)
		return err
	})
	if err != nil {
		return storeError("clear", CodeWriteFailed, err, "delete records")
	}
	return nil
}

// Acknowledge removes every record with a key up to and including throughKey and
// returns how many were removed. Records enqueued after a drain have larger keys
// and are kept.
func (s *Store) Acknowledge(ctx context.Context, throughKey int64) (int64, error) {
	var removed int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM `+StoreName+` WHERE id <= ?`, throughKey)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, storeError("acknowledge", CodeWriteFailed, err, "delete acknowledged records")
	}
	return removed, nil
}

func (s *Store) Len(ctx context.Context) (int, error) {
	var n int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+StoreName).Scan(&n)
	})
	if err != nil {
		return 0, storeError("len", CodeReadFailed, err, "count records")
	}
	return n, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
