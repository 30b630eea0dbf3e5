package sessions

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

// schema is applied on every open; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS session_values (
		namespace  TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (namespace, key)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_values_updated ON session_values(updated_at)`,
}

// SQLiteRepo stores session values in a SQLite file so they survive restarts.
type SQLiteRepo struct {
	db *sql.DB
}

var _ Repo = (*SQLiteRepo)(nil)

// NewSQLiteRepo opens (or creates) the database at dbPath and applies the schema.
// Use ":memory:" in tests.
func NewSQLiteRepo(ctx context.Context, dbPath string) (*SQLiteRepo, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("[SQLiteRepo New] create dir for %s: %w", dbPath, err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("[SQLiteRepo New] open %s: %w", dbPath, err)
	}
	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("[SQLiteRepo New] pragma wal: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("[SQLiteRepo New] migrate: %w", err)
		}
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM session_values WHERE namespace = ? AND key = ?`, namespace, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[SQLiteRepo Get] %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepo) Set(ctx context.Context, namespace, key, value string) error {
	if namespace == "" || key == "" {
		return fmt.Errorf("[SQLiteRepo Set] namespace and key are required")
	}
	log.Debug().Str("namespace", namespace).Str("key", key).Msg("sqlite session set")
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_values (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("[SQLiteRepo Set] %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (r *SQLiteRepo) Delete(ctx context.Context, namespace string, keys ...string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("[SQLiteRepo Delete] begin: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM session_values WHERE namespace = ? AND key = ?`, namespace, key); err != nil {
			return fmt.Errorf("[SQLiteRepo Delete] %s/%s: %w", namespace, key, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepo) Purge(ctx context.Context, namespace string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_values WHERE namespace = ?`, namespace); err != nil {
		return fmt.Errorf("[SQLiteRepo Purge] %s: %w", namespace, err)
	}
	return nil
}
