// Package postgres stores the journal in PostgreSQL for shared deployments.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/plantbygpt/plantbygpt/internal/blob"
	"github.com/plantbygpt/plantbygpt/internal/model"
	"github.com/plantbygpt/plantbygpt/internal/store"
)

const pingAttempts = 5

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies
// connectivity, retrying the ping with exponential backoff while the server starts.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxInterval = 2 * time.Second
	exp.Reset()
	ping := func() error { return db.PingContext(ctx) }
	if err := backoff.Retry(ping, backoff.WithContext(backoff.WithMaxRetries(exp, pingAttempts), ctx)); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the journal tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS app_state (
            id INTEGER PRIMARY KEY CHECK (id = 1),
            payload JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE TABLE IF NOT EXISTS blobs (
            key TEXT PRIMARY KEY,
            mime_type TEXT NOT NULL,
            data BYTEA NOT NULL,
            size BIGINT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// New opens the database, ensures the schema, and returns a store over it.
func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

type Store struct{ db *sql.DB }

func (s *Store) State() store.States { return &states{db: s.db} }
func (s *Store) Blobs() store.Blobs  { return &blobs{db: s.db} }

// HealthPing implements health.HealthPinger for Postgres-backed store.
func (s *Store) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// --- State ---
type states struct{ db *sql.DB }

func (r *states) Load(ctx context.Context) (*model.ApplicationState, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM app_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var st model.ApplicationState
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, err
	}
	st.Normalize()
	return &st, nil
}

func (r *states) Save(ctx context.Context, st *model.ApplicationState) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
        INSERT INTO app_state (id, payload, updated_at) VALUES (1, $1, now())
        ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
    `, string(payload))
	return err
}

// --- Blobs ---
type blobs struct{ db *sql.DB }

func (r *blobs) Get(ctx context.Context, key string) (*blob.Blob, error) {
	var out blob.Blob
	err := r.db.QueryRowContext(ctx, `SELECT mime_type, data FROM blobs WHERE key = $1`, key).Scan(&out.Type, &out.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []byte{}
	}
	return &out, nil
}

func (r *blobs) Set(ctx context.Context, key string, b *blob.Blob) error {
	b = blob.Normalize(b, "")
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO blobs (key, mime_type, data, size, updated_at) VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (key) DO UPDATE SET mime_type = EXCLUDED.mime_type, data = EXCLUDED.data,
            size = EXCLUDED.size, updated_at = now()
    `, key, b.Type, b.Data, b.Size())
	return err
}

func (r *blobs) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = $1`, key)
	return err
}

func (r *blobs) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM blobs ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	keys := []string{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
