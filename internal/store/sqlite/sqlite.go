// Package sqlite is the default single-file store driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/plantbygpt/plantbygpt/internal/blob"
	"github.com/plantbygpt/plantbygpt/internal/localstate"
	"github.com/plantbygpt/plantbygpt/internal/model"
	"github.com/plantbygpt/plantbygpt/internal/store"
)

// New opens the database at path, ensures the schema, and returns a store over it.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := localstate.EnsureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a store over an already prepared database.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

type Store struct{ db *sql.DB }

func (s *Store) State() store.States { return &states{db: s.db} }
func (s *Store) Blobs() store.Blobs  { return &blobs{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *Store) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// --- State ---
type states struct{ db *sql.DB }

func (r *states) Load(ctx context.Context) (*model.ApplicationState, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM app_state WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var st model.ApplicationState
	if err := json.Unmarshal([]byte(payload), &st); err != nil {
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
        INSERT INTO app_state (id, payload, updated_at) VALUES (1, ?, ?)
        ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
    `, string(payload), time.Now().UTC())
	return err
}

// --- Blobs ---
type blobs struct{ db *sql.DB }

func (r *blobs) Get(ctx context.Context, key string) (*blob.Blob, error) {
	var out blob.Blob
	err := r.db.QueryRowContext(ctx, `SELECT mime_type, data FROM blobs WHERE key = ?`, key).Scan(&out.Type, &out.Data)
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
        INSERT INTO blobs (key, mime_type, data, size, updated_at) VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(key) DO UPDATE SET mime_type = excluded.mime_type, data = excluded.data,
            size = excluded.size, updated_at = excluded.updated_at
    `, key, b.Type, b.Data, b.Size(), time.Now().UTC())
	return err
}

func (r *blobs) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key)
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
