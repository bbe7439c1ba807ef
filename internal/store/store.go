package store

import (
	"context"
	"errors"

	"github.com/plantbygpt/plantbygpt/internal/blob"
	"github.com/plantbygpt/plantbygpt/internal/model"
)

// ErrNotFound is returned when a requested state or blob does not exist.
var ErrNotFound = errors.New("store: not found")

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (memstore, sqlite, postgres).
type Store interface {
	State() States
	Blobs() Blobs
}

// States persists the single journal document.
type States interface {
	// Load returns ErrNotFound when nothing was ever saved.
	Load(ctx context.Context) (*model.ApplicationState, error)
	Save(ctx context.Context, st *model.ApplicationState) error
}

// Blobs is the key-value object store for photo binaries.
type Blobs interface {
	Get(ctx context.Context, key string) (*blob.Blob, error)
	Set(ctx context.Context, key string, b *blob.Blob) error
	// Delete of a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)
}
