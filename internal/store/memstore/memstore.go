// Package memstore is an in-process store.Store used for tests and the "memory" driver.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/plantbygpt/plantbygpt/internal/blob"
	"github.com/plantbygpt/plantbygpt/internal/model"
	"github.com/plantbygpt/plantbygpt/internal/store"
)

// Store keeps the journal and its photos in maps guarded by a mutex. Values are
// copied on the way in and out so callers never share memory with the store.
type Store struct {
	mu    sync.RWMutex
	state *model.ApplicationState
	blobs map[string]*blob.Blob
}

// New returns an empty store.
func New() *Store {
	return &Store{blobs: make(map[string]*blob.Blob)}
}

func (s *Store) State() store.States { return states{s} }
func (s *Store) Blobs() store.Blobs  { return blobs{s} }

// HealthPing always succeeds.
func (s *Store) HealthPing(ctx context.Context) error { return ctx.Err() }

type states struct{ s *Store }

func (r states) Load(ctx context.Context) (*model.ApplicationState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.state == nil {
		return nil, store.ErrNotFound
	}
	return r.s.state.Clone(), nil
}

func (r states) Save(ctx context.Context, st *model.ApplicationState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state = st.Clone()
	return nil
}

type blobs struct{ s *Store }

func (r blobs) Get(ctx context.Context, key string) (*blob.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.blobs[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyBlob(b), nil
}

func (r blobs) Set(ctx context.Context, key string, b *blob.Blob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.blobs[key] = copyBlob(blob.Normalize(b, ""))
	return nil
}

func (r blobs) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.blobs, key)
	return nil
}

func (r blobs) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	keys := make([]string, 0, len(r.s.blobs))
	for k := range r.s.blobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func copyBlob(b *blob.Blob) *blob.Blob {
	if b == nil {
		return &blob.Blob{Data: []byte{}}
	}
	data := make([]byte, len(b.Data))
	copy(data, b.Data)
	return &blob.Blob{Data: data, Type: b.Type}
}
