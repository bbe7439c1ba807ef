package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/plantbygpt/plantbygpt/internal/blob"
	"github.com/plantbygpt/plantbygpt/internal/model"
	"github.com/plantbygpt/plantbygpt/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// State
	if _, err := s.State().Load(ctx); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Load on empty store: want ErrNotFound, got %v", err)
	}

	start := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	st := model.NewState()
	st.Plants = append(st.Plants, model.Plant{ID: "p1", Name: "Monstera", Location: "South window", StartDate: start})
	st.Events = append(st.Events, model.Event{ID: "e1", PlantID: "p1", Type: model.EventWater, At: start, PhotoKeys: []string{"img_a"}, Tags: []string{}})
	if err := s.State().Save(ctx, st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.State().Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Plants) != 1 || got.Plants[0].Name != "Monstera" || !got.Plants[0].StartDate.Equal(start) {
		t.Fatalf("Load plants: got=%+v", got.Plants)
	}
	if len(got.Events) != 1 || len(got.Events[0].PhotoKeys) != 1 || got.Events[0].PhotoKeys[0] != "img_a" {
		t.Fatalf("Load events: got=%+v", got.Events)
	}

	st.Plants[0].Name = "Monstera deliciosa"
	if err := s.State().Save(ctx, st); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	if got, err := s.State().Load(ctx); err != nil || got.Plants[0].Name != "Monstera deliciosa" {
		t.Fatalf("Load after overwrite: got=%v err=%v", got, err)
	}

	// Blobs
	k1 := "img_" + uuid.New().String()
	k2 := "img_" + uuid.New().String()
	if _, err := s.Blobs().Get(ctx, k1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}
	if err := s.Blobs().Set(ctx, k1, &blob.Blob{Data: []byte{0x89, 'P', 'N'}, Type: "image/png"}); err != nil {
		t.Fatalf("Set k1: %v", err)
	}
	b, err := s.Blobs().Get(ctx, k1)
	if err != nil || string(b.Data) != "\x89PN" || b.Type != "image/png" {
		t.Fatalf("Get k1: got=%+v err=%v", b, err)
	}

	if err := s.Blobs().Set(ctx, k2, &blob.Blob{Data: []byte("raw")}); err != nil {
		t.Fatalf("Set k2: %v", err)
	}
	if b, err := s.Blobs().Get(ctx, k2); err != nil || b.Type != blob.DefaultType {
		t.Fatalf("Get k2: untyped blob should read back as %s, got=%+v err=%v", blob.DefaultType, b, err)
	}

	if err := s.Blobs().Set(ctx, k1, &blob.Blob{Data: []byte("jpeg!"), Type: "image/jpeg"}); err != nil {
		t.Fatalf("Set k1 overwrite: %v", err)
	}
	if b, err := s.Blobs().Get(ctx, k1); err != nil || string(b.Data) != "jpeg!" || b.Type != "image/jpeg" {
		t.Fatalf("Get k1 after overwrite: got=%+v err=%v", b, err)
	}

	keys, err := s.Blobs().Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if !contains(keys, k1) || !contains(keys, k2) {
		t.Fatalf("Keys: missing written keys in %v", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("Keys not sorted: %v", keys)
		}
	}

	if err := s.Blobs().Delete(ctx, k1); err != nil {
		t.Fatalf("Delete k1: %v", err)
	}
	if _, err := s.Blobs().Get(ctx, k1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get after delete: want ErrNotFound, got %v", err)
	}
	if err := s.Blobs().Delete(ctx, k1); err != nil {
		t.Fatalf("Delete missing key should succeed: %v", err)
	}
	if err := s.Blobs().Delete(ctx, k2); err != nil {
		t.Fatalf("Delete k2: %v", err)
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
