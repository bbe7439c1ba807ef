// Package services implements the journal operations on top of a store: entity
// edits with their cascades, photo storage, and archive export and import.
package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/plantbygpt/plantbygpt/internal/backup"
	"github.com/plantbygpt/plantbygpt/internal/config"
	"github.com/plantbygpt/plantbygpt/internal/model"
	"github.com/plantbygpt/plantbygpt/internal/store"
	"github.com/plantbygpt/plantbygpt/internal/urlcache"
)

// Journal owns the single journal document. Read-modify-write cycles are
// serialized so concurrent requests never lose each other's edits.
type Journal struct {
	store    store.Store
	urls     *urlcache.Cache
	writer   *backup.Writer
	reader   *backup.Reader
	validate *validator.Validate
	log      zerolog.Logger

	appName         string
	maxImageBytes   int64
	maxArchiveBytes int64

	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewJournal wires a journal over s using the limits from cfg.
func NewJournal(s store.Store, cfg *config.Config, log zerolog.Logger) *Journal {
	return &Journal{
		store:           s,
		urls:            urlcache.New(s.Blobs()),
		writer:          backup.NewWriter(s.Blobs(), log, cfg.ExportConcurrency),
		reader:          backup.NewReader(s.Blobs(), log).WithLimits(cfg.MaxArchiveBytes, cfg.MaxImageBytes),
		validate:        newValidator(),
		log:             log,
		appName:         cfg.AppName,
		maxImageBytes:   cfg.MaxImageBytes,
		maxArchiveBytes: cfg.MaxArchiveBytes,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// URLs exposes the display handle cache.
func (j *Journal) URLs() *urlcache.Cache { return j.urls }

// State returns the current journal. A store that was never written yields a fresh
// state with the default locations.
func (j *Journal) State(ctx context.Context) (*model.ApplicationState, error) {
	st, err := j.store.State().Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return model.NewState(), nil
	}
	if err != nil {
		return nil, err
	}
	st.Normalize()
	return st, nil
}

// ReplaceState normalizes st and stores it in place of the current journal.
func (j *Journal) ReplaceState(ctx context.Context, st *model.ApplicationState) error {
	if st == nil {
		return NewValidationError("state", "is required")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.replace(ctx, st)
}

func (j *Journal) replace(ctx context.Context, st *model.ApplicationState) error {
	st.Normalize()
	if err := j.store.State().Save(ctx, st); err != nil {
		return err
	}
	j.urls.InvalidateAll()
	return nil
}

// mutate runs fn over the current state and saves the result when fn succeeds.
// Photo keys returned by fn are deleted afterwards unless the saved state still
// references them.
func (j *Journal) mutate(ctx context.Context, fn func(st *model.ApplicationState) ([]string, error)) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	st, err := j.State(ctx)
	if err != nil {
		return err
	}
	released, err := fn(st)
	if err != nil {
		return err
	}
	if err := j.store.State().Save(ctx, st); err != nil {
		return err
	}
	j.release(ctx, st, released)
	return nil
}

// release deletes photos no longer referenced by st. Failures are logged; a leftover
// binary is harmless.
func (j *Journal) release(ctx context.Context, st *model.ApplicationState, keys []string) {
	if len(keys) == 0 {
		return
	}
	live := map[string]bool{}
	for _, k := range backup.CollectReferencedKeys(st) {
		live[k] = true
	}
	for _, k := range keys {
		if k == "" || live[k] {
			continue
		}
		if err := j.store.Blobs().Delete(ctx, k); err != nil {
			j.log.Warn().Str("key", k).Err(err).Msg("failed to delete released photo")
			continue
		}
		j.urls.Invalidate(k)
	}
}

func (j *Journal) check(v interface{}) error {
	err := j.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return NewValidationError(fe.Field(), describe(fe))
	}
	return err
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required for this type"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// dropped returns the keys of before that are absent from after.
func dropped(before, after []string) []string {
	keep := map[string]bool{}
	for _, k := range after {
		keep[k] = true
	}
	var out []string
	for _, k := range before {
		if !keep[k] {
			out = append(out, k)
		}
	}
	return out
}
