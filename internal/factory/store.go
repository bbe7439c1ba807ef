// Package factory builds the store driver selected by configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/plantbygpt/plantbygpt/internal/config"
	"github.com/plantbygpt/plantbygpt/internal/localstate"
	"github.com/plantbygpt/plantbygpt/internal/store"
	"github.com/plantbygpt/plantbygpt/internal/store/memstore"
	"github.com/plantbygpt/plantbygpt/internal/store/postgres"
	"github.com/plantbygpt/plantbygpt/internal/store/sqlite"
)

// NewStore opens the configured driver. The returned close func releases it and is
// never nil.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		path := localstate.DBPathIn(cfg.DataDir)
		s, err := sqlite.New(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store %s: %w", path, err)
		}
		log.Info().Str("driver", cfg.StoreDriver).Str("path", path).Msg("store opened")
		return s, s.Close, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Info().Str("driver", cfg.StoreDriver).Msg("store opened")
		return s, s.Close, nil
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memstore.New(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
