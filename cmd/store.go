package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-scout/internal/store"
)

// initRunStore opens and migrates the configured run history backend.
func initRunStore(ctx context.Context) (store.RunStore, error) {
	if err := cfg.Validate("store"); err != nil {
		return nil, err
	}

	var st store.RunStore
	var err error
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = store.NewSQLite(cfg.Store.Path)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{MaxConns: cfg.Store.MaxConns})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
