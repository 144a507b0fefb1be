package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/solandes-viajes/cost-console/internal/config"
	"github.com/solandes-viajes/cost-console/internal/engine"
	"github.com/solandes-viajes/cost-console/internal/store"
)

// Env bundles the initialized store and engine for a command run.
type Env struct {
	Store  store.Store
	Engine *engine.Engine
}

// Close releases the environment's resources.
func (e *Env) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv opens the configured store, runs migrations and wires the engine.
func initEnv(ctx context.Context) (*Env, error) {
	if err := cfg.Validate("eval"); err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}

	eng := engine.New(st, cfg.Rates, cfg.Review.Secret,
		engine.WithMaxConcurrentGroups(cfg.Eval.MaxConcurrentGroups),
	)
	return &Env{Store: st, Engine: eng}, nil
}

func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "sqlite", "":
		return store.NewSQLite(sc.Path)
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL, &sc.Pool)
	default:
		return nil, eris.Errorf("unknown store driver %q", sc.Driver)
	}
}
