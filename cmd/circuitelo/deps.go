package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmoren/circuitelo/internal/infrastructure/config"
	"github.com/dmoren/circuitelo/internal/infrastructure/recordstore/sqlite"
)

// deps holds the dependencies commands build their handlers from.
type deps struct {
	Config *config.Config
	Store  *sqlite.Repository
}

// withDeps loads config, opens the store and calls the provided function.
// It handles cleanup automatically.
func withDeps(ctx context.Context, fn func(*deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewRepository(config.SQLiteConfig{Path: cfg.DBPath(cwd)})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring sqlite schema: %w", err)
	}

	return fn(&deps{
		Config: cfg,
		Store:  store,
	})
}
