// Package store selects the repository implementation named by the
// configuration.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/vetimport/internal/config"
	"github.com/JonMunkholm/vetimport/internal/core"
	"github.com/JonMunkholm/vetimport/internal/store/memory"
	"github.com/JonMunkholm/vetimport/internal/store/postgres"
	"github.com/JonMunkholm/vetimport/internal/store/sqlite"
)

// Open returns the repository for cfg.Driver. The caller closes it.
func Open(ctx context.Context, cfg config.DatabaseConfig) (core.Repository, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, postgres.PoolConfig{
			URL:             cfg.URL,
			MaxConns:        cfg.MaxConns,
			MinConns:        cfg.MinConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: cfg.MaxConnIdleTime,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
