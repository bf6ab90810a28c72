// Package database picks the storage backend named by the configuration.
package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/article-hub/internal/config"
	"github.com/sakif/article-hub/internal/repository"
	"github.com/sakif/article-hub/internal/repository/gormstore"
	"github.com/sakif/article-hub/internal/repository/sqlite"
)

// Open returns a migrated, ready-to-use store. The caller owns it and must
// Close it.
//
//   - sqlite           → hand-written SQL over modernc.org/sqlite (default)
//   - postgres / mysql → GORM
func Open(cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		// os.MkdirAll is like `mkdir -p`. The data directory does not exist on
		// a fresh checkout.
		if cfg.DBPath != ":memory:" {
			dir := filepath.Dir(cfg.DBPath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("database: creating directory %s: %w", dir, err)
			}
		}
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		logger.Info("database opened", slog.String("driver", cfg.DBDriver), slog.String("path", cfg.DBPath))
		return db, nil

	case config.DriverPostgres, config.DriverMySQL:
		store, err := gormstore.Open(cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		// Never log the DSN: it carries the password.
		logger.Info("database opened", slog.String("driver", cfg.DBDriver))
		return store, nil

	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.DBDriver)
	}
}
