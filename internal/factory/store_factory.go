package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/campoos/backend-lixeira-app/internal/adapters/store"
	"github.com/campoos/backend-lixeira-app/internal/config"
	"github.com/campoos/backend-lixeira-app/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates analysis stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates the storage backend named by database.driver
func (f *StoreFactory) CreateStore(ctx context.Context) (core.Store, error) {
	dbConfig, err := f.cfg.GetDatabase()
	if err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	if dbConfig.Driver == "memory" {
		f.logger.Warn("Using in-memory store, analyses will not survive a restart")
		return store.NewMemoryStore(f.logger.Named("store")), nil
	}

	dialect, err := store.ParseDialect(dbConfig.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := f.dsn(dialect, dbConfig)
	if err != nil {
		return nil, err
	}

	s, err := store.Open(ctx, store.Options{
		Dialect:         dialect,
		DSN:             dsn,
		MaxOpenConns:    dbConfig.MaxOpenConns,
		MaxIdleConns:    dbConfig.MaxIdleConns,
		ConnMaxLifetime: dbConfig.ConnMaxLifetime,
		MaxWaiting:      dbConfig.MaxWaiting,
		AcquireTimeout:  dbConfig.AcquireTimeout,
		AutoMigrate:     dbConfig.AutoMigrate,
	}, f.logger.Named("store"))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (f *StoreFactory) dsn(dialect store.Dialect, dbConfig config.DatabaseConfig) (string, error) {
	if dbConfig.DSN != "" {
		return dbConfig.DSN, nil
	}

	switch dialect {
	case store.DialectSQLite:
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(dbConfig.SQLitePath), 0755); err != nil {
			return "", fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return SQLiteDSN(dbConfig.SQLitePath), nil
	case store.DialectMySQL:
		return dbConfig.MySQLDSN(), nil
	case store.DialectPostgres:
		return dbConfig.PostgresDSN(), nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", dialect)
	}
}

// SQLiteDSN returns a go-sqlite3 DSN for path with foreign keys enforced
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}
