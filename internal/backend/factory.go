package backend

import (
	"context"
	"fmt"

	applog "finledger/internal/log"
	"finledger/internal/storage"
	"finledger/internal/storage/memory"
	"finledger/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentBackend)
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// Open implements Factory.Open
func (f *DefaultFactory) Open(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.openSQLite(config)
	case PostgresBackend:
		return f.openPostgres(ctx, config)
	case MemoryBackend:
		return f.openMemory(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) openSQLite(config Config) (*Result, error) {
	var opts []storage.Option
	if config.RetryAttempts > 0 {
		opts = append(opts, storage.WithRetry(config.RetryAttempts, config.RetryDelay))
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", applog.FieldPath, config.SQLiteDBPath)

	return &Result{
		Store:   repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) openPostgres(ctx context.Context, config Config) (*Result, error) {
	store, err := postgres.New(ctx, postgres.Config{
		DSN:           config.PostgresDSN,
		MaxPoolSize:   int(config.PostgresMaxConns),
		RetryAttempts: config.RetryAttempts,
		RetryDelay:    config.RetryDelay,
	}, f.logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL store: %w", err)
	}

	f.logger.Info("Initialized PostgreSQL backend")

	return &Result{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) openMemory(config Config) (*Result, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &Result{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}
