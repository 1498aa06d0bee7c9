// Package postgres provides a PostgreSQL ledger store.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

//go:embed schema.sql
var schemaSQL string

// Config holds the PostgreSQL store configuration.
type Config struct {
	// DSN is a libpq style connection string or URL.
	DSN string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int

	RetryAttempts uint
	RetryDelay    time.Duration
}

// Store keeps the ledger in PostgreSQL.
type Store struct {
	pool          *pgxpool.Pool
	logger        *slog.Logger
	retryAttempts uint
	retryDelay    time.Duration
}

// New connects, applies the schema and returns a ready store.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 4
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{
		pool:          pool,
		logger:        logger,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	logger.Info("connected to PostgreSQL", "database", poolConfig.ConnConfig.Database)
	return s, nil
}

// Insert implements ledger.TransactionWriter
func (s *Store) Insert(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := retry.Do(
		func() error {
			return s.pool.QueryRow(ctx, `
				INSERT INTO transactions (date, amount, category, description)
				VALUES ($1, $2::numeric, $3, NULLIF($4, ''))
				RETURNING transaction_id`,
				t.Date.Time, t.Amount.String(), t.Category, t.Description,
			).Scan(&id)
		},
		retry.Context(ctx),
		retry.Attempts(s.retryAttempts),
		retry.Delay(s.retryDelay),
		retry.RetryIf(pgconn.SafeToRetry),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert transaction: %w", core.ErrStore, err)
	}

	s.logger.DebugContext(ctx, "transaction saved to PostgreSQL",
		"transaction_id", id,
		"category", t.Category,
	)
	return id, nil
}

// ScanAll implements ledger.TransactionScanner
func (s *Store) ScanAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT transaction_id, date, amount::text, category, COALESCE(description, '')
		FROM transactions
		ORDER BY date DESC, transaction_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: query transactions: %w", core.ErrStore, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t      core.Transaction
			date   time.Time
			amount string
		)
		if err := rows.Scan(&t.ID, &date, &amount, &t.Category, &t.Description); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %w", core.ErrStore, err)
		}
		t.Date = core.NewDate(date.Year(), int(date.Month()), date.Day())
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %d amount: %w", core.ErrStore, t.ID, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transactions: %w", core.ErrStore, err)
	}
	return out, nil
}

// ListCategories implements ledger.CategoryReader
func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, type FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query categories: %w", core.ErrStore, err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var kind string
		if err := rows.Scan(&c.Name, &kind); err != nil {
			return nil, fmt.Errorf("%w: scan category: %w", core.ErrStore, err)
		}
		c.Type = core.CategoryType(kind)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate categories: %w", core.ErrStore, err)
	}
	return out, nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("closed PostgreSQL connection pool")
	}
	return nil
}

var _ ledger.Store = (*Store)(nil)
