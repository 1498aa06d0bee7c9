package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/avast/retry-go"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"finledger/internal/core"
	"finledger/internal/ledger"
	applog "finledger/internal/log"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 100 * time.Millisecond
)

type SQLiteRepository struct {
	db            *sql.DB
	path          string
	retryAttempts uint
	retryDelay    time.Duration
}

// Option customises a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithRetry sets how many times a write blocked by a busy database is
// attempted and the base delay between attempts.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(r *SQLiteRepository) {
		if attempts > 0 {
			r.retryAttempts = attempts
		}
		if delay > 0 {
			r.retryDelay = delay
		}
	}
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// Single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:            db,
		path:          dbPath,
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Path returns the database file backing the repository.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// Insert implements ledger.TransactionWriter
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := retry.Do(
		func() error {
			res, err := r.db.ExecContext(ctx,
				`INSERT INTO transactions (date, amount, category, description) VALUES (?, ?, ?, ?)`,
				t.Date.String(), t.Amount.String(), t.Category, nullString(t.Description))
			if err != nil {
				return err
			}
			id, err = res.LastInsertId()
			return err
		},
		retry.Context(ctx),
		retry.Attempts(r.retryAttempts),
		retry.Delay(r.retryDelay),
		retry.RetryIf(isBusy),
		retry.OnRetry(func(n uint, err error) {
			slog.WarnContext(ctx, "SQLite busy, retrying insert", applog.FieldAttempt, n+1, applog.FieldError, err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: insert transaction: %w", core.ErrStore, err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite", applog.NewFields().
		WithComponent(applog.ComponentStorage).
		WithOperation(applog.OpInsert).
		WithTransaction(id, t.Date.String(), t.Category, t.Amount.String()).
		ToSlice()...)

	return id, nil
}

// ScanAll implements ledger.TransactionScanner
func (r *SQLiteRepository) ScanAll(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT transaction_id, date, amount, category, description
		FROM transactions
		ORDER BY date DESC, transaction_id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: query transactions: %w", core.ErrStore, err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t           core.Transaction
			date        string
			amount      decimal.Decimal
			description sql.NullString
		)
		if err := rows.Scan(&t.ID, &date, &amount, &t.Category, &description); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %w", core.ErrStore, err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %d: %w", core.ErrStore, t.ID, err)
		}
		t.Date = d
		t.Amount = amount
		t.Description = description.String
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transactions: %w", core.ErrStore, err)
	}

	slog.DebugContext(ctx, "Ledger scanned", applog.FieldOperation, applog.OpScan, "transactions", len(out))
	return out, nil
}

// ListCategories implements ledger.CategoryReader
func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, type FROM categories ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: query categories: %w", core.ErrStore, err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c    core.Category
			kind string
		)
		if err := rows.Scan(&c.Name, &kind); err != nil {
			return nil, fmt.Errorf("%w: scan category: %w", core.ErrStore, err)
		}
		c.Type = core.CategoryType(kind)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate categories: %w", core.ErrStore, err)
	}

	slog.DebugContext(ctx, "Categories listed", applog.FieldOperation, applog.OpList, "categories", len(out))
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isBusy reports whether err is a transient lock conflict worth retrying.
func isBusy(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return true
	default:
		return false
	}
}

var _ ledger.Store = (*SQLiteRepository)(nil)
