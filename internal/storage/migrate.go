package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	applog "finledger/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrator owns a dedicated connection so schema changes never share the
// repository's pool.
type migrator struct {
	db *sql.DB
	m  *migrate.Migrate
}

func newMigrator(dbPath string) (*migrator, error) {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open migration database: %w", err)
	}

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		migrateDB.Close()
		return nil, fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		migrateDB.Close()
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		migrateDB.Close()
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return &migrator{db: migrateDB, m: m}, nil
}

func (mg *migrator) Close() {
	mg.m.Close()
	mg.db.Close()
}

func (mg *migrator) version() uint {
	v, _, err := mg.m.Version()
	if err != nil {
		return 0
	}
	return v
}

// RunMigrations creates the ledger schema and seeds the default categories.
// It is idempotent.
func RunMigrations(dbPath string) error {
	mg, err := newMigrator(dbPath)
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	slog.Debug("Ledger schema up to date", applog.FieldOperation, applog.OpMigrate, applog.FieldPath, dbPath, "version", mg.version())
	return nil
}

// ResetSchema drops every ledger table and recreates the schema from
// scratch, discarding all stored transactions.
func ResetSchema(dbPath string) error {
	mg, err := newMigrator(dbPath)
	if err != nil {
		return err
	}
	defer mg.Close()

	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("revert migrations: %w", err)
	}
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("Ledger schema recreated", applog.FieldOperation, applog.OpReset, applog.FieldPath, dbPath, "version", mg.version())
	return nil
}
