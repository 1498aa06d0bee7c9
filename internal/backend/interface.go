package backend

import (
	"context"
	"time"

	"finledger/internal/ledger"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the opened store and its cleanup function
type Result struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory opens ledger stores based on configuration
type Factory interface {
	Open(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// PostgreSQL specific
	PostgresDSN      string
	PostgresMaxConns int32

	// Memory backend specific
	DataDirectory string

	// Write retries for the relational backends
	RetryAttempts uint
	RetryDelay    time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
