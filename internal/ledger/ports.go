package ledger

import (
	"context"

	"finledger/internal/core"
)

// Ports for ledger storage adapters.
type (
	// TransactionWriter appends transactions to the ledger.
	TransactionWriter interface {
		// Insert stores t and returns the identifier assigned to it.
		Insert(ctx context.Context, t core.Transaction) (id int64, err error)
	}

	// TransactionScanner reads the full ledger.
	TransactionScanner interface {
		// ScanAll returns every transaction ordered by date descending,
		// newest insert first within the same date.
		ScanAll(ctx context.Context) ([]core.Transaction, error)
	}

	CategoryReader interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	Store interface {
		TransactionWriter
		TransactionScanner
		CategoryReader
		Close() error
	}
)
