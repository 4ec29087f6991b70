// Package source defines the ports the chart pipeline reads transactions
// through, plus the JSON seed format shared by every backend.
package source

import (
	"context"

	"money-manager/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionLister returns every transaction of one type. The pipeline
	// filters and aggregates in memory, so no paging is offered.
	TransactionLister interface {
		ListTransactions(ctx context.Context, typ core.TransactionType) ([]core.Transaction, error)
	}

	// TransactionWriter stores a transaction and returns its assigned ID.
	TransactionWriter interface {
		Insert(ctx context.Context, t core.Transaction) (int64, error)
	}

	// Store is a source that can also be seeded.
	Store interface {
		TransactionLister
		TransactionWriter
	}
)
