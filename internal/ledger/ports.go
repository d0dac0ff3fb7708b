// Package ledger defines the ports shared by the two interchangeable
// expense stores: the document-based primary store and the relational
// mirror. Callers program against these interfaces; the sync bridge
// reconciles the two implementations.
package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"expenses/internal/analytics"
	"expenses/internal/core"
)

type (
	// Reader lists persisted expenses in their stored order.
	Reader interface {
		List(ctx context.Context) ([]core.Expense, error)
		Get(ctx context.Context, id int64) (core.Expense, error)
	}

	// Writer mutates the record set. Add assigns the id and timestamps;
	// Update and Delete fail with core.NotFoundError on unknown ids.
	Writer interface {
		Add(ctx context.Context, e core.Expense) (core.Expense, error)
		Update(ctx context.Context, id int64, patch Patch) (core.Expense, error)
		Delete(ctx context.Context, id int64) error
	}

	// Querier returns expenses matching a filter, ordered by date
	// ascending with ties broken by id ascending.
	Querier interface {
		Query(ctx context.Context, f Filter) ([]core.Expense, error)
	}

	// Aggregator computes the overall and per-category statistics in a
	// single pass over the store.
	Aggregator interface {
		Aggregate(ctx context.Context) (analytics.Stats, error)
	}

	// ReadStore is the read side of the ledger capability. Both the
	// document store and the relational mirror satisfy it, so analytics
	// and exports can be served from either.
	ReadStore interface {
		Reader
		Querier
	}

	// Store is the full ledger capability.
	Store interface {
		Reader
		Writer
		Querier
	}
)

// Filter selects a subset of expenses. Zero-valued fields are ignored;
// the date range is inclusive on both ends.
type Filter struct {
	Category string
	From     core.Date
	To       core.Date
	Search   string
}

// Patch carries the mutable fields of an update; nil fields are left
// unchanged. ID and CreatedAt are never patchable.
type Patch struct {
	Date        *core.Date
	Amount      *decimal.Decimal
	Category    *string
	Description *string
}

// Apply returns a copy of e with the patched fields set and normalized.
func (p Patch) Apply(e core.Expense) core.Expense {
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	return e.Normalize()
}
