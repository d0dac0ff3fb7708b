// Package services orchestrates the two expense stores: the expense
// service routes writes through the primary document store and mirrors
// them to the relational store, and the sync bridge reconciles the two
// on demand.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"expenses/internal/core"
	"expenses/internal/ledger"
)

// Mirror is the slice of the relational store the service needs to keep
// the mirror in step on each write.
type Mirror interface {
	Upsert(ctx context.Context, e core.Expense) (core.Expense, error)
	Delete(ctx context.Context, id int64) error
}

// ExpenseService owns the write path. Every mutation commits to the
// primary store first; the mirror is updated best-effort afterwards, so
// a mirror outage never loses a committed write. The next bridge run
// repairs any divergence.
type ExpenseService struct {
	primary ledger.Store
	mirror  Mirror
	reader  ledger.ReadStore
}

// NewExpenseService builds a service writing to primary and mirroring
// to mirror (nil disables mirroring). Reads are served from reader;
// pass nil to read from the primary store.
func NewExpenseService(primary ledger.Store, mirror Mirror, reader ledger.ReadStore) *ExpenseService {
	if reader == nil {
		reader = primary
	}
	return &ExpenseService{primary: primary, mirror: mirror, reader: reader}
}

// Create validates and persists a new expense, then mirrors it.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	stored, err := s.primary.Add(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	s.mirrorUpsert(ctx, stored)
	return stored, nil
}

// Update patches an existing expense and mirrors the result.
func (s *ExpenseService) Update(ctx context.Context, id int64, patch ledger.Patch) (core.Expense, error) {
	updated, err := s.primary.Update(ctx, id, patch)
	if err != nil {
		return core.Expense{}, err
	}
	s.mirrorUpsert(ctx, updated)
	return updated, nil
}

// Delete removes an expense from the primary store and the mirror.
func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.primary.Delete(ctx, id); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.Delete(ctx, id); err != nil {
			// The write is committed; the mirror catches up on the
			// next bridge run.
			slog.ErrorContext(ctx, "Failed to mirror delete", "id", id, "error", err)
		}
	}
	return nil
}

// List returns all expenses from the configured read store.
func (s *ExpenseService) List(ctx context.Context) ([]core.Expense, error) {
	return s.reader.List(ctx)
}

// Get returns one expense from the configured read store.
func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.reader.Get(ctx, id)
}

// Query filters expenses via the configured read store.
func (s *ExpenseService) Query(ctx context.Context, f ledger.Filter) ([]core.Expense, error) {
	return s.reader.Query(ctx, f)
}

func (s *ExpenseService) mirrorUpsert(ctx context.Context, e core.Expense) {
	if s.mirror == nil {
		return
	}
	if _, err := s.mirror.Upsert(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to mirror expense", "id", e.ID, "error", err)
	}
}

// Close releases whichever stores hold resources.
func (s *ExpenseService) Close() error {
	var errs []error
	for _, v := range []any{s.primary, s.mirror} {
		if c, ok := v.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
