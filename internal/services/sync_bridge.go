package services

import (
	"context"
	"log/slog"

	"expenses/internal/core"
)

// DocumentStore is the slice of the primary store the bridge consumes.
type DocumentStore interface {
	List(ctx context.Context) ([]core.Expense, error)
	Replace(ctx context.Context, expenses []core.Expense) error
}

// RelationalStore is the slice of the secondary store the bridge
// consumes.
type RelationalStore interface {
	Upsert(ctx context.Context, e core.Expense) (core.Expense, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]core.Expense, error)
	ListIDs(ctx context.Context) ([]int64, error)
}

// SyncBridge reconciles the document store and the relational mirror.
// Both directions are idempotent: a second run with no intervening
// writes changes nothing. The invoked direction always wins; the bridge
// never merges fields or drops a well-formed record.
type SyncBridge struct {
	document   DocumentStore
	relational RelationalStore
}

// SyncResult reports what one bridge run did.
type SyncResult struct {
	Upserted int
	Deleted  int
}

func NewSyncBridge(document DocumentStore, relational RelationalStore) *SyncBridge {
	return &SyncBridge{document: document, relational: relational}
}

// ToRelational pushes every document record into the relational store,
// then removes rows whose id no longer exists in the document. This is
// how deletions that happened only in the primary store propagate.
func (b *SyncBridge) ToRelational(ctx context.Context) (SyncResult, error) {
	var result SyncResult

	expenses, err := b.document.List(ctx)
	if err != nil {
		return result, err
	}

	active := make(map[int64]bool, len(expenses))
	for _, e := range expenses {
		if _, err := b.relational.Upsert(ctx, e); err != nil {
			return result, err
		}
		active[e.ID] = true
		result.Upserted++
	}

	ids, err := b.relational.ListIDs(ctx)
	if err != nil {
		return result, err
	}
	for _, id := range ids {
		if active[id] {
			continue
		}
		if err := b.relational.Delete(ctx, id); err != nil {
			return result, err
		}
		result.Deleted++
	}

	slog.InfoContext(ctx, "Sync to relational store completed",
		"upserted", result.Upserted,
		"orphans_deleted", result.Deleted)
	return result, nil
}

// ToDocument replaces the document wholesale with the relational rows.
// This is the recovery path when the document is corrupt but the mirror
// is intact.
func (b *SyncBridge) ToDocument(ctx context.Context) (SyncResult, error) {
	var result SyncResult

	expenses, err := b.relational.List(ctx)
	if err != nil {
		return result, err
	}
	if err := b.document.Replace(ctx, expenses); err != nil {
		return result, err
	}
	result.Upserted = len(expenses)

	slog.InfoContext(ctx, "Document store rebuilt from relational store",
		"records", result.Upserted)
	return result, nil
}
