package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/ledger/document"
	"expenses/internal/ledger/sqlite"
)

func newStores(t *testing.T) (*document.Store, *sqlite.Store) {
	t.Helper()
	dir := t.TempDir()
	doc := document.New(filepath.Join(dir, "expenses.json"))
	rel, err := sqlite.New(filepath.Join(dir, "expenses.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { rel.Close() })
	return doc, rel
}

func addExpense(t *testing.T, doc *document.Store, date, amount, category, description string) core.Expense {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatal(err)
	}
	e, err := doc.Add(context.Background(), core.Expense{
		Date:        d,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: description,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	return e
}

func TestToRelationalMirrorsAllRecords(t *testing.T) {
	ctx := context.Background()
	doc, rel := newStores(t)
	addExpense(t, doc, "2025-10-01", "10", "Food", "a")
	addExpense(t, doc, "2025-10-02", "30", "Food", "b")
	addExpense(t, doc, "2025-10-03", "20", "Transport", "c")

	bridge := NewSyncBridge(doc, rel)
	result, err := bridge.ToRelational(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Upserted != 3 || result.Deleted != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	rows, err := rel.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 mirrored rows, got %d", len(rows))
	}
}

func TestToRelationalIsIdempotent(t *testing.T) {
	ctx := context.Background()
	doc, rel := newStores(t)
	addExpense(t, doc, "2025-10-01", "10", "Food", "a")
	addExpense(t, doc, "2025-10-02", "20", "Food", "b")

	bridge := NewSyncBridge(doc, rel)
	if _, err := bridge.ToRelational(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	before, _ := rel.List(ctx)

	result, err := bridge.ToRelational(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Deleted != 0 {
		t.Fatalf("second run deleted %d rows", result.Deleted)
	}
	after, _ := rel.List(ctx)
	if len(before) != len(after) {
		t.Fatalf("row count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID || !before[i].Amount.Equal(after[i].Amount) ||
			before[i].Description != after[i].Description ||
			!before[i].UpdatedAt.Equal(after[i].UpdatedAt) {
			t.Fatalf("row %d changed between runs", before[i].ID)
		}
	}
}

func TestDeletionPropagates(t *testing.T) {
	ctx := context.Background()
	doc, rel := newStores(t)
	keep := addExpense(t, doc, "2025-10-01", "10", "Food", "keep")
	gone := addExpense(t, doc, "2025-10-02", "20", "Food", "gone")

	bridge := NewSyncBridge(doc, rel)
	if _, err := bridge.ToRelational(ctx); err != nil {
		t.Fatal(err)
	}

	// Delete only in the primary store, then reconcile.
	if err := doc.Delete(ctx, gone.ID); err != nil {
		t.Fatal(err)
	}
	result, err := bridge.ToRelational(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if result.Deleted != 1 {
		t.Fatalf("expected 1 orphan deleted, got %d", result.Deleted)
	}

	rows, _ := rel.List(ctx)
	if len(rows) != 1 || rows[0].ID != keep.ID {
		t.Fatalf("unexpected mirror state: %+v", rows)
	}
}

func TestToDocumentRecoversFromCorruptPrimary(t *testing.T) {
	ctx := context.Background()
	doc, rel := newStores(t)
	a := addExpense(t, doc, "2025-10-01", "10", "Food", "a")
	b := addExpense(t, doc, "2025-10-02", "20", "Transport", "b")

	bridge := NewSyncBridge(doc, rel)
	if _, err := bridge.ToRelational(ctx); err != nil {
		t.Fatal(err)
	}

	// Corrupt the document, then rebuild it from the mirror.
	if err := os.WriteFile(doc.Path(), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := doc.List(ctx); err == nil {
		t.Fatal("expected corrupt store error before recovery")
	}

	result, err := bridge.ToDocument(ctx)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if result.Upserted != 2 {
		t.Fatalf("expected 2 recovered records, got %d", result.Upserted)
	}

	recovered, err := doc.List(ctx)
	if err != nil {
		t.Fatalf("list after recovery: %v", err)
	}
	if len(recovered) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recovered))
	}
	ids := map[int64]bool{recovered[0].ID: true, recovered[1].ID: true}
	if !ids[a.ID] || !ids[b.ID] {
		t.Fatalf("recovered ids %v do not match originals", ids)
	}
}
