package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/ledger"
)

func TestCreateMirrorsToRelationalStore(t *testing.T) {
	ctx := context.Background()
	doc, rel := newStores(t)
	svc := NewExpenseService(doc, rel, nil)

	date, _ := core.ParseDate("2025-10-24")
	created, err := svc.Create(ctx, core.Expense{
		Date:        date,
		Amount:      decimal.RequireFromString("4.5"),
		Category:    "Food",
		Description: "Coffee",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	mirrored, err := rel.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("mirror row missing: %v", err)
	}
	if !mirrored.Amount.Equal(created.Amount) || mirrored.Description != "Coffee" {
		t.Fatalf("mirror mismatch: %+v", mirrored)
	}
}

func TestUpdateAndDeleteKeepMirrorInStep(t *testing.T) {
	ctx := context.Background()
	doc, rel := newStores(t)
	svc := NewExpenseService(doc, rel, nil)

	date, _ := core.ParseDate("2025-10-24")
	created, err := svc.Create(ctx, core.Expense{
		Date:        date,
		Amount:      decimal.NewFromInt(10),
		Category:    "Food",
		Description: "Lunch",
	})
	if err != nil {
		t.Fatal(err)
	}

	amount := decimal.RequireFromString("12.50")
	if _, err := svc.Update(ctx, created.ID, ledger.Patch{Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	mirrored, _ := rel.Get(ctx, created.ID)
	if !mirrored.Amount.Equal(amount) {
		t.Fatalf("mirror not updated: %s", mirrored.Amount)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var nf *core.NotFoundError
	if _, err := rel.Get(ctx, created.ID); !errors.As(err, &nf) {
		t.Fatalf("expected mirror row gone, got %v", err)
	}
	if _, err := doc.Get(ctx, created.ID); !errors.As(err, &nf) {
		t.Fatalf("expected primary record gone, got %v", err)
	}
}

func TestCreateRejectsInvalidExpense(t *testing.T) {
	ctx := context.Background()
	doc, rel := newStores(t)
	svc := NewExpenseService(doc, rel, nil)

	date, _ := core.ParseDate("2025-10-24")
	_, err := svc.Create(ctx, core.Expense{
		Date:        date,
		Amount:      decimal.NewFromInt(-1),
		Category:    "Food",
		Description: "x",
	})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	// Nothing reached either store.
	records, _ := doc.List(ctx)
	if len(records) != 0 {
		t.Fatal("invalid expense reached the primary store")
	}
	n, _ := rel.Count(ctx)
	if n != 0 {
		t.Fatal("invalid expense reached the mirror")
	}
}

func TestServiceWithoutMirror(t *testing.T) {
	ctx := context.Background()
	doc, _ := newStores(t)
	svc := NewExpenseService(doc, nil, nil)

	date, _ := core.ParseDate("2025-10-24")
	created, err := svc.Create(ctx, core.Expense{
		Date:        date,
		Amount:      decimal.NewFromInt(1),
		Category:    "Food",
		Description: "x",
	})
	if err != nil {
		t.Fatalf("create without mirror: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete without mirror: %v", err)
	}
}

func TestReadsComeFromConfiguredReader(t *testing.T) {
	ctx := context.Background()
	doc, rel := newStores(t)
	// Write through the primary only, then read via the relational store.
	addExpense(t, doc, "2025-10-01", "10", "Food", "a")

	svc := NewExpenseService(doc, rel, rel)
	records, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// The mirror has not been synced, so the relational reader sees nothing.
	if len(records) != 0 {
		t.Fatalf("expected empty relational read, got %d", len(records))
	}

	bridge := NewSyncBridge(doc, rel)
	if _, err := bridge.ToRelational(ctx); err != nil {
		t.Fatal(err)
	}
	records, _ = svc.List(ctx)
	if len(records) != 1 {
		t.Fatalf("expected 1 record after sync, got %d", len(records))
	}
}
