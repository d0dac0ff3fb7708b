package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	"expenses/internal/ledger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testExpense(id int64, date, amount, category, description string) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	return core.Expense{
		ID:          id,
		Date:        d,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestUpsertInsertAndReplace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := testExpense(7, "2025-10-24", "4.5", "Food", "Coffee")
	if _, err := s.Upsert(ctx, e); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.Get(ctx, 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Amount.Equal(e.Amount) || got.Category != "Food" || got.Description != "Coffee" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(e.CreatedAt) {
		t.Fatalf("created_at drifted: %v != %v", got.CreatedAt, e.CreatedAt)
	}

	// Replacing by id keeps the row count at one.
	e.Description = "Espresso"
	e.Amount = decimal.RequireFromString("5.00")
	if _, err := s.Upsert(ctx, e); err != nil {
		t.Fatalf("replace: %v", err)
	}
	n, _ := s.Count(ctx)
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
	got, _ = s.Get(ctx, 7)
	if got.Description != "Espresso" || !got.Amount.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("replace not applied: %+v", got)
	}
}

func TestUpsertAssignsIDWhenAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := testExpense(0, "2025-10-24", "1", "Food", "x")
	stored, err := s.Upsert(ctx, e)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if stored.ID == 0 {
		t.Fatal("expected an assigned id")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Upsert(ctx, testExpense(1, "2025-10-24", "1", "Food", "x"))
	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Absent row: no error, tolerates re-running synchronization.
	if err := s.Delete(ctx, 1); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := s.Delete(ctx, 999); err != nil {
		t.Fatalf("delete of never-existing row: %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var nf *core.NotFoundError
	if _, err := s.Get(ctx, 42); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.Store != "sqlite" {
		t.Fatalf("error lost the store name: %v", nf)
	}
}

func seedQueryFixture(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	fixtures := []core.Expense{
		testExpense(1, "2025-10-20", "10", "Food", "groceries run"),
		testExpense(2, "2025-10-10", "20", "Transport", "bus ticket"),
		testExpense(3, "2025-10-10", "30", "Food", "coffee and cake"),
		testExpense(4, "2025-11-01", "40", "Bills", "electricity"),
	}
	for _, e := range fixtures {
		if _, err := s.Upsert(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedQueryFixture(t, s)

	all, err := s.Query(ctx, ledger.Filter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	// Date ascending, ties broken by id ascending.
	wantOrder := []int64{2, 3, 1, 4}
	if len(all) != len(wantOrder) {
		t.Fatalf("expected %d rows, got %d", len(wantOrder), len(all))
	}
	for i, id := range wantOrder {
		if all[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, all[i].ID)
		}
	}

	food, _ := s.Query(ctx, ledger.Filter{Category: "food"})
	if len(food) != 2 {
		t.Fatalf("expected 2 food rows, got %d", len(food))
	}

	from, _ := core.ParseDate("2025-10-10")
	to, _ := core.ParseDate("2025-10-31")
	october, _ := s.Query(ctx, ledger.Filter{From: from, To: to})
	if len(october) != 3 {
		t.Fatalf("expected 3 rows in range, got %d", len(october))
	}

	search, _ := s.Query(ctx, ledger.Filter{Search: "coffee"})
	if len(search) != 1 || search[0].ID != 3 {
		t.Fatalf("unexpected search result: %+v", search)
	}

	combined, _ := s.Query(ctx, ledger.Filter{Category: "Food", From: from, To: to, Search: "groceries"})
	if len(combined) != 1 || combined[0].ID != 1 {
		t.Fatalf("unexpected combined result: %+v", combined)
	}
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedQueryFixture(t, s)

	stats, err := s.Aggregate(ctx)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if stats.Summary.Count != 4 {
		t.Fatalf("expected count 4, got %d", stats.Summary.Count)
	}
	if !stats.Summary.Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected total 100, got %s", stats.Summary.Total)
	}
	if !stats.Summary.Average.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected average 25, got %s", stats.Summary.Average)
	}
	// Per-category totals reconcile with the overall total.
	sum := decimal.Zero
	for _, c := range stats.Categories {
		sum = sum.Add(c.Total)
	}
	if !sum.Equal(stats.Summary.Total) {
		t.Fatalf("category totals %s != overall %s", sum, stats.Summary.Total)
	}
}

func TestUnicodeDescriptionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	desc := "Café — crème brûlée 図書館"
	if _, err := s.Upsert(ctx, testExpense(1, "2025-10-24", "9.99", "Food", desc)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := s.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != desc {
		t.Fatalf("description mangled: %q", got.Description)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()
	// Re-opening re-runs migrations against an up-to-date schema.
	s2, err := New(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s2.Close()
}
