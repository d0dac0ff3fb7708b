package document

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

type sampleExpense struct {
	date, amount, category, description string
}

var sampleExpenses = []sampleExpense{
	{"2025-10-22", "4.50", "Food", "Morning coffee at local cafe"},
	{"2025-10-20", "12.75", "Food", "Lunch at downtown restaurant"},
	{"2025-10-18", "8.25", "Food", "Pizza delivery for dinner"},
	{"2025-10-21", "67.89", "Shopping", "Weekly groceries at supermarket"},
	{"2025-10-16", "89.50", "Shopping", "Winter jacket from clothing store"},
	{"2025-10-24", "15.00", "Transport", "Bus fare for city center trip"},
	{"2025-10-15", "35.60", "Transport", "Taxi ride to airport"},
	{"2025-10-19", "18.50", "Entertainment", "Movie tickets for evening show"},
	{"2025-10-05", "125.00", "Bills", "Monthly electricity bill"},
	{"2025-10-12", "75.00", "Healthcare", "Doctor consultation"},
}

// SeedSample installs the demo records when the store is empty. A
// non-empty store is left untouched.
func (s *Store) SeedSample(ctx context.Context) error {
	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.InfoContext(ctx, "Store already has data, skipping sample seed", "count", len(existing))
		return nil
	}
	for _, sample := range sampleExpenses {
		date, err := core.ParseDate(sample.date)
		if err != nil {
			return err
		}
		e := core.Expense{
			Date:        date,
			Amount:      decimal.RequireFromString(sample.amount),
			Category:    sample.category,
			Description: sample.description,
		}
		if _, err := s.Add(ctx, e); err != nil {
			return err
		}
	}
	slog.InfoContext(ctx, "Sample data seeded", "count", len(sampleExpenses))
	return nil
}
