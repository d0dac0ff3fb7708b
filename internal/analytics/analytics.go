// Package analytics computes descriptive statistics over expense record
// sets. All functions are deterministic: the same input set yields the
// same output regardless of ordering.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Summary describes a record set as a whole. Average is zero when the
// set is empty.
type Summary struct {
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
	Average decimal.Decimal `json:"average"`
	MinDate core.Date       `json:"min_date"`
	MaxDate core.Date       `json:"max_date"`
}

// CategoryStat aggregates one category's share of the record set.
// Percentage is of the grand total, rounded to two decimal places.
type CategoryStat struct {
	Category   string          `json:"category"`
	Count      int             `json:"count"`
	Total      decimal.Decimal `json:"total"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Stats bundles the summary with the per-category breakdown.
type Stats struct {
	Summary    Summary        `json:"summary"`
	Categories []CategoryStat `json:"categories"`
}

// Summarize computes count, total, average, and the date span of the
// record set. An empty set yields all-zero values, never an error.
func Summarize(expenses []core.Expense) Summary {
	s := Summary{Total: decimal.Zero, Average: decimal.Zero}
	for _, e := range expenses {
		s.Count++
		s.Total = s.Total.Add(e.Amount)
		if s.MinDate.IsZero() || e.Date.Before(s.MinDate) {
			s.MinDate = e.Date
		}
		if s.MaxDate.IsZero() || e.Date.After(s.MaxDate) {
			s.MaxDate = e.Date
		}
	}
	if s.Count > 0 {
		s.Average = s.Total.DivRound(decimal.NewFromInt(int64(s.Count)), 2)
	}
	return s
}

// ByCategory maps each category present in the record set to its count,
// total, and percentage of the grand total. Categories with no records
// are omitted. Results are ordered by total descending, ties broken by
// category name ascending.
func ByCategory(expenses []core.Expense) []CategoryStat {
	totals := make(map[string]*CategoryStat)
	grand := decimal.Zero
	for _, e := range expenses {
		st, ok := totals[e.Category]
		if !ok {
			st = &CategoryStat{Category: e.Category, Total: decimal.Zero}
			totals[e.Category] = st
		}
		st.Count++
		st.Total = st.Total.Add(e.Amount)
		grand = grand.Add(e.Amount)
	}

	out := make([]CategoryStat, 0, len(totals))
	for _, st := range totals {
		if grand.Sign() > 0 {
			st.Percentage = st.Total.Div(grand).Mul(hundred).Round(2)
		} else {
			st.Percentage = decimal.Zero
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DateRange returns the expenses dated within [start, end] inclusive.
// A zero start or end leaves that side of the range open.
func DateRange(expenses []core.Expense, start, end core.Date) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if !start.IsZero() && e.Date.Before(start) {
			continue
		}
		if !end.IsZero() && e.Date.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Compute bundles Summarize and ByCategory over one record set.
func Compute(expenses []core.Expense) Stats {
	return Stats{
		Summary:    Summarize(expenses),
		Categories: ByCategory(expenses),
	}
}

// ComputeRange filters to [start, end] inclusive before computing stats.
func ComputeRange(expenses []core.Expense, start, end core.Date) Stats {
	return Compute(DateRange(expenses, start, end))
}
