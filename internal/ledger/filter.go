package ledger

import (
	"sort"
	"strings"

	"expenses/internal/core"
)

// Matches reports whether e satisfies every set field of the filter.
// Description matching is a case-insensitive substring test.
func (f Filter) Matches(e core.Expense) bool {
	if f.Category != "" && !strings.EqualFold(e.Category, f.Category) {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(f.To) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// SortForQuery orders expenses by date ascending, ties broken by id
// ascending. This is the contract every Querier implementation follows.
func SortForQuery(expenses []core.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		if !expenses[i].Date.Equal(expenses[j].Date.Time) {
			return expenses[i].Date.Before(expenses[j].Date)
		}
		return expenses[i].ID < expenses[j].ID
	})
}
