package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Categories is the fixed category set. User-supplied labels outside this
// set are accepted as-is; labels matching one of these case-insensitively
// are folded onto the canonical spelling.
var Categories = []string{
	"Food",
	"Transport",
	"Entertainment",
	"Shopping",
	"Bills",
	"Healthcare",
	"Education",
	"Travel",
	"Other",
}

// Expense is one recorded transaction. ID and CreatedAt never change after
// creation; UpdatedAt refreshes on every mutation.
type Expense struct {
	ID          int64           `json:"id"`
	Date        Date            `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	if e.Amount.Sign() <= 0 {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if strings.TrimSpace(e.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if strings.TrimSpace(e.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	return nil
}

// Normalize trims text fields and folds the category onto the canonical
// set when it matches case-insensitively. Pure: returns a copy.
func (e Expense) Normalize() Expense {
	e.Description = strings.TrimSpace(e.Description)
	e.Category = CanonicalCategory(e.Category)
	return e
}

// CanonicalCategory trims the label and maps it to the fixed set when it
// matches one of its members ignoring case. Unknown labels pass through.
func CanonicalCategory(label string) string {
	label = strings.TrimSpace(label)
	for _, c := range Categories {
		if strings.EqualFold(label, c) {
			return c
		}
	}
	return label
}
