package export

import (
	"encoding/json"
	"io"

	"expenses/internal/core"
)

// wireList is the listing payload of the wire format.
type wireList struct {
	Expenses []core.Expense `json:"expenses"`
	Count    int            `json:"count"`
}

// WriteWireList writes the JSON listing form: every record with its
// canonical date and amount encodings, plus a count.
func WriteWireList(w io.Writer, expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(wireList{Expenses: expenses, Count: len(expenses)})
}

// WriteWireRecord writes the single-record JSON form.
func WriteWireRecord(w io.Writer, e core.Expense) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
