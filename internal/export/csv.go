// Package export renders the canonical record set into caller-facing
// artifacts: RFC4180 CSV, a self-contained HTML report, and the JSON
// wire format. Given the same records and point in time, every renderer
// produces byte-identical output.
package export

import (
	"encoding/csv"
	"io"

	"expenses/internal/core"
)

// CSVHeader is the fixed column order of the CSV export.
var CSVHeader = []string{"date", "amount", "category", "description"}

// WriteCSV writes one header row plus one row per expense. encoding/csv
// quotes fields containing the delimiter, quotes, or newlines per
// RFC4180.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range expenses {
		row := []string{e.Date.String(), e.Amount.String(), e.Category, e.Description}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
