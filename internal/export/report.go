package export

import (
	"embed"
	"html/template"
	"io"
	"time"

	"expenses/internal/analytics"
	"expenses/internal/core"
)

//go:embed templates/report.html
var templatesFS embed.FS

var reportTmpl = template.Must(template.ParseFS(templatesFS, "templates/report.html"))

type reportCategory struct {
	analytics.CategoryStat
	Width string
}

type reportData struct {
	GeneratedAt string
	HasData     bool
	Summary     analytics.Summary
	Categories  []reportCategory
	Expenses    []core.Expense
}

// WriteReport renders a self-contained HTML document with summary
// cards, a proportional per-category breakdown, and the full record
// listing. Zero records render a "no data" state. generatedAt is the
// only input that varies between otherwise identical renders.
func WriteReport(w io.Writer, expenses []core.Expense, stats analytics.Stats, generatedAt time.Time) error {
	data := reportData{
		GeneratedAt: generatedAt.UTC().Format("2006-01-02 15:04 UTC"),
		HasData:     len(expenses) > 0,
		Summary:     stats.Summary,
		Expenses:    expenses,
	}
	for _, c := range stats.Categories {
		data.Categories = append(data.Categories, reportCategory{
			CategoryStat: c,
			Width:        c.Percentage.String(),
		})
	}
	return reportTmpl.Execute(w, data)
}
