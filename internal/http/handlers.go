package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"expenses/internal/analytics"
	"expenses/internal/core"
	"expenses/internal/export"
	"expenses/internal/ledger"
	"expenses/internal/services"
)

type handler struct {
	svc         *services.ExpenseService
	reportCache renderCache
}

// expenseRequest is the write payload. Amount may arrive as a JSON
// string or a bare number; both go through ParseAmount.
type expenseRequest struct {
	Date        string          `json:"date"`
	Amount      json.RawMessage `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// expensePatchRequest carries optional fields; absent ones stay
// unchanged.
type expensePatchRequest struct {
	Date        *string          `json:"date"`
	Amount      *json.RawMessage `json:"amount"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
}

func (h *handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := h.svc.Query(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	export.WriteWireList(w, expenses)
}

func (h *handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &core.ValidationError{Field: "body", Err: err})
		return
	}
	candidate, err := req.toExpense()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.svc.Create(r.Context(), candidate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.reportCache.invalidate()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)
	export.WriteWireRecord(w, created)
}

func (h *handler) getExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	export.WriteWireRecord(w, e)
}

func (h *handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req expensePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &core.ValidationError{Field: "body", Err: err})
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.svc.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.reportCache.invalidate()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	export.WriteWireRecord(w, updated)
}

func (h *handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	h.reportCache.invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := h.svc.Query(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.Compute(expenses))
}

func (h *handler) categories(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	seen := make(map[string]bool, len(core.Categories))
	categories := make([]string, 0, len(core.Categories))
	for _, c := range core.Categories {
		seen[c] = true
		categories = append(categories, c)
	}
	for _, e := range expenses {
		if !seen[e.Category] {
			seen[e.Category] = true
			categories = append(categories, e.Category)
		}
	}
	sort.Strings(categories)
	writeJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

func (h *handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expenses, err := h.svc.Query(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	export.WriteCSV(w, expenses)
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.reportCache.get(); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	expenses, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteReport(&buf, expenses, analytics.Compute(expenses), time.Now()); err != nil {
		writeError(w, r, err)
		return
	}
	h.reportCache.set(buf.Bytes(), reportCacheTTL)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (r expenseRequest) toExpense() (core.Expense, error) {
	date, err := core.ParseDate(strings.TrimSpace(r.Date))
	if err != nil {
		return core.Expense{}, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
	}
	amount, err := core.ParseAmount(rawToString(r.Amount))
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Date:        date,
		Amount:      amount,
		Category:    r.Category,
		Description: r.Description,
	}, nil
}

func (r expensePatchRequest) toPatch() (ledger.Patch, error) {
	var patch ledger.Patch
	if r.Date != nil {
		date, err := core.ParseDate(strings.TrimSpace(*r.Date))
		if err != nil {
			return ledger.Patch{}, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
		}
		patch.Date = &date
	}
	if r.Amount != nil {
		amount, err := core.ParseAmount(rawToString(*r.Amount))
		if err != nil {
			return ledger.Patch{}, err
		}
		patch.Amount = &amount
	}
	patch.Category = r.Category
	patch.Description = r.Description
	return patch, nil
}

// rawToString accepts both a JSON string and a bare number token.
func rawToString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	return strings.Trim(s, `"`)
}
