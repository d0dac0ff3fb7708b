package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"expenses/internal/core"
	"expenses/internal/ledger"
	applog "expenses/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err.Error())
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Internal
// failures are logged with detail and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *core.ValidationError
		notFound   *core.NotFoundError
		corrupt    *core.CorruptStoreError
		storage    *core.StorageError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: validation.Error(),
			Field: validation.Field,
		})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFound.Error()})
	case errors.As(err, &corrupt), errors.As(err, &storage):
		slog.Error("Store failure",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err.Error(),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal storage error"})
	default:
		slog.Error("Unhandled error",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err.Error(),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &core.ValidationError{Field: "id", Err: errors.New("id must be a positive integer")}
	}
	return id, nil
}

// parseFilter reads the optional category, from, to and q query
// parameters into a store filter.
func parseFilter(r *http.Request) (ledger.Filter, error) {
	q := r.URL.Query()
	filter := ledger.Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("q")),
	}
	if raw := strings.TrimSpace(q.Get("from")); raw != "" {
		from, err := core.ParseDate(raw)
		if err != nil {
			return ledger.Filter{}, &core.ValidationError{Field: "from", Err: core.ErrInvalidDate}
		}
		filter.From = from
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		to, err := core.ParseDate(raw)
		if err != nil {
			return ledger.Filter{}, &core.ValidationError{Field: "to", Err: core.ErrInvalidDate}
		}
		filter.To = to
	}
	return filter, nil
}
