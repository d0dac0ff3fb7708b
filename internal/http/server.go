// Package http exposes the expense core over REST plus the CSV and
// HTML report exports. Handlers parse input, call the service, and
// render its results; all business rules live below this layer.
package http

import (
	"net/http"
	"sync"
	"time"

	applog "expenses/internal/log"
	"expenses/internal/services"
)

// reportCacheTTL bounds how stale a served report can be.
const reportCacheTTL = 30 * time.Second

// NewServer wires the routes and returns a configured *http.Server.
func NewServer(addr string, svc *services.ExpenseService) *http.Server {
	h := &handler{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/expenses", h.listExpenses)
	mux.HandleFunc("POST /api/expenses", h.createExpense)
	mux.HandleFunc("GET /api/expenses/{id}", h.getExpense)
	mux.HandleFunc("PUT /api/expenses/{id}", h.updateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", h.deleteExpense)
	mux.HandleFunc("GET /api/summary", h.summary)
	mux.HandleFunc("GET /api/categories", h.categories)
	mux.HandleFunc("GET /export/csv", h.exportCSV)
	mux.HandleFunc("GET /report", h.report)

	return &http.Server{
		Addr:    addr,
		Handler: applog.Middleware(mux),
	}
}

// renderCache memoizes one rendered artifact for a short TTL. The
// report is recomputed from the full record set on every miss, which
// is cheap at this system's scale but not per-request cheap.
type renderCache struct {
	mu      sync.Mutex
	data    []byte
	expires time.Time
}

func (c *renderCache) get() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil || time.Now().After(c.expires) {
		return nil, false
	}
	return c.data, true
}

func (c *renderCache) set(data []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.expires = time.Now().Add(ttl)
}

func (c *renderCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
}
