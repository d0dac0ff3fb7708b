// Package document implements the primary expense store: every active
// record lives in one JSON document on disk, replaced atomically on each
// write. It is the source of truth the relational mirror reconciles
// against.
package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"expenses/internal/core"
	"expenses/internal/ledger"
)

const storeName = "document"

// Store reads and writes the expense document. All mutations go through
// load, mutate in memory, save; a failed save leaves the previously
// committed document intact.
type Store struct {
	path  string
	mu    sync.Mutex
	alloc allocator
}

// documentFile is the persisted wrapper form. Load also accepts a bare
// top-level list for documents written before the wrapper existed.
type documentFile struct {
	Expenses []core.Expense `json:"expenses"`
}

func New(path string) *Store {
	return &Store{path: path, alloc: allocator{next: 1}}
}

// Path returns the location of the backing document.
func (s *Store) Path() string { return s.path }

// List returns the persisted expenses in stored order.
func (s *Store) List(ctx context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the expense with the given id.
func (s *Store) Get(ctx context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.load()
	if err != nil {
		return core.Expense{}, err
	}
	for _, e := range expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, &core.NotFoundError{ID: id, Store: storeName}
}

// Add validates, normalizes, and persists a new expense, assigning its
// id and timestamps. The stored record is returned.
func (s *Store) Add(ctx context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.load()
	if err != nil {
		return core.Expense{}, err
	}

	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	now := time.Now().UTC()
	e.ID = s.alloc.nextID()
	e.CreatedAt = now
	e.UpdatedAt = now

	expenses = append(expenses, e)
	if err := s.save(expenses); err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense saved to document store",
		"id", e.ID,
		"date", e.Date.String(),
		"amount", e.Amount.String(),
		"category", e.Category)

	return e, nil
}

// Update applies a patch to the expense with the given id. CreatedAt is
// preserved; UpdatedAt refreshes.
func (s *Store) Update(ctx context.Context, id int64, patch ledger.Patch) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.load()
	if err != nil {
		return core.Expense{}, err
	}

	for i, e := range expenses {
		if e.ID != id {
			continue
		}
		updated := patch.Apply(e)
		if err := updated.Validate(); err != nil {
			return core.Expense{}, err
		}
		updated.ID = e.ID
		updated.CreatedAt = e.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		expenses[i] = updated
		if err := s.save(expenses); err != nil {
			return core.Expense{}, err
		}
		slog.InfoContext(ctx, "Expense updated in document store", "id", id)
		return updated, nil
	}
	return core.Expense{}, &core.NotFoundError{ID: id, Store: storeName}
}

// Delete removes the expense with the given id permanently.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.load()
	if err != nil {
		return err
	}

	kept := expenses[:0]
	found := false
	for _, e := range expenses {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return &core.NotFoundError{ID: id, Store: storeName}
	}
	if err := s.save(kept); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted from document store", "id", id)
	return nil
}

// Query filters the document in memory. Results follow the shared
// ordering contract: date ascending, ties by id ascending.
func (s *Store) Query(ctx context.Context, f ledger.Filter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.load()
	if err != nil {
		return nil, err
	}
	matched := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.Matches(e) {
			matched = append(matched, e)
		}
	}
	ledger.SortForQuery(matched)
	return matched, nil
}

// Replace overwrites the whole document with the given record set. The
// sync bridge uses it when recovering from the relational mirror.
func (s *Store) Replace(ctx context.Context, expenses []core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(expenses); err != nil {
		return err
	}
	s.alloc.seed(expenses)
	slog.InfoContext(ctx, "Document store replaced", "count", len(expenses))
	return nil
}

// load reads and parses the document, re-seeding the id allocator from
// the records it finds. A missing file is an empty store, not an error.
// Callers must hold s.mu.
func (s *Store) load() ([]core.Expense, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &core.StorageError{Store: storeName, Op: "load", Err: err}
	}

	expenses, err := parseDocument(raw)
	if err != nil {
		return nil, &core.CorruptStoreError{Store: storeName, Err: err}
	}
	s.alloc.seed(expenses)
	return expenses, nil
}

// parseDocument accepts both the {"expenses": [...]} wrapper and a bare
// top-level list.
func parseDocument(raw []byte) ([]core.Expense, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var expenses []core.Expense
		if err := json.Unmarshal(trimmed, &expenses); err != nil {
			return nil, fmt.Errorf("parse expense list: %w", err)
		}
		return expenses, nil
	}
	var doc documentFile
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("parse expense document: %w", err)
	}
	return doc.Expenses, nil
}

// save writes the wrapper form to a temp file in the same directory and
// renames it over the document, so a reader never observes a partial
// write. Callers must hold s.mu.
func (s *Store) save(expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	data, err := json.MarshalIndent(documentFile{Expenses: expenses}, "", "  ")
	if err != nil {
		return &core.StorageError{Store: storeName, Op: "save", Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &core.StorageError{Store: storeName, Op: "save", Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".expenses-*.json")
	if err != nil {
		return &core.StorageError{Store: storeName, Op: "save", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &core.StorageError{Store: storeName, Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &core.StorageError{Store: storeName, Op: "save", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &core.StorageError{Store: storeName, Op: "save", Err: err}
	}
	return nil
}

// allocator hands out monotonically increasing ids. seed only ever
// raises the next id, so deleting the highest record within a process
// never causes its id to be reissued.
type allocator struct {
	next int64
}

func (a *allocator) seed(expenses []core.Expense) {
	for _, e := range expenses {
		if e.ID >= a.next {
			a.next = e.ID + 1
		}
	}
	if a.next < 1 {
		a.next = 1
	}
}

func (a *allocator) nextID() int64 {
	id := a.next
	a.next++
	return id
}
