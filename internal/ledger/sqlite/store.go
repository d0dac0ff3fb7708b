// Package sqlite implements the relational mirror of the expense
// document: an indexed expenses table serving range and category queries
// without loading the whole record set, kept in step with the primary
// store by the sync bridge.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"expenses/internal/analytics"
	"expenses/internal/core"
	"expenses/internal/ledger"
)

const storeName = "sqlite"

const selectColumns = "id, date, amount, category, description, created_at, updated_at"

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Upsert inserts or replaces the row with the expense's id. An expense
// without an id gets one assigned by the table.
func (s *Store) Upsert(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO expenses (date, amount, category, description, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.Date.String(), e.Amount.String(), e.Category, e.Description,
			formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
		if err != nil {
			return core.Expense{}, &core.StorageError{Store: storeName, Op: "insert", Err: err}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return core.Expense{}, &core.StorageError{Store: storeName, Op: "insert", Err: err}
		}
		e.ID = id
		return e, nil
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, date, amount, category, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			amount = excluded.amount,
			category = excluded.category,
			description = excluded.description,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		e.ID, e.Date.String(), e.Amount.String(), e.Category, e.Description,
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return core.Expense{}, &core.StorageError{Store: storeName, Op: "upsert", Err: err}
	}
	return e, nil
}

// Delete removes the row with the given id. Deleting an absent row is a
// no-op so synchronization can be re-run safely.
func (s *Store) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return &core.StorageError{Store: storeName, Op: "delete", Err: err}
	}
	return nil
}

// Get returns the row with the given id.
func (s *Store) Get(ctx context.Context, id int64) (core.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, &core.NotFoundError{ID: id, Store: storeName}
	}
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// List returns every row ordered by date ascending, id ascending.
func (s *Store) List(ctx context.Context) ([]core.Expense, error) {
	return s.queryRows(ctx,
		`SELECT `+selectColumns+` FROM expenses ORDER BY date ASC, id ASC`)
}

// ListIDs returns every row id. The sync bridge uses it to find rows
// whose document counterpart is gone.
func (s *Store) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM expenses ORDER BY id ASC`)
	if err != nil {
		return nil, &core.StorageError{Store: storeName, Op: "list ids", Err: err}
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, &core.StorageError{Store: storeName, Op: "list ids", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Store: storeName, Op: "list ids", Err: err}
	}
	return ids, nil
}

// Query returns rows matching the filter, ordered by date ascending
// with ties broken by id ascending.
func (s *Store) Query(ctx context.Context, f ledger.Filter) ([]core.Expense, error) {
	query := `SELECT ` + selectColumns + ` FROM expenses WHERE 1=1`
	var args []any
	if f.Category != "" {
		query += ` AND category = ? COLLATE NOCASE`
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		query += ` AND date >= ?`
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += ` AND date <= ?`
		args = append(args, f.To.String())
	}
	if f.Search != "" {
		query += ` AND description LIKE '%' || ? || '%'`
		args = append(args, f.Search)
	}
	query += ` ORDER BY date ASC, id ASC`
	return s.queryRows(ctx, query, args...)
}

// Aggregate computes the overall and per-category statistics from one
// scan of the table.
func (s *Store) Aggregate(ctx context.Context) (analytics.Stats, error) {
	expenses, err := s.List(ctx)
	if err != nil {
		return analytics.Stats{}, err
	}
	return analytics.Compute(expenses), nil
}

// Count returns the number of rows.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&n); err != nil {
		return 0, &core.StorageError{Store: storeName, Op: "count", Err: err}
	}
	return n, nil
}

func (s *Store) queryRows(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &core.StorageError{Store: storeName, Op: "query", Err: err}
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Store: storeName, Op: "query", Err: err}
	}
	return expenses, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (core.Expense, error) {
	var (
		e                    core.Expense
		date, amount         string
		createdAt, updatedAt string
	)
	if err := row.Scan(&e.ID, &date, &amount, &e.Category, &e.Description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, err
		}
		return core.Expense{}, &core.StorageError{Store: storeName, Op: "scan", Err: err}
	}

	var err error
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, &core.CorruptStoreError{Store: storeName, Err: fmt.Errorf("row %d: %w", e.ID, err)}
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Expense{}, &core.CorruptStoreError{Store: storeName, Err: fmt.Errorf("row %d amount %q: %w", e.ID, amount, err)}
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Expense{}, &core.CorruptStoreError{Store: storeName, Err: fmt.Errorf("row %d created_at: %w", e.ID, err)}
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Expense{}, &core.CorruptStoreError{Store: storeName, Err: fmt.Errorf("row %d updated_at: %w", e.ID, err)}
	}
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
