package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

// ValidationError reports a malformed field on a candidate expense.
// The caller can correct the named field and retry.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports an operation against a nonexistent expense id.
type NotFoundError struct {
	ID    int64
	Store string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("expense %d not found in %s store", e.ID, e.Store)
}

// CorruptStoreError reports a persisted document or table that could not
// be parsed. Fatal for the affected store; recovery goes through the sync
// bridge's reverse migration.
type CorruptStoreError struct {
	Store string
	Err   error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("%s store is corrupt: %v", e.Store, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// StorageError reports a failed read or write on the underlying medium.
type StorageError struct {
	Store string
	Op    string
	Err   error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s store %s: %v", e.Store, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
