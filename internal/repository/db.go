package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// DBTX is satisfied by *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

var (
	// ErrNotFound is returned when the addressed row does not exist or is deleted
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned on unique constraint violations
	ErrConflict = errors.New("record already exists")
)

// ValidationError carries per-field messages for a rejected row
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		parts = append(parts, k+": "+v)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Store runs table queries described by the resource catalog
type Store struct {
	db DBTX
}

// New creates a Store
func New(db DBTX) *Store {
	return &Store{db: db}
}

// translateError maps driver errors onto repository errors
func translateError(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return ErrConflict
		case pqErr.Code.Class() == "22", pqErr.Code == "23502":
			field := pqErr.Column
			if field == "" {
				field = "_"
			}
			return &ValidationError{Fields: map[string]string{field: pqErr.Message}}
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
