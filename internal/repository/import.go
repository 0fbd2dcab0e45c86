package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sapuran-Berperan/backoffice-tables/internal/catalog"
	"github.com/Sapuran-Berperan/backoffice-tables/internal/model"
)

// ImportRow is one row of an uploaded reference book. A row with an ID updates that
// record; a row without one is created.
type ImportRow struct {
	Line  int
	ID    int64
	Input model.RowInput
}

// ImportResult counts the rows an import created and updated
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ImportError locates the row that stopped an import
type ImportError struct {
	Line int
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// ErrNoTransactions is returned by ImportRows when the store was built on a handle
// that cannot begin transactions
var ErrNoTransactions = errors.New("database handle does not support transactions")

type txBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// ImportRows applies every row in one transaction. All rows are validated before the
// transaction starts; the first failing row rolls the whole import back.
func (s *Store) ImportRows(ctx context.Context, res *catalog.Resource, rows []ImportRow) (*ImportResult, error) {
	editable := res.EditableFields()
	for _, r := range rows {
		if errs := r.Input.Validate(editable); len(errs) > 0 {
			return nil, &ImportError{Line: r.Line, Err: &ValidationError{Fields: errs}}
		}
	}

	db, ok := s.db.(txBeginner)
	if !ok {
		return nil, ErrNoTransactions
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	txStore := New(tx)
	result := &ImportResult{}
	for _, r := range rows {
		if r.ID > 0 {
			_, err = txStore.UpdateRow(ctx, res, r.ID, r.Input)
			result.Updated++
		} else {
			_, err = txStore.CreateRow(ctx, res, r.Input)
			result.Created++
		}
		if err != nil {
			return nil, &ImportError{Line: r.Line, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return result, nil
}
