package postgres

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// BaseRepository provides common functionality for all repositories.
// Queries are written with ? placeholders and rebound for the driver, so
// the same code runs against PostgreSQL and SQLite.
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *BaseRepository) rebind(query string) string {
	return r.db.Rebind(query)
}

// forUpdate returns the row-lock suffix where the driver supports it.
// SQLite serialises writers on its own.
func (r *BaseRepository) forUpdate() string {
	if r.db.DriverName() == "postgres" {
		return " FOR UPDATE"
	}
	return ""
}

// uniqueViolation reports whether err is a unique constraint failure on a
// constraint or column named column.
func uniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return pqErr.Code == "23505" && strings.Contains(pqErr.Constraint, column)
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
