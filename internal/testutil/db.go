// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/followups/internal/repository/postgres"
)

// NewDB opens a migrated SQLite database private to t. A single connection
// keeps every statement on the same database handle.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "followups.db") + "?_foreign_keys=on"
	db, err := sqlx.Open("sqlite3", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.Migrate(context.Background(), db))
	return db
}

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{T: t}
}

func (c *Clock) Now() time.Time {
	return c.T
}

func (c *Clock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}

// Sequence returns a token generator yielding the given values in order and
// then distinct fallbacks.
func Sequence(values ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		i++
		if i <= len(values) {
			return values[i-1], nil
		}
		return fmt.Sprintf("tok-%d", i), nil
	}
}
