package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Migrate applies the schema for the connected driver. Statements are
// idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var file string
	switch db.DriverName() {
	case "postgres":
		file = "schema/postgres.sql"
	case "sqlite3":
		file = "schema/sqlite.sql"
	default:
		return fmt.Errorf("no schema for driver %q", db.DriverName())
	}

	ddl, err := schemaFS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(ddl)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
