package database

import (
	"database/sql"
	"fmt"
	"os"
)

func Migrate(db *sql.DB) error {
	b, err := os.ReadFile("docs/schema.sql")
	if err != nil {
		return fmt.Errorf("read docs/schema.sql: %w", err)
	}

	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// MigrateFrom applies a schema file from an explicit path, for callers that
// do not run from the repository root.
func MigrateFrom(db *sql.DB, schemaPath string) error {
	b, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", schemaPath, err)
	}

	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
