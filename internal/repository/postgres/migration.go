package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
)

// schemaPaths are tried in order so migrations work from the module root,
// from cmd/blockfall and from package directories under go test.
var schemaPaths = []string{
	"script/migration/schema.sql",
	"../script/migration/schema.sql",
	"../../script/migration/schema.sql",
	"../../../script/migration/schema.sql",
	"backend/script/migration/schema.sql",
}

func findSchema(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	wd, _ := os.Getwd()
	return "", fmt.Errorf("migration file not found (looked for %q from %s)", paths[0], wd)
}

// RunMigrations executes schema.sql. The schema is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	path, err := findSchema(schemaPaths)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute schema.sql: %w", err)
	}
	return nil
}
