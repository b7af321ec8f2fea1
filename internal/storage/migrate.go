package storage

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schema string

// ApplySchema creates the tables and indexes if they do not exist. All
// statements are idempotent, so running it repeatedly is safe.
func ApplySchema(ctx context.Context, db *DB) error {
	if _, err := db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
