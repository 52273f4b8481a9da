package db

import (
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent and valid for both dialects. Append new
// migrations at the end.
var migrations = []string{
	// Migration 1: Owner-scoped lookups by bag and by recency.
	`CREATE INDEX IF NOT EXISTS idx_clothes_owner_bag ON clothes(owner_id, container_bag_id)`,
	`CREATE INDEX IF NOT EXISTS idx_clothes_owner_created ON clothes(owner_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bags_owner_created ON bags(owner_id, created_at)`,

	// Migration 2: Move history per cloth.
	`CREATE INDEX IF NOT EXISTS idx_moves_cloth ON moves(owner_id, cloth_id, moved_at)`,
}

// Migrate runs the database schema migrations.
func Migrate(db *DB) error {
	for i, m := range migrations {
		if _, err := db.DB.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
