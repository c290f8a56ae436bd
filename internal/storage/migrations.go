package storage

import "fmt"

// migrate creates the trip plan schema if it doesn't exist.
func (db *DB) migrate() error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	db.logger.Info("database migrations applied")
	return nil
}

var migrations = []string{
	// One row per planning request; result_json is the plan payload as returned
	`CREATE TABLE IF NOT EXISTS trip_plans (
		id          TEXT PRIMARY KEY,
		origin      TEXT NOT NULL,
		destination TEXT NOT NULL,
		mode        TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_trip_plans_created ON trip_plans(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_trip_plans_mode ON trip_plans(mode)`,
}
