package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(db *sql.DB) error {
	return createActivitiesTable(db)
}

func createActivitiesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		location TEXT NOT NULL,
		start_at INTEGER NOT NULL,
		end_at INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_activities_start_at ON activities(start_at);
	CREATE INDEX IF NOT EXISTS idx_activities_end_at ON activities(end_at);
	CREATE INDEX IF NOT EXISTS idx_activities_location ON activities(location);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create activities table: %w", err)
	}

	return nil
}
