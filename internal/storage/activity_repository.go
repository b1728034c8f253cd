package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/freshLiver/SuperStudent/internal/stringutil"
)

// SaveActivity inserts a new activity and returns it with the assigned ID.
func (db *DB) SaveActivity(ctx context.Context, activity *Activity) error {
	query := `
		INSERT INTO activities (content, location, start_at, end_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, query,
		activity.Content, activity.Location, activity.StartAt, activity.EndAt, time.Now().Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to save activity",
			"location", activity.Location,
			"error", err)
		return fmt.Errorf("failed to save activity: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		activity.ID = id
	}

	// Warn on slow queries (>100ms)
	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "SaveActivity",
			"duration_ms", duration.Milliseconds())
	}
	return nil
}

// SearchActivities returns activities whose time range overlaps [from, to]
// and whose content matches every keyword, newest start first. Keyword
// matching uses rune-set containment so "便當 火車站" still matches "台南火車站
// 發放免費便當".
func (db *DB) SearchActivities(ctx context.Context, keywords []string, from, to time.Time) ([]Activity, error) {
	query := `
		SELECT id, content, location, start_at, end_at, created_at
		FROM activities
		WHERE start_at <= ? AND end_at >= ?
		ORDER BY start_at DESC
	`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, to.Unix(), from.Unix())
	if err != nil {
		slog.ErrorContext(ctx, "failed to query activities", "error", err)
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matched []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Content, &a.Location, &a.StartAt, &a.EndAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}

		if matchesKeywords(a.Content+a.Location, keywords) {
			matched = append(matched, a)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "SearchActivities",
			"duration_ms", duration.Milliseconds())
	}

	return matched, nil
}

// GetActivityByID retrieves one activity. Returns nil when absent.
func (db *DB) GetActivityByID(ctx context.Context, id int64) (*Activity, error) {
	query := `SELECT id, content, location, start_at, end_at, created_at FROM activities WHERE id = ?`

	var a Activity
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Content, &a.Location, &a.StartAt, &a.EndAt, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to query activity",
			"activity_id", id,
			"error", err)
		return nil, fmt.Errorf("query activity: %w", err)
	}

	return &a, nil
}

// CountActivities returns the total number of stored activities.
func (db *DB) CountActivities(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return count, nil
}

func matchesKeywords(content string, keywords []string) bool {
	for _, kw := range keywords {
		if !stringutil.ContainsAllRunes(content, kw) {
			return false
		}
	}
	return true
}
