// Package storage provides the SQLite-backed activity store and the
// repository interfaces that decouple the bot pipeline from it.
package storage

import (
	"context"
	"time"
)

// ActivityRepository defines the interface for activity data operations.
type ActivityRepository interface {
	SaveActivity(ctx context.Context, activity *Activity) error
	SearchActivities(ctx context.Context, keywords []string, from, to time.Time) ([]Activity, error)
	GetActivityByID(ctx context.Context, id int64) (*Activity, error)
	CountActivities(ctx context.Context) (int, error)
}

// HealthRepository defines the interface for health check operations.
type HealthRepository interface {
	// Ping verifies database connection is alive.
	Ping(ctx context.Context) error

	// Ready checks if database is ready to serve queries.
	// Performs more thorough checks than Ping.
	Ready(ctx context.Context) error
}

// Repository is the aggregate interface that combines all repository
// interfaces. The DB type implements it, providing a single entry point for
// all data operations.
type Repository interface {
	ActivityRepository
	HealthRepository
	Close() error
}

// Ensure DB implements all repository interfaces at compile time.
var (
	_ ActivityRepository = (*DB)(nil)
	_ HealthRepository   = (*DB)(nil)
	_ Repository         = (*DB)(nil)
)
