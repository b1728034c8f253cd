package storage

import "errors"

// Common errors
var (
	// ErrNotFound is returned when a resource is not found in the database
	ErrNotFound = errors.New("resource not found")
)

// Activity represents an announced activity: free-form content text, the
// place it happens, and the instant range it covers. Instants are stored as
// Unix seconds; callers convert to their display timezone.
type Activity struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	Location  string `json:"location"`
	StartAt   int64  `json:"start_at"`
	EndAt     int64  `json:"end_at"`
	CreatedAt int64  `json:"created_at"`
}
