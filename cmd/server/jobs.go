// Package main provides the chatbot server entry point.
package main

import (
	"context"
	"time"

	"github.com/freshLiver/SuperStudent/internal/config"
	"github.com/freshLiver/SuperStudent/internal/logger"
	"github.com/freshLiver/SuperStudent/internal/metrics"
	"github.com/freshLiver/SuperStudent/internal/snapshot"
	"github.com/freshLiver/SuperStudent/internal/storage"
)

// runSnapshotUploads periodically uploads a compressed copy of the activity
// database to R2. Only the instance holding the distributed leader lock
// uploads; the others retry acquisition each cycle so a new leader takes
// over when the old one dies.
func runSnapshotUploads(ctx context.Context, mgr *snapshot.Manager, db *storage.DB, interval time.Duration, m *metrics.Metrics, log *logger.Logger) {
	// Let the server settle before the first upload attempt
	select {
	case <-ctx.Done():
		return
	case <-time.After(config.SnapshotInitialDelay):
	}

	uploadOnce(ctx, mgr, db, m, log)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			uploadOnce(ctx, mgr, db, m, log)
		}
	}
}

// uploadOnce acquires (or confirms) leadership and uploads a snapshot.
func uploadOnce(ctx context.Context, mgr *snapshot.Manager, db *storage.DB, m *metrics.Metrics, log *logger.Logger) {
	if !mgr.IsLeader() {
		acquired, err := mgr.AcquireLeaderLock(ctx)
		if err != nil {
			log.WithError(err).Warn("Leader lock acquisition failed")
			m.RecordSnapshotTask("acquire_lock", "error")
			return
		}
		if !acquired {
			// Another instance is uploading; nothing to do this cycle
			log.Debug("Not the snapshot leader, skipping upload")
			return
		}
		log.Info("Acquired snapshot leader lock")
	}

	start := time.Now()
	etag, err := mgr.UploadSnapshot(ctx, db)
	if err != nil {
		log.WithError(err).Error("Snapshot upload failed")
		m.RecordSnapshotTask("upload", "error")
		return
	}
	m.RecordSnapshotTask("upload", "success")

	count, _ := db.CountActivities(ctx)
	log.WithFields(map[string]any{
		"etag":        etag,
		"activities":  count,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Snapshot uploaded")
}

// finalizeSnapshot uploads a last snapshot during shutdown and releases the
// leader lock so the next leader does not wait out the lock TTL.
func finalizeSnapshot(ctx context.Context, mgr *snapshot.Manager, db *storage.DB, m *metrics.Metrics, log *logger.Logger) {
	if mgr.IsLeader() {
		if _, err := mgr.UploadSnapshot(ctx, db); err != nil {
			log.WithError(err).Error("Final snapshot upload failed")
			m.RecordSnapshotTask("upload", "error")
		} else {
			m.RecordSnapshotTask("upload", "success")
			log.Info("Final snapshot uploaded")
		}
	}

	if err := mgr.ReleaseLeaderLock(ctx); err != nil {
		log.WithError(err).Warn("Failed to release leader lock")
	}
}
