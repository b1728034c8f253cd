// Package snapshot persists the activity database to R2 object storage.
// One instance at a time holds a distributed leader lock and uploads
// compressed snapshots; on boot an instance without a local database
// restores from the latest snapshot.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/freshLiver/SuperStudent/internal/logger"
	"github.com/freshLiver/SuperStudent/internal/r2client"
	"github.com/freshLiver/SuperStudent/internal/storage"
)

// ErrNotFound indicates no snapshot exists in R2.
var ErrNotFound = errors.New("snapshot: not found")

// Config holds snapshot manager configuration.
type Config struct {
	SnapshotKey string        // object key for the snapshot, e.g. "activities/snapshot.db.zst"
	LockKey     string        // object key for the leader lock
	LockTTL     time.Duration // leader lock TTL
	TempDir     string        // scratch space for staging files
}

// Manager synchronizes the SQLite database with R2.
type Manager struct {
	client      *r2client.Client
	config      Config
	logger      *logger.Logger
	currentETag string
	mu          sync.RWMutex
	leaderMu    sync.Mutex
	leaderLock  *r2client.DistributedLock
	renewCancel context.CancelFunc
	renewDone   chan struct{}
}

// New creates a snapshot manager.
func New(client *r2client.Client, cfg Config, log *logger.Logger) *Manager {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &Manager{
		client: client,
		config: cfg,
		logger: log.WithModule("snapshot"),
	}
}

// DownloadSnapshot fetches the latest snapshot and decompresses it into
// destPath. The transfer is staged through TempDir so a failure partway
// never clobbers an existing database. Returns the snapshot's ETag, or
// ErrNotFound when no snapshot has been uploaded yet.
func (m *Manager) DownloadSnapshot(ctx context.Context, destPath string) (string, error) {
	body, etag, err := m.client.Download(ctx, m.config.SnapshotKey)
	if err != nil {
		if errors.Is(err, r2client.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("download snapshot: %w", err)
	}
	defer body.Close()

	stagePath := filepath.Join(m.config.TempDir, "snapshot_download.db.zst")
	if err := writeToFile(stagePath, body); err != nil {
		return "", err
	}
	defer os.Remove(stagePath)

	stage, err := os.Open(stagePath)
	if err != nil {
		return "", fmt.Errorf("open staged snapshot: %w", err)
	}
	defer stage.Close()

	if err := r2client.DecompressStream(stage, destPath); err != nil {
		return "", fmt.Errorf("decompress snapshot: %w", err)
	}

	m.setETag(etag)
	return etag, nil
}

// UploadSnapshot takes a consistent copy of db, compresses it, and uploads
// it as the new snapshot. Returns the uploaded object's ETag.
func (m *Manager) UploadSnapshot(ctx context.Context, db *storage.DB) (string, error) {
	snapshotPath := filepath.Join(m.config.TempDir, fmt.Sprintf("snapshot_%d.db", time.Now().UnixNano()))
	if err := db.CreateSnapshot(ctx, snapshotPath); err != nil {
		return "", fmt.Errorf("create snapshot: %w", err)
	}
	defer os.Remove(snapshotPath)

	compressedPath := snapshotPath + ".zst"
	if err := r2client.CompressFile(snapshotPath, compressedPath); err != nil {
		return "", fmt.Errorf("compress database: %w", err)
	}
	defer os.Remove(compressedPath)

	compressed, err := os.Open(compressedPath)
	if err != nil {
		return "", fmt.Errorf("open compressed snapshot: %w", err)
	}
	defer compressed.Close()

	etag, err := m.client.Upload(ctx, m.config.SnapshotKey, compressed, "application/zstd")
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	m.setETag(etag)
	return etag, nil
}

// AcquireLeaderLock tries to take the leader lock and, on success, starts
// a background renew loop. Returns true when this instance is now the
// leader.
func (m *Manager) AcquireLeaderLock(ctx context.Context) (bool, error) {
	lock := r2client.NewDistributedLock(m.client, m.config.LockKey, m.config.LockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil || !acquired {
		return acquired, err
	}

	m.leaderMu.Lock()
	if m.renewCancel != nil {
		m.renewCancel()
		if m.renewDone != nil {
			<-m.renewDone
		}
	}
	m.leaderLock = lock
	ctx, cancel := context.WithCancel(ctx)
	m.renewCancel = cancel
	m.renewDone = make(chan struct{})
	go m.renewLoop(ctx, lock, m.renewDone)
	m.leaderMu.Unlock()

	return true, nil
}

// IsLeader reports whether this instance currently holds the leader lock.
func (m *Manager) IsLeader() bool {
	m.leaderMu.Lock()
	defer m.leaderMu.Unlock()
	return m.leaderLock != nil
}

// ReleaseLeaderLock stops the renew loop and releases the lock.
func (m *Manager) ReleaseLeaderLock(ctx context.Context) error {
	m.leaderMu.Lock()
	lock := m.leaderLock
	cancel := m.renewCancel
	done := m.renewDone
	m.leaderLock = nil
	m.renewCancel = nil
	m.renewDone = nil
	m.leaderMu.Unlock()

	if cancel != nil {
		cancel()
		if done != nil {
			<-done
		}
	}

	if lock == nil {
		return nil
	}
	return lock.Release(ctx)
}

// renewLoop extends the lock at a third of its TTL. Losing the lock or a
// renew error demotes this instance; uploads stop until the lock is
// reacquired.
func (m *Manager) renewLoop(ctx context.Context, lock *r2client.DistributedLock, done chan struct{}) {
	defer close(done)

	interval := m.config.LockTTL / 3
	if interval < 10*time.Second {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			renewed, err := lock.Renew(ctx)
			if err != nil {
				m.logger.WithError(err).Warn("Leader lock renew failed")
				return
			}
			if !renewed {
				m.logger.Warn("Leader lock lost during renew")
				m.leaderMu.Lock()
				if m.leaderLock == lock {
					m.leaderLock = nil
				}
				m.leaderMu.Unlock()
				return
			}
		}
	}
}

// CurrentETag returns the ETag of the last snapshot seen by this instance.
func (m *Manager) CurrentETag() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentETag
}

func (m *Manager) setETag(etag string) {
	m.mu.Lock()
	m.currentETag = etag
	m.mu.Unlock()
}

func writeToFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create staged snapshot: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write staged snapshot: %w", err)
	}
	return f.Close()
}
