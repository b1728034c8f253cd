package r2client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// LockInfo is the JSON body of a lock object.
type LockInfo struct {
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DistributedLock elects one process among replicas using R2 conditional
// writes. The lock is an object whose ETag ties every update to the state
// the writer last saw.
type DistributedLock struct {
	client  *Client
	key     string
	ttl     time.Duration
	ownerID string
	etag    string // ETag of the lock object we wrote last
}

// NewDistributedLock creates a lock handle with a fresh random owner ID.
func NewDistributedLock(client *Client, key string, ttl time.Duration) *DistributedLock {
	return &DistributedLock{
		client:  client,
		key:     key,
		ttl:     ttl,
		ownerID: uuid.New().String(),
	}
}

// Acquire takes the lock if it is free or expired. Reports (false, nil) when
// another live owner holds it.
func (l *DistributedLock) Acquire(ctx context.Context) (bool, error) {
	lockInfo := LockInfo{
		Owner:     l.ownerID,
		ExpiresAt: time.Now().Add(l.ttl),
	}

	data, err := json.Marshal(lockInfo)
	if err != nil {
		return false, fmt.Errorf("acquire lock: marshal: %w", err)
	}

	created, etag, err := l.client.PutObjectIfNotExists(ctx, l.key, bytes.NewReader(data), "application/json")
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}

	if created {
		l.etag = etag
		return true, nil
	}

	expired, info, oldEtag, err := l.checkExpired(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire lock: check expired: %w", err)
	}

	if !expired {
		return false, nil
	}

	stolen, newEtag, err := l.steal(ctx, info, oldEtag)
	if err != nil {
		return false, fmt.Errorf("acquire lock: steal: %w", err)
	}

	if stolen {
		l.etag = newEtag
		return true, nil
	}

	// Another replica stole the expired lock first.
	return false, nil
}

// Renew pushes the expiry forward. Reports (false, nil) when the lock was
// lost, which happens when another replica stole it after our TTL lapsed.
func (l *DistributedLock) Renew(ctx context.Context) (bool, error) {
	if l.etag == "" {
		return false, nil
	}

	info := LockInfo{
		Owner:     l.ownerID,
		ExpiresAt: time.Now().Add(l.ttl),
	}

	data, err := json.Marshal(info)
	if err != nil {
		return false, fmt.Errorf("renew lock: marshal: %w", err)
	}

	updated, newEtag, err := l.client.PutObjectIfMatch(ctx, l.key, bytes.NewReader(data), l.etag, "application/json")
	if err != nil {
		return false, fmt.Errorf("renew lock: %w", err)
	}
	if !updated {
		return false, nil
	}

	l.etag = newEtag
	return true, nil
}

// checkExpired reads the current lock object. A deleted or unparseable lock
// counts as expired.
func (l *DistributedLock) checkExpired(ctx context.Context) (bool, *LockInfo, string, error) {
	body, etag, err := l.client.Download(ctx, l.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return true, nil, "", nil
		}
		return false, nil, "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return false, nil, "", fmt.Errorf("read lock: %w", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return true, nil, etag, nil
	}

	return time.Now().After(info.ExpiresAt), &info, etag, nil
}

// steal overwrites an expired lock conditional on the ETag observed during
// checkExpired, so two stealers cannot both win.
func (l *DistributedLock) steal(ctx context.Context, _ *LockInfo, oldEtag string) (bool, string, error) {
	newInfo := LockInfo{
		Owner:     l.ownerID,
		ExpiresAt: time.Now().Add(l.ttl),
	}

	data, err := json.Marshal(newInfo)
	if err != nil {
		return false, "", fmt.Errorf("marshal: %w", err)
	}

	return l.client.PutObjectIfMatch(ctx, l.key, bytes.NewReader(data), oldEtag, "application/json")
}

// Release deletes the lock object if this handle still owns it. Releasing a
// lock that was lost or already deleted is a no-op.
func (l *DistributedLock) Release(ctx context.Context) error {
	body, _, err := l.client.Download(ctx, l.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("release lock: verify: %w", err)
	}

	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return fmt.Errorf("release lock: read: %w", err)
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return l.client.DeleteObject(ctx, l.key)
	}

	if info.Owner != l.ownerID {
		return nil
	}

	return l.client.DeleteObject(ctx, l.key)
}

// OwnerID returns this handle's random owner identifier.
func (l *DistributedLock) OwnerID() string {
	return l.ownerID
}
