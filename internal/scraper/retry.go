package scraper

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"net"
	"strings"
	"time"
)

// RetryWithBackoff runs fn up to maxRetries+1 times. The delay before
// attempt n is initialDelay*2^(n-1), spread by up to 25% of jitter so
// that retries from many workers do not land together. A permanentError
// stops the loop at once and the underlying error is returned.
func RetryWithBackoff(ctx context.Context, maxRetries int, initialDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var permErr *permanentError
		if errors.As(err, &permErr) {
			return permErr.Unwrap()
		}
		if attempt == maxRetries {
			break
		}

		if err := Sleep(ctx, backoffDelay(initialDelay, attempt)); err != nil {
			return err
		}
	}

	return lastErr
}

// backoffDelay doubles per attempt and lands in [0.75d, 1.25d] of the
// nominal delay.
func backoffDelay(initialDelay time.Duration, attempt int) time.Duration {
	delay := time.Duration(float64(initialDelay) * math.Pow(2, float64(attempt)))

	half := int64(delay) / 2
	if half < 1 {
		half = 1
	}
	jitter, err := rand.Int(rand.Reader, big.NewInt(half))
	if err != nil {
		jitter = big.NewInt(0)
	}
	return delay - delay/4 + time.Duration(jitter.Int64())
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// permanentError marks an error that a retry cannot fix, such as a 404.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// IsNetworkError reports whether err looks like a transient network
// problem that a retry or failover could fix. Permanent errors never
// qualify.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var permErr *permanentError
	if errors.As(err, &permErr) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := err.Error()
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"server error",
		"rate limited",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
