package scraper

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := RetryWithBackoff(context.Background(), 5, 5*time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("RetryWithBackoff: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("server error: 503")
	attempts := 0
	err := RetryWithBackoff(context.Background(), 3, 5*time.Millisecond, func() error {
		attempts++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want last fetch error", err)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want initial try plus 3 retries", attempts)
	}
}

func TestRetryWithBackoff_PermanentErrorStopsEarly(t *testing.T) {
	t.Parallel()

	inner := errors.New("status 404")
	attempts := 0
	err := RetryWithBackoff(context.Background(), 5, 5*time.Millisecond, func() error {
		attempts++
		return &permanentError{err: inner}
	})

	if !errors.Is(err, inner) {
		t.Errorf("err = %v, want unwrapped %v", err, inner)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want no retries of a permanent error", attempts)
	}
}

func TestRetryWithBackoff_CancelDuringWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryWithBackoff(ctx, 5, 10*time.Millisecond, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("no such host")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackoffDelay_GrowsPerAttempt(t *testing.T) {
	t.Parallel()

	base := 40 * time.Millisecond
	for attempt := 0; attempt < 4; attempt++ {
		nominal := base << attempt
		got := backoffDelay(base, attempt)
		if got < nominal-nominal/4 || got > nominal+nominal/4 {
			t.Errorf("attempt %d: delay %v outside [%v, %v]", attempt, got, nominal-nominal/4, nominal+nominal/4)
		}
	}
}

func TestSleep(t *testing.T) {
	t.Parallel()

	start := time.Now()
	if err := Sleep(context.Background(), 30*time.Millisecond); err != nil {
		t.Fatalf("Sleep: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("returned after %v, want at least 30ms", elapsed)
	}
}

func TestSleep_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("waited %v on a cancelled context", elapsed)
	}
}

func TestIsNetworkError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", &netTimeoutError{}, true},
		{"refused", errors.New("dial tcp: connection refused"), true},
		{"dns", errors.New("lookup udn.com: no such host"), true},
		{"rate limited", errors.New("rate limited: 429"), true},
		{"permanent", &permanentError{err: errors.New("status 404")}, false},
		{"unrelated", errors.New("invalid selector"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNetworkError(tt.err); got != tt.want {
				t.Errorf("IsNetworkError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// netTimeoutError satisfies net.Error with Timeout() reporting true.
type netTimeoutError struct{}

func (*netTimeoutError) Error() string   { return "i/o timeout" }
func (*netTimeoutError) Timeout() bool   { return true }
func (*netTimeoutError) Temporary() bool { return false }
