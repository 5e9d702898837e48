package ingest

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"google.golang.org/api/googleapi"
)

// RetryPolicy retries transient failures with exponential backoff and
// jitter. Permanent failures (malformed requests, dimension mismatches)
// return immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Do runs fn up to MaxAttempts times, sleeping Backoff between transient
// failures. The last error is returned when attempts run out.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == attempts {
			return err
		}
		select {
		case <-time.After(Backoff(p.BaseDelay, attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// IsTransient reports whether an embedding-service error is worth retrying.
// Rate limits and 5xx responses are; other HTTP statuses mean the request
// itself is bad. Unknown errors default to transient so flaky networks get
// their retries.
func IsTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	var perm *PermanentError
	if errors.As(err, &perm) {
		return false
	}
	return true
}

// PermanentError marks a failure that retrying cannot fix.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Backoff returns exponential backoff with jitter: 2^attempt * base,
// capped at 30s, with ±25% random jitter.
func Backoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
