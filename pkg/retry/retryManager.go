package retry

import (
	"context"
	"math/rand"
	"time"
)

// maxBackoffShift keeps base * 2^shift at the 16x cap before jitter
const maxBackoffShift = 4

// RetryManager reruns an operation that lost an optimistic race
type RetryManager struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	retryable  func(err error) bool
}

// NewRetryManager creates a new RetryManager. Only errors accepted by retryable are retried.
func NewRetryManager(maxRetries int, baseDelay time.Duration, retryable func(err error) bool) *RetryManager {
	return &RetryManager{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   baseDelay * 16, // Maximum 16x base delay
		retryable:  retryable,
	}
}

// Do runs fn up to maxRetries+1 times. When every attempt failed with a
// retryable error, the last one is returned together with exhausted = true.
func (r *RetryManager) Do(ctx context.Context, fn func(ctx context.Context) error) (exhausted bool, err error) {
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !r.retryable(err) {
			return false, err
		}
		if attempt >= r.maxRetries {
			return true, err
		}

		timer := time.NewTimer(r.calculateBackoff(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
}

// calculateBackoff calculates exponential backoff delay with jitter
func (r *RetryManager) calculateBackoff(attempt int) time.Duration {
	if attempt <= 0 || r.baseDelay <= 0 {
		return r.baseDelay
	}

	// Exponential backoff: base * 2^(attempt-1), the exponent clamped before shifting
	backoff := r.baseDelay * time.Duration(1<<min(attempt-1, maxBackoffShift))

	// Apply jitter (±25%)
	if half := int64(backoff / 2); half > 0 {
		jitter := time.Duration(rand.Int63n(half))
		if rand.Intn(2) == 0 {
			backoff += jitter
		} else {
			backoff -= jitter
		}
	}

	// Cap at maximum delay
	if backoff > r.maxDelay {
		backoff = r.maxDelay
	}

	return backoff
}

// SetMaxRetries sets the maximum number of retries
func (r *RetryManager) SetMaxRetries(maxRetries int) {
	r.maxRetries = maxRetries
}

// SetBaseDelay sets the base delay for retries
func (r *RetryManager) SetBaseDelay(baseDelay time.Duration) {
	r.baseDelay = baseDelay
	r.maxDelay = baseDelay * 16
}
