// Package ratelimit throttles outbound LLM calls. A token bucket enforces a
// per-model QPM budget and transient upstream failures are retried with
// exponential backoff.
package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Bucket is a token bucket sized in queries per minute.
type Bucket struct {
	mu        sync.Mutex
	perSecond float64
	burst     float64
	available float64
	refilled  time.Time
}

// NewBucket creates a bucket allowing qpm queries per minute with the given
// burst headroom. A non-positive burst defaults to half the QPM.
func NewBucket(qpm, burst int) *Bucket {
	if burst <= 0 {
		burst = qpm / 2
		if burst <= 0 {
			burst = 1
		}
	}

	return &Bucket{
		perSecond: float64(qpm) / 60.0,
		burst:     float64(burst),
		available: float64(burst),
		refilled:  time.Now(),
	}
}

// topUp credits tokens for the time elapsed since the last refill. The
// caller must hold mu.
func (b *Bucket) topUp() {
	now := time.Now()
	b.available += now.Sub(b.refilled).Seconds() * b.perSecond
	if b.available > b.burst {
		b.available = b.burst
	}
	b.refilled = now
}

// TryTake consumes one token if available without blocking.
func (b *Bucket) TryTake() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.topUp()
	if b.available >= 1 {
		b.available--
		return true
	}
	return false
}

// Take blocks until a token is available or ctx is done.
func (b *Bucket) Take(ctx context.Context) error {
	for {
		b.mu.Lock()
		b.topUp()
		if b.available >= 1 {
			b.available--
			b.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - b.available) / b.perSecond * float64(time.Second))
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// transientErrorMarkers identify upstream failures worth retrying.
var transientErrorMarkers = []string{
	"timeout",
	"deadline exceeded",
	"connection reset",
	"EOF",
	"connection refused",
	"429 Too Many Requests",
	"rate limit",
	"no such host",
	"server is busy",
	"quota exceeded",
}

func retryable(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	for _, marker := range transientErrorMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}
