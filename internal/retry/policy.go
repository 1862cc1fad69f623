// Package retry implements the three exponential-backoff-with-jitter retry
// classes shared by the storage client, job ledger, and queue listener.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/ternarybob/arbor"
)

// Policy defines retry behavior with exponential backoff and jitter.
type Policy struct {
	Name              string
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// ConnectPolicy is retry class (a): initial connection establishment.
// 0.2s initial backoff, doubling, 10 attempts.
func ConnectPolicy() *Policy {
	return &Policy{
		Name:              "connect",
		MaxAttempts:       10,
		InitialBackoff:    200 * time.Millisecond,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// QueryPolicy is retry class (b): ledger queries and S3 operations.
// 0.5s initial backoff, doubling, 3 attempts.
func QueryPolicy() *Policy {
	return &Policy{
		Name:              "query",
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// QueueReconnectPolicy is retry class (c): the LISTEN connection dropping.
// 0.5s initial backoff, doubling, 5 attempts.
func QueueReconnectPolicy() *Policy {
	return &Policy{
		Name:              "queue-reconnect",
		MaxAttempts:       5,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        15 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// CalculateBackoff returns the backoff duration for the given zero-based
// attempt number, with up to ±25% jitter.
func (p *Policy) CalculateBackoff(attempt int) time.Duration {
	backoff := float64(p.InitialBackoff) * math.Pow(p.BackoffMultiplier, float64(attempt))
	if backoff > float64(p.MaxBackoff) {
		backoff = float64(p.MaxBackoff)
	}

	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoff += jitter
	if backoff < 0 {
		backoff = float64(p.InitialBackoff)
	}

	return time.Duration(backoff)
}

// Execute runs fn, retrying on error up to MaxAttempts times with backoff
// between attempts. It returns the last error if every attempt fails, or
// nil on the first success. ctx cancellation aborts the wait between
// attempts immediately.
func (p *Policy) Execute(ctx context.Context, logger arbor.ILogger, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt == p.MaxAttempts-1 {
			break
		}

		backoff := p.CalculateBackoff(attempt)
		if logger != nil {
			logger.Debug().
				Str("policy", p.Name).
				Int("attempt", attempt+1).
				Err(lastErr).
				Dur("backoff", backoff).
				Msg("retrying after backoff")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	if logger != nil {
		logger.Warn().
			Str("policy", p.Name).
			Int("max_attempts", p.MaxAttempts).
			Err(lastErr).
			Msg("all retry attempts exhausted")
	}

	return lastErr
}
