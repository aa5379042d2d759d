// Package fetcher declares the external activity-fetching contract. It is
// the one I/O boundary the core depends on (spec.md section 6, "External
// fetcher contract") — a pure interface plus retry/rate-limit scaffolding;
// no transport is implemented here. The core never imports this package
// for anything beyond the types it exposes to a caller-supplied fetcher.
package fetcher

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/timeutil"
)

// dispatchSpacing is the minimum gap between outbound requests (spec.md
// section 6: "one request every ~80 ms").
const dispatchSpacing = 80 * time.Millisecond

// maxBurstConcurrency bounds how many fetches may be in flight at once.
const maxBurstConcurrency = 50

// Track is one successfully fetched activity: its bounds and raw
// lat/lng sequence.
type Track struct {
	ActivityID string
	Bounds     geo.Bounds
	Points     []geo.Point
}

// Result is one entry of the fetcher's output stream: exactly one of
// Track or Err is set.
type Result struct {
	ActivityID string
	Track      Track
	Err        error
}

// Fetcher accepts a credential and a list of activity ids and streams back
// a Result per id, order immaterial. Implementations own their own
// transport; the core only consumes Results.
type Fetcher interface {
	Fetch(ctx context.Context, credential string, activityIDs []string) (<-chan Result, error)
}

// RetryPolicy builds the exponential-backoff policy transient fetch
// failures (429s) should retry against.
func RetryPolicy(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 2 * time.Minute
	return backoff.WithContext(b, ctx)
}

// RateLimiter paces outbound requests to dispatchSpacing using clock for
// its sleeps, so tests can substitute a timeutil.MockClock instead of
// waiting on a real timer.
type RateLimiter struct {
	clock   timeutil.Clock
	last    time.Time
	spacing time.Duration
}

// NewRateLimiter builds a RateLimiter paced at dispatchSpacing, bounded by
// maxBurstConcurrency concurrent callers (enforced by the caller via a
// semaphore of that size; this type only paces dispatch timing).
func NewRateLimiter(clock timeutil.Clock) *RateLimiter {
	return &RateLimiter{clock: clock, spacing: dispatchSpacing}
}

// Wait blocks until at least spacing has elapsed since the previous call
// returned, or ctx is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	now := r.clock.Now()
	if !r.last.IsZero() {
		elapsed := now.Sub(r.last)
		if elapsed < r.spacing {
			timer := r.clock.NewTimer(r.spacing - elapsed)
			select {
			case <-timer.C():
				timer.Stop()
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
	r.last = r.clock.Now()
	return nil
}

// MaxBurstConcurrency exposes the section 6 burst-concurrency bound for
// callers building their own semaphore.
func MaxBurstConcurrency() int {
	return maxBurstConcurrency
}
