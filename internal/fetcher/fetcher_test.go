package fetcher

import (
	"context"
	"testing"
	"time"

	"github.com/banshee-data/trailmatch/internal/timeutil"
)

func TestRateLimiterAllowsFirstCallImmediately(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	rl := NewRateLimiter(clock)

	done := make(chan error, 1)
	go func() { done <- rl.Wait(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected first Wait call to return immediately")
	}
}

func TestRateLimiterRespectsContextCancellation(t *testing.T) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	rl := NewRateLimiter(clock)
	rl.last = clock.Now() // simulate a just-completed dispatch

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Error("expected Wait to report the canceled context")
	}
}

func TestMaxBurstConcurrencyMatchesContract(t *testing.T) {
	if got := MaxBurstConcurrency(); got != 50 {
		t.Errorf("got %d, want 50", got)
	}
}

func TestRetryPolicyHasPositiveInitialBackoff(t *testing.T) {
	ctx := context.Background()
	policy := RetryPolicy(ctx)
	if policy.NextBackOff() <= 0 {
		t.Error("expected a positive initial backoff interval")
	}
}
