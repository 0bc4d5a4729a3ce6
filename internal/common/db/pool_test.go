package db

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
)

type fakePoolStats struct {
	calls int32
}

func (f *fakePoolStats) Stat() *pgxpool.Stat {
	atomic.AddInt32(&f.calls, 1)
	return nil
}

func TestStartPoolMetricsStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakePoolStats{}

	StartPoolMetrics(ctx, fake, time.Millisecond)

	deadline := time.After(time.Second)
	for atomic.LoadInt32(&fake.calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("metrics loop never sampled the pool")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	// Allow an in-flight tick to drain, then the loop must be quiet.
	time.Sleep(20 * time.Millisecond)
	before := atomic.LoadInt32(&fake.calls)
	time.Sleep(50 * time.Millisecond)
	if after := atomic.LoadInt32(&fake.calls); after != before {
		t.Errorf("metrics loop kept sampling after cancel: %d then %d", before, after)
	}
}
