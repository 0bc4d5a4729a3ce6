package service

import (
	"context"
	"time"

	"github.com/avoronkov/webauth/internal/common/clock"
	"github.com/avoronkov/webauth/internal/common/logger"
	"github.com/avoronkov/webauth/internal/observability/metrics"
	sessionrepo "github.com/avoronkov/webauth/internal/session/repository"
)

// StartSweeper periodically deletes sessions idle past the timeout. Only
// started when an idle timeout is configured; with the default of no
// expiry there is nothing to sweep.
func StartSweeper(
	ctx context.Context,
	repo sessionrepo.Repository,
	clk clock.Clock,
	idleTimeout time.Duration,
	interval time.Duration,
	log *logger.Logger,
) {
	if idleTimeout <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := clk.Now().Add(-idleTimeout)
			deleted, err := repo.DeleteIdleSince(ctx, cutoff)
			if err != nil {
				log.Errorf("session sweep failed: %v", err)
				continue
			}
			if deleted > 0 {
				metrics.SessionsSweptExpired.Add(float64(deleted))
				log.Infof("session sweep: deleted %d idle sessions", deleted)
			}
		}
	}
}
