package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/avoronkov/webauth/internal/common/logger"
	"github.com/avoronkov/webauth/internal/observability/metrics"
)

const (
	poolMaxConns        = 25
	poolMinConns        = 5
	poolMaxConnLifetime = time.Hour
	poolMaxConnIdleTime = 30 * time.Minute
	poolHealthCheck     = time.Minute
	poolConnectTimeout  = 5 * time.Second

	connectMaxAttempts = 10
	connectRetryDelay  = time.Second

	poolMetricsInterval = 30 * time.Second
)

// NewPool connects to Postgres with bounded retries. Startup is the only
// place a storage failure is fatal.
func NewPool(ctx context.Context, log *logger.Logger, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	cfg.MaxConns = poolMaxConns
	cfg.MinConns = poolMinConns
	cfg.MaxConnLifetime = poolMaxConnLifetime
	cfg.MaxConnIdleTime = poolMaxConnIdleTime
	cfg.HealthCheckPeriod = poolHealthCheck
	cfg.ConnConfig.ConnectTimeout = poolConnectTimeout
	cfg.ConnConfig.RuntimeParams = map[string]string{
		"application_name": "webauth",
	}

	var lastErr error
	for attempt := 1; attempt <= connectMaxAttempts; attempt++ {
		pool, err := pgxpool.ConnectConfig(ctx, cfg)
		if err == nil {
			log.Infof("database connection pool initialized: max=%d, min=%d", cfg.MaxConns, cfg.MinConns)
			StartPoolMetrics(ctx, pool, poolMetricsInterval)
			return pool, nil
		}

		lastErr = err
		log.Warnf("failed to connect to database (attempt %d/%d): %v", attempt, connectMaxAttempts, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectRetryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectMaxAttempts, lastErr)
}

// poolStats is the slice of pgxpool.Pool the metrics loop reads.
type poolStats interface {
	Stat() *pgxpool.Stat
}

// StartPoolMetrics samples pool gauges until ctx is cancelled.
func StartPoolMetrics(ctx context.Context, pool poolStats, interval time.Duration) {
	if interval <= 0 {
		interval = poolMetricsInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := pool.Stat()
				if stats == nil {
					continue
				}
				metrics.DBPoolAcquiredConnections.Set(float64(stats.AcquiredConns()))
				metrics.DBPoolIdleConnections.Set(float64(stats.IdleConns()))
				metrics.DBPoolTotalConnections.Set(float64(stats.TotalConns()))
			}
		}
	}()
}
