package db

import (
	"errors"
	"strings"
	"time"

	pgx "github.com/jackc/pgx/v4"

	"github.com/avoronkov/webauth/internal/observability/metrics"
)

func tableForOperation(operation string) string {
	operation = strings.ToLower(operation)
	if strings.Contains(operation, "session") {
		return "sessions"
	}
	if strings.Contains(operation, "user") {
		return "users"
	}
	return "unknown"
}

// HandleQueryError records the query duration, maps no-rows to notFoundErr
// and counts everything else as a store failure.
func HandleQueryError(err error, notFoundErr error, operation string, startTime time.Time) error {
	table := tableForOperation(operation)
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())

	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return notFoundErr
	}
	metrics.DBQueryErrors.WithLabelValues(operation, table).Inc()
	return err
}

// MeasureExec records duration and, when err is non-nil, the error count.
// For callers that do their own error mapping.
func MeasureExec(err error, operation string, startTime time.Time) {
	table := tableForOperation(operation)
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

func HandleExecError(err error, operation string, startTime time.Time) error {
	table := tableForOperation(operation)
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())

	if err == nil {
		return nil
	}
	metrics.DBQueryErrors.WithLabelValues(operation, table).Inc()
	return err
}
