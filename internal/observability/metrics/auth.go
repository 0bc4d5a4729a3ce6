package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webauth_registrations_total",
			Help: "Total number of registration attempts by outcome",
		},
		[]string{"outcome"},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webauth_logins_total",
			Help: "Total number of login attempts by outcome",
		},
		[]string{"outcome"},
	)

	SessionsEstablished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webauth_sessions_established_total",
			Help: "Total number of sessions established",
		},
	)

	SessionsTerminated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webauth_sessions_terminated_total",
			Help: "Total number of sessions terminated by logout",
		},
	)

	SessionsSweptExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "webauth_sessions_swept_expired_total",
			Help: "Total number of idle sessions removed by the sweeper",
		},
	)

	DomainErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webauth_domain_errors_total",
			Help: "Total number of domain errors by category and code",
		},
		[]string{"category", "code"},
	)
)
