package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	commonhttp "github.com/avoronkov/webauth/internal/common/http"
	"github.com/avoronkov/webauth/internal/common/logger"
	"github.com/avoronkov/webauth/internal/observability/metrics"
	sessionservice "github.com/avoronkov/webauth/internal/session/service"
)

// NewRouter assembles the full HTTP surface. Session resolution only wraps
// the routes that read identity; forms and health stay outside it so a
// storage outage never blocks the login page itself.
func NewRouter(
	h *Handler,
	sessions *sessionservice.Manager,
	requestTimeout time.Duration,
	log *logger.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(commonhttp.SecurityHeadersMiddleware)
	r.Use(commonhttp.RecoveryMiddleware(log))
	r.Use(commonhttp.TraceIDMiddleware)
	r.Use(metrics.Middleware)
	r.Use(TimeoutMiddleware(requestTimeout))

	r.Get("/health", commonhttp.HealthHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/register", h.registerForm)
	r.Post("/register", h.register)
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(sessions, log))
		r.Get("/", h.home)
		r.Get("/dashboard", h.dashboard)
	})

	return r
}
