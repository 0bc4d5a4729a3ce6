package web

import (
	"context"
	"net/http"
	"time"

	"github.com/avoronkov/webauth/internal/common/logger"
	sessionservice "github.com/avoronkov/webauth/internal/session/service"
)

const sessionCookieName = "session_token"

type contextKey string

const sessionStateKey contextKey = "session_state"

// SessionMiddleware resolves the session cookie into a State and injects it
// into the request context, so handlers receive explicit session context
// instead of consulting shared mutable state. A storage failure degrades
// the request to a generic failure page rather than a silent anonymous.
func SessionMiddleware(sessions *sessionservice.Manager, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				token = cookie.Value
			}

			state, err := sessions.Current(r.Context(), token)
			if err != nil {
				log.Errorf("failed to resolve session: %v", err)
				http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
				return
			}

			ctx := context.WithValue(r.Context(), sessionStateKey, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StateFromContext returns the resolved session state. Requests that did
// not pass through SessionMiddleware resolve to Anonymous.
func StateFromContext(ctx context.Context) sessionservice.State {
	state, ok := ctx.Value(sessionStateKey).(sessionservice.State)
	if !ok {
		return sessionservice.Anonymous()
	}
	return state
}

func TimeoutMiddleware(timeout time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}
