package web

import (
	"errors"
	"net/http"

	authservice "github.com/avoronkov/webauth/internal/auth/service"
	commonerrors "github.com/avoronkov/webauth/internal/common/errors"
	"github.com/avoronkov/webauth/internal/common/logger"
	"github.com/avoronkov/webauth/internal/observability/metrics"
	sessionservice "github.com/avoronkov/webauth/internal/session/service"
)

const (
	noticeRegistered  = "Registration successful! Please login."
	noticeTaken       = "Username already exists!"
	noticeEmailTaken  = "Email already exists!"
	noticeInvalid     = "Invalid credentials!"
	noticeValidation  = "Username and password are required."
	noticeStoreFailed = "Something went wrong. Please try again."
)

type Handler struct {
	auth      *authservice.AuthService
	sessions  *sessionservice.Manager
	tmpl      *templates
	autoLogin bool
	log       *logger.Logger
}

func NewHandler(
	auth *authservice.AuthService,
	sessions *sessionservice.Manager,
	autoLogin bool,
	log *logger.Logger,
) (*Handler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Handler{
		auth:      auth,
		sessions:  sessions,
		tmpl:      tmpl,
		autoLogin: autoLogin,
		log:       log,
	}, nil
}

func recordDomainError(err error) {
	if de, ok := commonerrors.AsDomainError(err); ok {
		metrics.DomainErrorsTotal.WithLabelValues(string(de.Category()), de.Code()).Inc()
	}
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	if StateFromContext(r.Context()).Authenticated {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, h.log, h.tmpl.register, http.StatusOK, formData{})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderPage(w, h.log, h.tmpl.register, http.StatusBadRequest, formData{Error: noticeValidation})
		return
	}

	input := authservice.RegisterInput{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Email:    r.PostFormValue("email"),
	}

	user, err := h.auth.Register(r.Context(), input)
	if err != nil {
		recordDomainError(err)
		data := formData{Username: input.Username, Email: input.Email}
		switch {
		case errors.Is(err, commonerrors.ErrValidation):
			data.Error = noticeValidation
			renderPage(w, h.log, h.tmpl.register, http.StatusBadRequest, data)
		case errors.Is(err, commonerrors.ErrUsernameTaken):
			data.Error = noticeTaken
			renderPage(w, h.log, h.tmpl.register, http.StatusConflict, data)
		case errors.Is(err, commonerrors.ErrEmailTaken):
			data.Error = noticeEmailTaken
			renderPage(w, h.log, h.tmpl.register, http.StatusConflict, data)
		default:
			data.Error = noticeStoreFailed
			renderPage(w, h.log, h.tmpl.register, http.StatusServiceUnavailable, data)
		}
		return
	}

	if h.autoLogin {
		token, err := h.sessions.Establish(r.Context(), int64(user.ID), user.Username)
		if err != nil {
			// Registration itself succeeded; fall back to the login page.
			h.log.Errorf("auto-login after register failed: %v", err)
			http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
			return
		}
		setSessionCookie(w, r, token)
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	data := formData{}
	if r.URL.Query().Get("registered") == "1" {
		data.Notice = noticeRegistered
	}
	renderPage(w, h.log, h.tmpl.login, http.StatusOK, data)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderPage(w, h.log, h.tmpl.login, http.StatusBadRequest, formData{Error: noticeInvalid})
		return
	}

	input := authservice.LoginInput{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	user, err := h.auth.Login(r.Context(), input)
	if err != nil {
		recordDomainError(err)
		data := formData{Username: input.Username}
		if errors.Is(err, commonerrors.ErrInvalidCredentials) {
			data.Error = noticeInvalid
			renderPage(w, h.log, h.tmpl.login, http.StatusUnauthorized, data)
			return
		}
		data.Error = noticeStoreFailed
		renderPage(w, h.log, h.tmpl.login, http.StatusServiceUnavailable, data)
		return
	}

	token, err := h.sessions.Establish(r.Context(), int64(user.ID), user.Username)
	if err != nil {
		h.log.Errorf("failed to establish session: %v", err)
		renderPage(w, h.log, h.tmpl.login, http.StatusServiceUnavailable, formData{
			Username: input.Username,
			Error:    noticeStoreFailed,
		})
		return
	}

	setSessionCookie(w, r, token)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	state := StateFromContext(r.Context())
	if !state.Authenticated {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	renderPage(w, h.log, h.tmpl.dashboard, http.StatusOK, dashboardData{Username: state.Username})
}

// logout terminates unconditionally: already-anonymous requests get the
// same redirect, and the cookie is cleared even if the store delete fails.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Terminate(r.Context(), cookie.Value); err != nil {
			h.log.Errorf("failed to terminate session: %v", err)
		}
	}

	clearSessionCookie(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
