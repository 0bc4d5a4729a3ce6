package service

import (
	"context"
	"errors"
	"time"

	"github.com/avoronkov/webauth/internal/common/clock"
	commoncrypto "github.com/avoronkov/webauth/internal/common/crypto"
	"github.com/avoronkov/webauth/internal/common/logger"
	"github.com/avoronkov/webauth/internal/observability/metrics"
	"github.com/avoronkov/webauth/internal/session/domain"
	sessionrepo "github.com/avoronkov/webauth/internal/session/repository"
)

// State is what a token resolves to: Anonymous, or Authenticated with the
// identity the session was bound to at login.
type State struct {
	Authenticated bool
	UserID        int64
	Username      string
}

func Anonymous() State {
	return State{}
}

type Manager struct {
	repo        sessionrepo.Repository
	idGenerator commoncrypto.IDGenerator
	secret      []byte
	clock       clock.Clock
	idleTimeout time.Duration
	log         *logger.Logger
}

type ManagerConfig struct {
	SecretKey string
	// IdleTimeout of zero means sessions never expire on their own, only
	// explicit termination ends them.
	IdleTimeout time.Duration
}

func NewManager(
	repo sessionrepo.Repository,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	cfg ManagerConfig,
	log *logger.Logger,
) *Manager {
	return &Manager{
		repo:        repo,
		idGenerator: idGenerator,
		secret:      []byte(cfg.SecretKey),
		clock:       clk,
		idleTimeout: cfg.IdleTimeout,
		log:         log,
	}
}

// Establish creates a session row bound to the given identity and returns
// the signed token for the client cookie.
func (m *Manager) Establish(ctx context.Context, userID int64, username string) (string, error) {
	id, err := m.idGenerator.NewID()
	if err != nil {
		return "", err
	}

	now := m.clock.Now()
	session := domain.Session{
		ID:         id,
		UserID:     userID,
		Username:   username,
		CreatedAt:  now,
		LastSeenAt: now,
	}

	if err := m.repo.Create(ctx, session); err != nil {
		return "", err
	}

	token, err := signToken(m.secret, id, userID, username, now)
	if err != nil {
		return "", err
	}

	metrics.SessionsEstablished.Inc()
	m.log.WithFields(ctx, logger.Fields{
		"user_id":  userID,
		"username": username,
		"action":   "session_established",
	}).Info("session established")

	return token, nil
}

// Current resolves a token to its session state. A missing, forged or
// terminated token is Anonymous, not an error; only a storage failure is.
func (m *Manager) Current(ctx context.Context, token string) (State, error) {
	if token == "" {
		return Anonymous(), nil
	}

	sid, err := parseToken(token, m.secret)
	if err != nil {
		m.log.WithFields(ctx, logger.Fields{
			"action": "session_token_rejected",
		}).Warnf("session token rejected: %v", err)
		return Anonymous(), nil
	}

	session, err := m.repo.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, sessionrepo.ErrSessionNotFound) {
			return Anonymous(), nil
		}
		return Anonymous(), err
	}

	if m.idleTimeout > 0 && m.clock.Since(session.LastSeenAt) > m.idleTimeout {
		if err := m.repo.DeleteByID(ctx, sid); err != nil {
			m.log.WithFields(ctx, logger.Fields{
				"user_id": session.UserID,
				"action":  "session_expire_delete_failed",
			}).Errorf("failed to delete idle session: %v", err)
		}
		metrics.SessionsSweptExpired.Inc()
		return Anonymous(), nil
	}

	if m.idleTimeout > 0 {
		if err := m.repo.TouchLastSeen(ctx, sid, m.clock.Now()); err != nil {
			m.log.WithFields(ctx, logger.Fields{
				"user_id": session.UserID,
				"action":  "session_touch_failed",
			}).Warnf("failed to update session last_seen: %v", err)
		}
	}

	return State{
		Authenticated: true,
		UserID:        session.UserID,
		Username:      session.Username,
	}, nil
}

// Terminate invalidates the token's session. Unknown, forged and already
// terminated tokens all succeed, so logout is idempotent.
func (m *Manager) Terminate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	sid, err := parseToken(token, m.secret)
	if err != nil {
		return nil
	}

	if err := m.repo.DeleteByID(ctx, sid); err != nil {
		return err
	}

	metrics.SessionsTerminated.Inc()
	m.log.WithFields(ctx, logger.Fields{
		"action": "session_terminated",
	}).Info("session terminated")

	return nil
}

// IdleTimeout exposes the configured timeout so the sweeper and startup
// wiring can decide whether expiry is active.
func (m *Manager) IdleTimeout() time.Duration {
	return m.idleTimeout
}
