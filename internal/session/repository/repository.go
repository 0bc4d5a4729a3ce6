package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/avoronkov/webauth/internal/common/db"
	commonerrors "github.com/avoronkov/webauth/internal/common/errors"
	"github.com/avoronkov/webauth/internal/session/domain"
)

var ErrSessionNotFound = errors.New("session not found")

type Repository interface {
	Create(ctx context.Context, session domain.Session) error
	FindByID(ctx context.Context, id string) (domain.Session, error)
	DeleteByID(ctx context.Context, id string) error
	TouchLastSeen(ctx context.Context, id string, at time.Time) error
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Create(ctx context.Context, session domain.Session) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO sessions (id, user_id, username, created_at, last_seen_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.ID,
		session.UserID,
		session.Username,
		session.CreatedAt,
		session.LastSeenAt,
	)
	if err := db.HandleExecError(err, "create session", start); err != nil {
		return commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return nil
}

func (r *PgRepository) FindByID(ctx context.Context, id string) (domain.Session, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, user_id, username, created_at, last_seen_at
		 FROM sessions
		 WHERE id = $1`,
		id,
	)

	var session domain.Session
	err := row.Scan(&session.ID, &session.UserID, &session.Username, &session.CreatedAt, &session.LastSeenAt)
	if err := db.HandleQueryError(err, ErrSessionNotFound, "find session", start); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return domain.Session{}, err
		}
		return domain.Session{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return session, nil
}

// DeleteByID succeeds whether or not the row exists, keeping logout
// idempotent.
func (r *PgRepository) DeleteByID(ctx context.Context, id string) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`DELETE FROM sessions WHERE id = $1`,
		id,
	)
	if err := db.HandleExecError(err, "delete session", start); err != nil {
		return commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return nil
}

func (r *PgRepository) TouchLastSeen(ctx context.Context, id string, at time.Time) error {
	start := time.Now()
	_, err := r.pool.Exec(
		ctx,
		`UPDATE sessions SET last_seen_at = $2 WHERE id = $1`,
		id,
		at,
	)
	if err := db.HandleExecError(err, "touch session", start); err != nil {
		return commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return nil
}

func (r *PgRepository) DeleteIdleSince(ctx context.Context, cutoff time.Time) (int64, error) {
	start := time.Now()
	res, err := r.pool.Exec(
		ctx,
		`DELETE FROM sessions WHERE last_seen_at < $1`,
		cutoff,
	)
	if err := db.HandleExecError(err, "delete idle sessions", start); err != nil {
		return 0, commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return res.RowsAffected(), nil
}
