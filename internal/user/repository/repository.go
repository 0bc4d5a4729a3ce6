package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/avoronkov/webauth/internal/common/db"
	commonerrors "github.com/avoronkov/webauth/internal/common/errors"
	"github.com/avoronkov/webauth/internal/user/domain"
)

const uniqueViolationCode = "23505"

type Repository interface {
	Create(ctx context.Context, user domain.User) (domain.ID, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Create inserts one row and returns the store-assigned id. The unique
// index on username is the consistency mechanism for concurrent
// registrations; callers may pre-check for UX but must not rely on it.
func (r *PgRepository) Create(ctx context.Context, user domain.User) (domain.ID, error) {
	start := time.Now()

	row := r.pool.QueryRow(
		ctx,
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		user.Username,
		user.Email,
		user.PasswordHash,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		db.MeasureExec(err, "create user", start)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			if pgErr.ConstraintName == "users_email_key" {
				return 0, commonerrors.ErrEmailTaken
			}
			return 0, commonerrors.ErrUsernameTaken
		}
		return 0, commonerrors.ErrStoreUnavailable.WithCause(err)
	}

	db.MeasureExec(nil, "create user", start)
	return domain.ID(id), nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	start := time.Now()
	row := r.pool.QueryRow(
		ctx,
		`SELECT id, username, email, password_hash, created_at
		 FROM users
		 WHERE username = $1`,
		username,
	)

	return scanUser(row.Scan, "find user by username", start)
}

func scanUser(scan func(...any) error, operation string, start time.Time) (domain.User, error) {
	var user domain.User
	err := scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err := db.HandleQueryError(err, commonerrors.ErrUserNotFound, operation, start); err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			return domain.User{}, err
		}
		return domain.User{}, commonerrors.ErrStoreUnavailable.WithCause(err)
	}
	return user, nil
}
