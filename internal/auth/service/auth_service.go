package service

import (
	"context"
	"errors"

	commoncrypto "github.com/avoronkov/webauth/internal/common/crypto"
	commonerrors "github.com/avoronkov/webauth/internal/common/errors"
	"github.com/avoronkov/webauth/internal/common/logger"
	"github.com/avoronkov/webauth/internal/observability/metrics"
	userdomain "github.com/avoronkov/webauth/internal/user/domain"
	userrepo "github.com/avoronkov/webauth/internal/user/repository"
)

type AuthService struct {
	repo      userrepo.Repository
	hasher    commoncrypto.PasswordHasher
	validator *CredentialValidator
	log       *logger.Logger
}

func NewAuthService(
	repo userrepo.Repository,
	hasher commoncrypto.PasswordHasher,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		repo:      repo,
		hasher:    hasher,
		validator: NewCredentialValidator(),
		log:       log,
	}
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
}

type LoginInput struct {
	Username string
	Password string
}

// Register validates the input, hashes the password and persists the user.
// The pre-insert lookup is only a fast path for a friendlier notice; the
// store's unique constraint is what actually guarantees uniqueness under
// concurrent registrations.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := s.validator.ValidateRegistration(input.Username, input.Password, input.Email); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		metrics.RegistrationsTotal.WithLabelValues("validation_failed").Inc()
		return userdomain.User{}, err
	}

	if _, err := s.repo.FindByUsername(ctx, input.Username); err == nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_username_exists",
		}).Warn("register failed: already exists")
		metrics.RegistrationsTotal.WithLabelValues("username_taken").Inc()
		return userdomain.User{}, commonerrors.ErrUsernameTaken
	} else if !errors.Is(err, commonerrors.ErrUserNotFound) {
		metrics.RegistrationsTotal.WithLabelValues("store_error").Inc()
		return userdomain.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		metrics.RegistrationsTotal.WithLabelValues("hash_error").Inc()
		return userdomain.User{}, err
	}

	user := userdomain.User{
		Username:     input.Username,
		PasswordHash: hash,
	}
	if input.Email != "" {
		email := input.Email
		user.Email = &email
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, commonerrors.ErrUsernameTaken) || errors.Is(err, commonerrors.ErrEmailTaken) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_conflict",
			}).Warn("register failed: already exists")
			metrics.RegistrationsTotal.WithLabelValues("username_taken").Inc()
			return userdomain.User{}, err
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		metrics.RegistrationsTotal.WithLabelValues("store_error").Inc()
		return userdomain.User{}, err
	}
	user.ID = id

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  int64(user.ID),
		"action":   "register_success",
	}).Info("register success")
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	return user, nil
}

// Login resolves the user and verifies the password. An unknown username
// and a wrong password produce the same INVALID_CREDENTIALS outcome so the
// response never reveals which one it was.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (userdomain.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "login_attempt",
	}).Info("login attempt")

	if input.Username == "" || input.Password == "" {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return userdomain.User{}, commonerrors.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, commonerrors.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "login_user_not_found",
			}).Warn("login failed: not found")
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return userdomain.User{}, commonerrors.ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		metrics.LoginsTotal.WithLabelValues("store_error").Inc()
		return userdomain.User{}, err
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "login_invalid_password",
		}).Warn("login failed: invalid password")
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return userdomain.User{}, commonerrors.ErrInvalidCredentials
	}

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"user_id":  int64(user.ID),
		"action":   "login_success",
	}).Info("login success")
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return user, nil
}
