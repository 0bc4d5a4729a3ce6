package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/avoronkov/webauth/internal/auth/service"
	commonerrors "github.com/avoronkov/webauth/internal/common/errors"
	"github.com/avoronkov/webauth/internal/common/logger"
	userdomain "github.com/avoronkov/webauth/internal/user/domain"
	userrepo "github.com/avoronkov/webauth/internal/user/repository"
)

var errMismatch = errors.New("hash mismatch")

var _ userrepo.Repository = (*mockUserRepo)(nil)
var _ userrepo.Repository = (*memUserRepo)(nil)

func setupAuthService(t *testing.T) (*service.AuthService, *mockUserRepo, *mockHasher) {
	t.Helper()

	repo := &mockUserRepo{}
	hasher := &mockHasher{}
	log, err := logger.New("", "test", "ERROR")
	if err != nil {
		t.Fatalf("failed to build logger: %v", err)
	}

	return service.NewAuthService(repo, hasher, log), repo, hasher
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _ := setupAuthService(t)

	var created userdomain.User
	repo.createFunc = func(ctx context.Context, user userdomain.User) (userdomain.ID, error) {
		created = user
		return 42, nil
	}

	user, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if user.ID != 42 {
		t.Errorf("expected the store-assigned id, got %d", user.ID)
	}
	if created.Username != "alice" {
		t.Errorf("expected username alice, got %s", created.Username)
	}
	if created.PasswordHash != "hashed_password123" {
		t.Errorf("expected the hashed credential to be stored, got %s", created.PasswordHash)
	}
	if created.Email != nil {
		t.Errorf("expected no email, got %v", *created.Email)
	}
}

func TestAuthService_Register_WithEmail(t *testing.T) {
	svc, repo, _ := setupAuthService(t)

	var created userdomain.User
	repo.createFunc = func(ctx context.Context, user userdomain.User) (userdomain.ID, error) {
		created = user
		return 1, nil
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "password123",
		Email:    "alice@example.com",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if created.Email == nil || *created.Email != "alice@example.com" {
		t.Errorf("expected email to be stored, got %v", created.Email)
	}
}

func TestAuthService_Register_ValidationError(t *testing.T) {
	svc, _, _ := setupAuthService(t)

	testCases := []struct {
		name     string
		username string
		password string
		email    string
	}{
		{"empty username", "", "password123", ""},
		{"empty password", "alice", "", ""},
		{"both empty", "", "", ""},
		{"malformed email", "alice", "password123", "not-an-email"},
		{"over-long password", "alice", strings.Repeat("p", 73), ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), service.RegisterInput{
				Username: tc.username,
				Password: tc.password,
				Email:    tc.email,
			})

			if !errors.Is(err, commonerrors.ErrValidation) {
				t.Errorf("expected VALIDATION_FAILED, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_UsernameExistsFastPath(t *testing.T) {
	svc, repo, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{ID: 1, Username: username}, nil
	}
	repo.createFunc = func(ctx context.Context, user userdomain.User) (userdomain.ID, error) {
		t.Error("create must not be called when the fast path hits")
		return 0, nil
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "password123",
	})

	if !errors.Is(err, commonerrors.ErrUsernameTaken) {
		t.Errorf("expected USERNAME_TAKEN, got %v", err)
	}
}

func TestAuthService_Register_UsernameExistsAtStore(t *testing.T) {
	svc, repo, _ := setupAuthService(t)

	// Fast path misses, the unique constraint still catches the duplicate.
	repo.createFunc = func(ctx context.Context, user userdomain.User) (userdomain.ID, error) {
		return 0, commonerrors.ErrUsernameTaken
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "password123",
	})

	if !errors.Is(err, commonerrors.ErrUsernameTaken) {
		t.Errorf("expected USERNAME_TAKEN, got %v", err)
	}
}

func TestAuthService_Register_StoreUnavailable(t *testing.T) {
	svc, repo, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{}, commonerrors.ErrStoreUnavailable.WithCause(errors.New("connection refused"))
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "password123",
	})

	if !errors.Is(err, commonerrors.ErrStoreUnavailable) {
		t.Errorf("expected STORE_UNAVAILABLE, got %v", err)
	}
}

func TestAuthService_Register_HashError(t *testing.T) {
	svc, _, hasher := setupAuthService(t)

	hasher.hashFunc = func(password string) (string, error) {
		return "", errors.New("hash error")
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "password123",
	})

	if err == nil {
		t.Fatal("expected error")
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{
			ID:           7,
			Username:     username,
			PasswordHash: "hashed_password123",
		}, nil
	}

	user, err := svc.Login(context.Background(), service.LoginInput{
		Username: "alice",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if user.ID != 7 || user.Username != "alice" {
		t.Errorf("expected the stored identity, got %+v", user)
	}
}

func TestAuthService_Login_IndistinguishableFailures(t *testing.T) {
	// Unknown username and wrong password must produce the same error.
	svc, repo, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		if username == "alice" {
			return userdomain.User{ID: 1, Username: "alice", PasswordHash: "hashed_password123"}, nil
		}
		return userdomain.User{}, commonerrors.ErrUserNotFound
	}

	_, unknownErr := svc.Login(context.Background(), service.LoginInput{
		Username: "nobody",
		Password: "password123",
	})
	_, wrongErr := svc.Login(context.Background(), service.LoginInput{
		Username: "alice",
		Password: "wrong-password",
	})

	if !errors.Is(unknownErr, commonerrors.ErrInvalidCredentials) {
		t.Errorf("expected INVALID_CREDENTIALS for unknown user, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, commonerrors.ErrInvalidCredentials) {
		t.Errorf("expected INVALID_CREDENTIALS for wrong password, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Error("the two failure modes must be observably identical")
	}
}

func TestAuthService_Login_EmptyFields(t *testing.T) {
	svc, repo, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		t.Error("lookup must not run for empty credentials")
		return userdomain.User{}, commonerrors.ErrUserNotFound
	}

	_, err := svc.Login(context.Background(), service.LoginInput{})

	if !errors.Is(err, commonerrors.ErrInvalidCredentials) {
		t.Errorf("expected INVALID_CREDENTIALS, got %v", err)
	}
}

func TestAuthService_Login_StoreUnavailable(t *testing.T) {
	svc, repo, _ := setupAuthService(t)

	repo.findByUsernameFunc = func(ctx context.Context, username string) (userdomain.User, error) {
		return userdomain.User{}, commonerrors.ErrStoreUnavailable.WithCause(errors.New("connection refused"))
	}

	_, err := svc.Login(context.Background(), service.LoginInput{
		Username: "alice",
		Password: "password123",
	})

	if !errors.Is(err, commonerrors.ErrStoreUnavailable) {
		t.Errorf("expected STORE_UNAVAILABLE, got %v", err)
	}
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	repo := newMemUserRepo()
	hasher := &mockHasher{}
	log, _ := logger.New("", "test", "ERROR")
	svc := service.NewAuthService(repo, hasher, log)

	if _, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "password123",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), service.LoginInput{
		Username: "alice",
		Password: "password123",
	}); err != nil {
		t.Fatalf("login after register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "other-password1",
	})
	if !errors.Is(err, commonerrors.ErrUsernameTaken) {
		t.Errorf("expected USERNAME_TAKEN on second registration, got %v", err)
	}
	if repo.count("alice") != 1 {
		t.Error("expected exactly one row for the username")
	}
}

func TestAuthService_ConcurrentRegistration(t *testing.T) {
	repo := newMemUserRepo()
	hasher := &mockHasher{}
	log, _ := logger.New("", "test", "ERROR")
	svc := service.NewAuthService(repo, hasher, log)

	const attempts = 8

	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Register(context.Background(), service.RegisterInput{
				Username: "alice",
				Password: "password123",
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, commonerrors.ErrUsernameTaken):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("expected exactly one successful registration, got %d", successes)
	}
	if repo.count("alice") != 1 {
		t.Error("expected exactly one row for the username")
	}
}
