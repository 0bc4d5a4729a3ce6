package service_test

import (
	"context"
	"sync"

	commonerrors "github.com/avoronkov/webauth/internal/common/errors"
	userdomain "github.com/avoronkov/webauth/internal/user/domain"
)

type mockUserRepo struct {
	createFunc         func(ctx context.Context, user userdomain.User) (userdomain.ID, error)
	findByUsernameFunc func(ctx context.Context, username string) (userdomain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) (userdomain.ID, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return 1, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return userdomain.User{}, commonerrors.ErrUserNotFound
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash string, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	if hash == "hashed_"+password {
		return nil
	}
	return errMismatch
}

// memUserRepo is an in-memory store that enforces username uniqueness the
// way the real unique index does, for concurrency tests.
type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]userdomain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		nextID: 1,
		users:  make(map[string]userdomain.User),
	}
}

func (m *memUserRepo) Create(ctx context.Context, user userdomain.User) (userdomain.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[user.Username]; exists {
		return 0, commonerrors.ErrUsernameTaken
	}

	user.ID = userdomain.ID(m.nextID)
	m.nextID++
	m.users[user.Username] = user
	return user.ID, nil
}

func (m *memUserRepo) FindByUsername(ctx context.Context, username string) (userdomain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[username]
	if !exists {
		return userdomain.User{}, commonerrors.ErrUserNotFound
	}
	return user, nil
}

func (m *memUserRepo) count(username string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[username]; exists {
		return 1
	}
	return 0
}
