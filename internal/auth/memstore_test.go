package auth_test

import (
	"context"
	"strconv"
	"sync"

	"github.com/ayush/auth-server/internal/auth"
	"github.com/ayush/auth-server/internal/models"
)

var testParams = auth.Argon2Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 32}

// memoryUserStore enforces email uniqueness on Insert like a real store.
type memoryUserStore struct {
	mu     sync.Mutex
	users  map[string]models.User
	nextID int

	finds   int
	inserts int

	findErr   error
	insertErr error
	deleteErr error

	// hideOnFind makes FindByEmail miss existing users, simulating a
	// registration that loses the race after the pre-check.
	hideOnFind bool

	onFind func()
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: map[string]models.User{}}
}

func (m *memoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.onFind != nil {
		m.onFind()
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	u, ok := m.users[email]
	if !ok || m.hideOnFind {
		return nil, nil
	}
	return &u, nil
}

func (m *memoryUserStore) Insert(_ context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	if _, ok := m.users[u.Email]; ok {
		return nil, models.ErrDuplicateEmail
	}
	m.nextID++
	out := *u
	out.ID = strconv.Itoa(m.nextID)
	m.users[u.Email] = out
	return &out, nil
}

func (m *memoryUserStore) DeleteByEmail(_ context.Context, email string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	if _, ok := m.users[email]; !ok {
		return 0, nil
	}
	delete(m.users, email)
	return 1, nil
}

func (m *memoryUserStore) calls() (finds, inserts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finds, m.inserts
}
