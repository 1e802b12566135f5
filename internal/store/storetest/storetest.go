// Package storetest provides an in-memory user repository for tests. It
// mirrors the SQL repository's semantics: username/email uniqueness,
// ErrNotFound/ErrDuplicate sentinels, and audit timestamps.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/moling/userservice/internal/store"
	"github.com/moling/userservice/types"
)

// Memory is a mutex-guarded map-backed user repository.
type Memory struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func NewMemory() *Memory {
	return &Memory{nextID: 1, users: make(map[int]types.User)}
}

func (m *Memory) GetByID(ctx context.Context, id int) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *Memory) GetByUsername(ctx context.Context, username string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *Memory) GetByEmail(ctx context.Context, email string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *Memory) Create(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	return user, nil
}

func (m *Memory) Update(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	for id, existing := range m.users {
		if id == user.ID {
			continue
		}
		if existing.Username == user.Username || existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return user, nil
}

func (m *Memory) SetActive(ctx context.Context, id int, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Active = active
	user.UpdatedAt = time.Now()
	m.users[id] = user
	return nil
}

func (m *Memory) SetAvatarKey(ctx context.Context, id int, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.AvatarKey = key
	user.UpdatedAt = time.Now()
	m.users[id] = user
	return nil
}

func (m *Memory) TouchLastLogin(ctx context.Context, id int, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.LastLoginAt = &at
	m.users[id] = user
	return nil
}
