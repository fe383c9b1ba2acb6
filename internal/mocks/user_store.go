package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"

	"github.com/mihirk/taskman-api/internal/domain"
	"github.com/mihirk/taskman-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn          func(ctx context.Context, user *domain.User) error
	GetByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn      func(ctx context.Context, email string) (*domain.User, error)
	GetByIDAndTokenFn func(ctx context.Context, id uuid.UUID, token string) (*domain.User, error)
	UpdateFn          func(ctx context.Context, user *domain.User) error
	DeleteFn          func(ctx context.Context, id uuid.UUID) error
	AddTokenFn        func(ctx context.Context, userID uuid.UUID, token string) error
	RemoveTokenFn     func(ctx context.Context, userID uuid.UUID, token string) error
	ClearTokensFn     func(ctx context.Context, userID uuid.UUID) error
	UpdateAvatarFn    func(ctx context.Context, userID uuid.UUID, avatar []byte) error
	GetAvatarFn       func(ctx context.Context, userID uuid.UUID) ([]byte, error)

	// Data for default implementation, keyed by normalized email for Users
	// and by user ID for Tokens and Avatars.
	mu      sync.Mutex
	Users   map[string]*domain.User
	Tokens  map[uuid.UUID][]string
	Avatars map[uuid.UUID][]byte

	CreateError error
}

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users:   make(map[string]*domain.User),
		Tokens:  make(map[uuid.UUID][]string),
		Avatars: make(map[uuid.UUID][]byte),
	}
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.Users[user.Email]; exists {
		return store.ErrEmailExists
	}

	m.Users[user.Email] = user
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.Users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.Users[email]
	if !exists {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// GetByIDAndToken implements the UserStore interface
func (m *MockUserStore) GetByIDAndToken(
	ctx context.Context,
	id uuid.UUID,
	token string,
) (*domain.User, error) {
	if m.GetByIDAndTokenFn != nil {
		return m.GetByIDAndTokenFn(ctx, id, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.Users {
		if user.ID != id {
			continue
		}
		for _, t := range m.Tokens[id] {
			if t == token {
				return user, nil
			}
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for email, existing := range m.Users {
		if existing.ID != user.ID {
			continue
		}
		if email != user.Email {
			if _, exists := m.Users[user.Email]; exists {
				return store.ErrEmailExists
			}
			delete(m.Users, email)
		}
		m.Users[user.Email] = user
		return nil
	}
	return store.ErrUserNotFound
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for email, user := range m.Users {
		if user.ID == id {
			delete(m.Users, email)
			delete(m.Tokens, id)
			delete(m.Avatars, id)
			return nil
		}
	}
	return store.ErrUserNotFound
}

// AddToken implements the UserStore interface
func (m *MockUserStore) AddToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.AddTokenFn != nil {
		return m.AddTokenFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Tokens[userID] = append(m.Tokens[userID], token)
	return nil
}

// RemoveToken implements the UserStore interface
func (m *MockUserStore) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	if m.RemoveTokenFn != nil {
		return m.RemoveTokenFn(ctx, userID, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tokens := m.Tokens[userID]
	for i, t := range tokens {
		if t == token {
			m.Tokens[userID] = append(tokens[:i], tokens[i+1:]...)
			return nil
		}
	}
	return store.ErrTokenNotFound
}

// ClearTokens implements the UserStore interface
func (m *MockUserStore) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	if m.ClearTokensFn != nil {
		return m.ClearTokensFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.Tokens, userID)
	return nil
}

// UpdateAvatar implements the UserStore interface
func (m *MockUserStore) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar []byte) error {
	if m.UpdateAvatarFn != nil {
		return m.UpdateAvatarFn(ctx, userID, avatar)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, user := range m.Users {
		if user.ID == userID {
			found = true
			break
		}
	}
	if !found {
		return store.ErrUserNotFound
	}

	if avatar == nil {
		delete(m.Avatars, userID)
	} else {
		m.Avatars[userID] = avatar
	}
	return nil
}

// GetAvatar implements the UserStore interface
func (m *MockUserStore) GetAvatar(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	if m.GetAvatarFn != nil {
		return m.GetAvatarFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for _, user := range m.Users {
		if user.ID == userID {
			found = true
			break
		}
	}
	if !found {
		return nil, store.ErrUserNotFound
	}

	avatar, ok := m.Avatars[userID]
	if !ok || len(avatar) == 0 {
		return nil, store.ErrAvatarNotFound
	}
	return avatar, nil
}

// WithTx implements the UserStore interface for transaction support
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	// For mock purposes, just return the same mock
	return m
}
