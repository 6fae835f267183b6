package auth

import (
	"context"
	"sync"
	"time"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

// NewInMemoryCredentialStore returns a CredentialStore backed by an in-memory map.
func NewInMemoryCredentialStore(users ...models.User) *InMemoryCredentialStore {
	s := &InMemoryCredentialStore{users: make(map[string]models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

// InMemoryCredentialStore implements CredentialStore for tests and local development.
type InMemoryCredentialStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

// Put inserts or replaces a user record.
func (s *InMemoryCredentialStore) Put(user models.User) {
	s.mu.Lock()
	s.users[user.ID] = user
	s.mu.Unlock()
}

// FindByID retrieves a user by identifier.
func (s *InMemoryCredentialStore) FindByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, apperr.ErrNotFound
	}
	return user, nil
}

// FindByLogin retrieves a user whose username or email matches exactly, as
// the users table does.
func (s *InMemoryCredentialStore) FindByLogin(_ context.Context, username, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if username != "" && user.Username == username {
			return user, nil
		}
		if email != "" && user.Email == email {
			return user, nil
		}
	}
	return models.User{}, apperr.ErrNotFound
}

// SetRefreshToken overwrites the stored refresh token.
func (s *InMemoryCredentialStore) SetRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	user.RefreshToken = token
	s.users[userID] = user
	return nil
}

// RotateRefreshToken swaps current for next when current is still stored.
func (s *InMemoryCredentialStore) RotateRefreshToken(_ context.Context, userID, current, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok || user.RefreshToken != current {
		return false, nil
	}
	user.RefreshToken = next
	s.users[userID] = user
	return true, nil
}

// UpdatePassword stores a new password hash.
func (s *InMemoryCredentialStore) UpdatePassword(_ context.Context, userID, passwordHash string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = updatedAt
	s.users[userID] = user
	return nil
}

// RefreshTokenOf reports the stored refresh token. Useful for tests.
func (s *InMemoryCredentialStore) RefreshTokenOf(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[userID].RefreshToken
}
