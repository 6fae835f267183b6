package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/auth"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

// MemoryStore adds account persistence to an in-memory credential store so
// that both the session manager and the account service can share it.
type MemoryStore struct {
	*auth.InMemoryCredentialStore
}

// NewMemoryStore returns a MemoryStore seeded with users.
func NewMemoryStore(users ...models.User) *MemoryStore {
	return &MemoryStore{InMemoryCredentialStore: auth.NewInMemoryCredentialStore(users...)}
}

func (s *MemoryStore) Create(ctx context.Context, user models.User) error {
	exists, err := s.ExistsByUsernameOrEmail(ctx, user.Username, user.Email)
	if err != nil {
		return err
	}
	if exists {
		return apperr.ErrConflict
	}
	s.Put(user)
	return nil
}

func (s *MemoryStore) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	_, err := s.FindByLogin(ctx, username, email)
	switch {
	case err == nil:
		return true, nil
	case apperr.KindOf(err) == apperr.KindNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (s *MemoryStore) UpdateAccount(ctx context.Context, userID, fullName, email string, updatedAt time.Time) (models.User, error) {
	if other, err := s.FindByLogin(ctx, "", email); err == nil && other.ID != userID {
		return models.User{}, apperr.Conflict("Email is already in use")
	}
	return s.update(ctx, userID, updatedAt, func(u *models.User) {
		u.FullName = fullName
		u.Email = strings.TrimSpace(email)
	})
}

func (s *MemoryStore) UpdateAvatar(ctx context.Context, userID, url string, updatedAt time.Time) (models.User, error) {
	return s.update(ctx, userID, updatedAt, func(u *models.User) { u.Avatar = url })
}

func (s *MemoryStore) UpdateCoverImage(ctx context.Context, userID, url string, updatedAt time.Time) (models.User, error) {
	return s.update(ctx, userID, updatedAt, func(u *models.User) { u.CoverImage = url })
}

func (s *MemoryStore) update(ctx context.Context, userID string, updatedAt time.Time, apply func(*models.User)) (models.User, error) {
	user, err := s.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	apply(&user)
	user.UpdatedAt = updatedAt
	s.Put(user)
	return user, nil
}

var (
	_ Store                = (*MemoryStore)(nil)
	_ auth.CredentialStore = (*MemoryStore)(nil)
)
