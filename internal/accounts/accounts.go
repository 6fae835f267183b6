// Package accounts registers users and maintains their profile details and
// channel images.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/assets"
	"github.com/vinaypatel8092/VideoTube/internal/auth"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
	"github.com/vinaypatel8092/VideoTube/internal/models"
	"github.com/vinaypatel8092/VideoTube/internal/validation"
)

// Store persists user accounts.
type Store interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	Create(ctx context.Context, user models.User) error
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateAccount(ctx context.Context, userID, fullName, email string, updatedAt time.Time) (models.User, error)
	UpdateAvatar(ctx context.Context, userID, url string, updatedAt time.Time) (models.User, error)
	UpdateCoverImage(ctx context.Context, userID, url string, updatedAt time.Time) (models.User, error)
}

// Uploader moves a local temporary file into object storage.
type Uploader interface {
	Upload(ctx context.Context, localPath string, kind assets.Kind) (assets.Asset, error)
}

// Cleaner schedules the removal of a stored asset.
type Cleaner interface {
	Enqueue(ctx context.Context, url string, kind assets.Kind) error
}

// RegisterInput carries the sign-up form and its temporary image files.
type RegisterInput struct {
	FullName       string `validate:"notblank,max=100"`
	Email          string `validate:"required,email"`
	Username       string `validate:"notblank,max=50"`
	Password       string `validate:"required,min=8,maxbytes=72"`
	AvatarPath     string
	CoverImagePath string
}

// AccountInput carries the editable profile fields.
type AccountInput struct {
	FullName string `validate:"notblank,max=100"`
	Email    string `validate:"required,email"`
}

// Service implements account registration and profile updates.
type Service struct {
	store   Store
	uploads Uploader
	cleaner Cleaner
	now     func() time.Time
	newID   func() string
}

// NewService constructs a Service.
func NewService(store Store, uploads Uploader, cleaner Cleaner) *Service {
	if store == nil || uploads == nil || cleaner == nil {
		panic("accounts: dependencies must not be nil")
	}
	return &Service{store: store, uploads: uploads, cleaner: cleaner, now: time.Now, newID: uuid.NewString}
}

// Register creates a user. The avatar is required and the cover image is
// optional; temporary files are removed on every path.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	logger := logging.FromContext(ctx)
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = normalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)

	discardLocal := func() { assets.RemoveLocal(in.AvatarPath, in.CoverImagePath).Log(logger) }

	if err := validation.Struct(in); err != nil {
		discardLocal()
		return models.User{}, err
	}

	exists, err := s.store.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		discardLocal()
		return models.User{}, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		discardLocal()
		return models.User{}, apperr.Conflict("User with email or username already exists")
	}
	if strings.TrimSpace(in.AvatarPath) == "" {
		discardLocal()
		return models.User{}, apperr.InvalidArgument("Avatar file is required")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		discardLocal()
		return models.User{}, err
	}

	avatar, err := s.uploads.Upload(ctx, in.AvatarPath, assets.KindImage)
	if err != nil {
		assets.RemoveLocal(in.CoverImagePath).Log(logger)
		return models.User{}, apperr.Wrap(apperr.KindInternal, "Error while uploading avatar", err)
	}
	var cover assets.Asset
	if strings.TrimSpace(in.CoverImagePath) != "" {
		cover, err = s.uploads.Upload(ctx, in.CoverImagePath, assets.KindImage)
		if err != nil {
			s.discard(ctx, avatar.URL)
			return models.User{}, apperr.Wrap(apperr.KindInternal, "Error while uploading cover image", err)
		}
	}

	now := s.now().UTC()
	user := models.User{
		ID:           s.newID(),
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		Avatar:       avatar.URL,
		CoverImage:   cover.URL,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		s.discard(ctx, avatar.URL)
		s.discard(ctx, cover.URL)
		if errors.Is(err, apperr.ErrConflict) {
			return models.User{}, apperr.Conflict("User with email or username already exists")
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	logger.Info("user registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user.Sanitized(), nil
}

// UpdateAccount changes the full name and email of userID.
func (s *Service) UpdateAccount(ctx context.Context, userID string, in AccountInput) (models.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return models.User{}, err
	}

	user, err := s.store.UpdateAccount(ctx, userID, in.FullName, in.Email, s.now().UTC())
	if err != nil {
		return models.User{}, userError(err, "update account")
	}
	return user.Sanitized(), nil
}

// UpdateAvatar replaces the avatar of userID and deletes the previous one in
// the background.
func (s *Service) UpdateAvatar(ctx context.Context, userID, localPath string) (models.User, error) {
	return s.replaceImage(ctx, userID, localPath, "Avatar file is missing", "avatar",
		func(u models.User) string { return u.Avatar }, s.store.UpdateAvatar)
}

// UpdateCoverImage replaces the cover image of userID and deletes the
// previous one in the background.
func (s *Service) UpdateCoverImage(ctx context.Context, userID, localPath string) (models.User, error) {
	return s.replaceImage(ctx, userID, localPath, "Cover image file is missing", "cover image",
		func(u models.User) string { return u.CoverImage }, s.store.UpdateCoverImage)
}

// normalizeEmail lowercases email so that storage can compare it exactly.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type imageUpdate func(ctx context.Context, userID, url string, updatedAt time.Time) (models.User, error)

func (s *Service) replaceImage(ctx context.Context, userID, localPath, missing, label string, current func(models.User) string, update imageUpdate) (models.User, error) {
	logger := logging.FromContext(ctx)
	if strings.TrimSpace(localPath) == "" {
		return models.User{}, apperr.InvalidArgument(missing)
	}

	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		assets.RemoveLocal(localPath).Log(logger)
		return models.User{}, userError(err, "load user")
	}
	previous := current(user)

	image, err := s.uploads.Upload(ctx, localPath, assets.KindImage)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.KindInternal, fmt.Sprintf("Error while uploading %s", label), err)
	}

	updated, err := update(ctx, userID, image.URL, s.now().UTC())
	if err != nil {
		s.discard(ctx, image.URL)
		return models.User{}, userError(err, "update "+label)
	}

	s.discard(ctx, previous)
	return updated.Sanitized(), nil
}

func (s *Service) discard(ctx context.Context, url string) {
	if strings.TrimSpace(url) == "" {
		return
	}
	if err := s.cleaner.Enqueue(ctx, url, assets.KindImage); err != nil {
		logging.FromContext(ctx).Warn("schedule asset delete", slog.String("url", url), slog.Any("error", err))
	}
}

func userError(err error, op string) error {
	if apperr.KindOf(err) == apperr.KindNotFound {
		return apperr.NotFound("User not found")
	}
	return fmt.Errorf("%s: %w", op, err)
}
