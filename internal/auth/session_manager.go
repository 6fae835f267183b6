package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
	"github.com/vinaypatel8092/VideoTube/internal/metrics"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

// Cookie names used to carry session tokens.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// MinPasswordLength is the shortest password accepted for new credentials.
const MinPasswordLength = 8

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// CredentialStore persists user credentials and the single active refresh token per user.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, username, email string) (models.User, error)
	// SetRefreshToken overwrites the stored token; an empty token clears it.
	SetRefreshToken(ctx context.Context, userID, token string) error
	// RotateRefreshToken replaces current with next only if current is still stored.
	RotateRefreshToken(ctx context.Context, userID, current, next string) (bool, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string, updatedAt time.Time) error
}

// LoginInput identifies a user by username or email.
type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User   models.User
	Tokens models.SessionTokens
}

// Manager drives the session lifecycle: login, refresh rotation, logout,
// password change and identity resolution.
type Manager struct {
	tokens *TokenService
	store  CredentialStore
	now    func() time.Time
}

// NewManager constructs a Manager backed by the provided token service and store.
func NewManager(tokens *TokenService, store CredentialStore) *Manager {
	if tokens == nil {
		panic("auth: token service must not be nil")
	}
	if store == nil {
		panic("auth: credential store must not be nil")
	}
	return &Manager{tokens: tokens, store: store, now: time.Now}
}

// Login verifies the credentials and starts a new session, replacing any previous one.
func (m *Manager) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" && email == "" {
		return LoginResult{}, apperr.InvalidArgument("username or email is required")
	}
	if in.Password == "" {
		return LoginResult{}, apperr.InvalidArgument("password is required")
	}

	logger := logging.FromContext(ctx)

	user, err := m.store.FindByLogin(ctx, username, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return LoginResult{}, apperr.NotFound("User does not exist")
		}
		return LoginResult{}, fmt.Errorf("find user for login: %w", err)
	}

	ok, err := CheckPassword(user.PasswordHash, in.Password)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		logger.Warn("login password mismatch", "userId", user.ID)
		return LoginResult{}, apperr.ErrInvalidCredentials
	}

	tokens, err := m.tokens.IssuePair(user)
	if err != nil {
		return LoginResult{}, err
	}

	if err := m.store.SetRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return LoginResult{}, fmt.Errorf("persist refresh token: %w", err)
	}

	metrics.SessionEvents.WithLabelValues("login").Inc()
	return LoginResult{User: user.Sanitized(), Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new pair. A token can be used once:
// presenting a token that is no longer the stored one fails with
// apperr.ErrTokenExpiredOrReused.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return models.SessionTokens{}, apperr.ErrUnauthorized
	}

	claims, err := m.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}

	user, err := m.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.SessionTokens{}, apperr.New(apperr.KindTokenInvalid, "Invalid refresh token")
		}
		return models.SessionTokens{}, fmt.Errorf("find user for refresh: %w", err)
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		m.reuseDetected(ctx, user.ID)
		return models.SessionTokens{}, apperr.ErrTokenExpiredOrReused
	}

	tokens, err := m.tokens.IssuePair(user)
	if err != nil {
		return models.SessionTokens{}, err
	}

	rotated, err := m.store.RotateRefreshToken(ctx, user.ID, refreshToken, tokens.RefreshToken)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !rotated {
		m.reuseDetected(ctx, user.ID)
		return models.SessionTokens{}, apperr.ErrTokenExpiredOrReused
	}

	metrics.SessionEvents.WithLabelValues("refresh").Inc()
	return tokens, nil
}

// Logout clears the stored refresh token. Calling it repeatedly is harmless.
func (m *Manager) Logout(ctx context.Context, userID string) error {
	if userID == "" {
		return apperr.ErrUnauthorized
	}
	if err := m.store.SetRefreshToken(ctx, userID, ""); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	metrics.SessionEvents.WithLabelValues("logout").Inc()
	return nil
}

// ChangePassword re-hashes the password after verifying the old one.
// The active refresh token is left untouched.
func (m *Manager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperr.InvalidArgument("old and new password are required")
	}
	if len(newPassword) < MinPasswordLength {
		return apperr.InvalidArgument(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(newPassword) > MaxPasswordBytes {
		return apperr.InvalidArgument(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}

	user, err := m.store.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user for password change: %w", err)
	}

	ok, err := CheckPassword(user.PasswordHash, oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.KindInvalidCredentials, "Invalid old password")
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := m.store.UpdatePassword(ctx, userID, hashed, m.now().UTC()); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	metrics.SessionEvents.WithLabelValues("password_change").Inc()
	return nil
}

// ResolveIdentity verifies an access token and loads the sanitized user it names.
func (m *Manager) ResolveIdentity(ctx context.Context, accessToken string) (models.User, error) {
	if accessToken == "" {
		return models.User{}, apperr.ErrUnauthorized
	}

	claims, err := m.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return models.User{}, err
	}

	user, err := m.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, apperr.ErrTokenInvalid
		}
		return models.User{}, fmt.Errorf("find user for access token: %w", err)
	}

	return user.Sanitized(), nil
}

func (m *Manager) reuseDetected(ctx context.Context, userID string) {
	metrics.SessionEvents.WithLabelValues("reuse_detected").Inc()
	logging.FromContext(ctx).Warn("refresh token expired or reused", "userId", userID)
}

// AccessTokenFromRequest extracts the access token from the accessToken cookie,
// falling back to an Authorization: Bearer header.
func AccessTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		if token := strings.TrimSpace(cookie.Value); token != "" {
			return token
		}
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
