package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

func newTestManager(t *testing.T, password string) (*Manager, *InMemoryCredentialStore, models.User) {
	t.Helper()
	hashed, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		ID:           "8f0f7c2e-4a8d-4c7b-9a51-0b8f3a6c1d10",
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice Example",
		Avatar:       "https://cdn.example.com/avatar.png",
		PasswordHash: hashed,
		CreatedAt:    time.Now().UTC(),
	}
	store := NewInMemoryCredentialStore(user)
	return NewManager(newTestTokenService(t), store), store, user
}

func TestManagerLoginByUsernameOrEmail(t *testing.T) {
	manager, store, user := newTestManager(t, "password123")

	for _, in := range []LoginInput{
		{Username: "ALICE", Password: "password123"},
		{Email: " alice@example.com ", Password: "password123"},
	} {
		result, err := manager.Login(context.Background(), in)
		if err != nil {
			t.Fatalf("login %+v: %v", in, err)
		}
		if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
			t.Fatalf("expected tokens, got %+v", result.Tokens)
		}
		if store.RefreshTokenOf(user.ID) != result.Tokens.RefreshToken {
			t.Fatal("expected login to persist the refresh token")
		}
		if result.User.PasswordHash != "" || result.User.RefreshToken != "" {
			t.Fatalf("expected sanitized user, got %+v", result.User)
		}

		encoded, err := json.Marshal(result.User)
		if err != nil {
			t.Fatalf("marshal user: %v", err)
		}
		if strings.Contains(string(encoded), "password") || strings.Contains(string(encoded), "refreshToken") {
			t.Fatalf("user representation leaks credentials: %s", encoded)
		}
	}
}

func TestManagerLoginFailures(t *testing.T) {
	manager, _, _ := newTestManager(t, "password123")
	ctx := context.Background()

	if _, err := manager.Login(ctx, LoginInput{Password: "password123"}); !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument got %v", err)
	}
	if _, err := manager.Login(ctx, LoginInput{Username: "bob", Password: "password123"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
	if _, err := manager.Login(ctx, LoginInput{Username: "alice", Password: "wrong-password"}); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials got %v", err)
	}
}

func TestManagerLoginReplacesPreviousSession(t *testing.T) {
	manager, _, _ := newTestManager(t, "password123")
	ctx := context.Background()

	first, err := manager.Login(ctx, LoginInput{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := manager.Login(ctx, LoginInput{Username: "alice", Password: "password123"}); err != nil {
		t.Fatalf("second login: %v", err)
	}

	if _, err := manager.Refresh(ctx, first.Tokens.RefreshToken); !errors.Is(err, apperr.ErrTokenExpiredOrReused) {
		t.Fatalf("expected first session refresh token to be superseded, got %v", err)
	}
}

func TestManagerRefreshRotation(t *testing.T) {
	manager, store, user := newTestManager(t, "password123")
	ctx := context.Background()

	login, err := manager.Login(ctx, LoginInput{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := manager.Refresh(ctx, login.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == login.Tokens.RefreshToken {
		t.Fatal("expected a new refresh token")
	}
	if store.RefreshTokenOf(user.ID) != rotated.RefreshToken {
		t.Fatal("expected rotated refresh token to be stored")
	}

	if _, err := manager.Refresh(ctx, login.Tokens.RefreshToken); !errors.Is(err, apperr.ErrTokenExpiredOrReused) {
		t.Fatalf("expected stale token to be rejected, got %v", err)
	}
	if store.RefreshTokenOf(user.ID) != rotated.RefreshToken {
		t.Fatal("a rejected replay must not change the stored token")
	}

	if _, err := manager.Refresh(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("expected latest token to remain usable: %v", err)
	}
}

func TestManagerRefreshFailures(t *testing.T) {
	manager, _, _ := newTestManager(t, "password123")
	ctx := context.Background()

	if _, err := manager.Refresh(ctx, ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized got %v", err)
	}
	if _, err := manager.Refresh(ctx, "garbage"); !errors.Is(err, apperr.ErrTokenInvalid) {
		t.Fatalf("expected token invalid got %v", err)
	}

	orphan, _, err := manager.tokens.IssueRefreshToken(models.User{ID: "missing-user"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := manager.Refresh(ctx, orphan); !errors.Is(err, apperr.ErrTokenInvalid) {
		t.Fatalf("expected token invalid for missing user got %v", err)
	}
}

func TestManagerLogoutIsIdempotent(t *testing.T) {
	manager, store, user := newTestManager(t, "password123")
	ctx := context.Background()

	login, err := manager.Login(ctx, LoginInput{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := manager.Logout(ctx, user.ID); err != nil {
			t.Fatalf("logout %d: %v", i, err)
		}
	}
	if store.RefreshTokenOf(user.ID) != "" {
		t.Fatal("expected refresh token to be cleared")
	}
	if _, err := manager.Refresh(ctx, login.Tokens.RefreshToken); !errors.Is(err, apperr.ErrTokenExpiredOrReused) {
		t.Fatalf("expected logged out token to be rejected, got %v", err)
	}
}

func TestManagerChangePassword(t *testing.T) {
	manager, store, user := newTestManager(t, "password123")
	ctx := context.Background()

	login, err := manager.Login(ctx, LoginInput{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.ChangePassword(ctx, user.ID, "wrong-password", "newpassword1"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials got %v", err)
	}
	for _, next := range []string{"short", strings.Repeat("x", 100), strings.Repeat("é", 40)} {
		if err := manager.ChangePassword(ctx, user.ID, "password123", next); !errors.Is(err, apperr.ErrInvalidArgument) {
			t.Fatalf("expected invalid argument for %d bytes, got %v", len(next), err)
		}
	}
	if err := manager.ChangePassword(ctx, user.ID, "password123", "newpassword1"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := manager.Login(ctx, LoginInput{Username: "alice", Password: "password123"}); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("expected old password to stop working, got %v", err)
	}
	// The refresh token of the session that existed before the change stays valid
	// until another login overwrites it.
	if store.RefreshTokenOf(user.ID) != login.Tokens.RefreshToken {
		t.Fatal("expected password change to leave the refresh token untouched")
	}
}

func TestManagerResolveIdentity(t *testing.T) {
	manager, _, user := newTestManager(t, "password123")
	ctx := context.Background()

	if _, err := manager.ResolveIdentity(ctx, ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized got %v", err)
	}
	if _, err := manager.ResolveIdentity(ctx, "garbage"); !errors.Is(err, apperr.ErrTokenInvalid) {
		t.Fatalf("expected token invalid got %v", err)
	}

	login, err := manager.Login(ctx, LoginInput{Username: "alice", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resolved, err := manager.ResolveIdentity(ctx, login.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ID != user.ID || resolved.PasswordHash != "" || resolved.RefreshToken != "" {
		t.Fatalf("unexpected resolved user %+v", resolved)
	}
}

func TestAccessTokenFromRequestPrefersCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})

	if got := AccessTokenFromRequest(req); got != "cookie-token" {
		t.Fatalf("expected cookie token got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	if got := AccessTokenFromRequest(req); got != "header-token" {
		t.Fatalf("expected header token got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	if got := AccessTokenFromRequest(req); got != "" {
		t.Fatalf("expected no token got %q", got)
	}
}

func TestHashPasswordRejectsOverlongInput(t *testing.T) {
	_, err := HashPassword(strings.Repeat("é", 40))
	if apperr.KindOf(err) != apperr.KindInvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := HashPassword(strings.Repeat("x", MaxPasswordBytes)); err != nil {
		t.Fatalf("hash %d bytes: %v", MaxPasswordBytes, err)
	}
}
