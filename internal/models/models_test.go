package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUserJSONNeverContainsCredentials(t *testing.T) {
	user := User{
		ID:           "user-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$secret",
		RefreshToken: "refresh-token",
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	body := string(encoded)
	for _, forbidden := range []string{"password", "refreshToken", "$2a$10$secret", "refresh-token"} {
		if strings.Contains(body, forbidden) {
			t.Fatalf("expected %q to be absent from %s", forbidden, body)
		}
	}
}

func TestUserSanitized(t *testing.T) {
	user := User{ID: "user-1", PasswordHash: "hash", RefreshToken: "token"}
	clean := user.Sanitized()

	if clean.PasswordHash != "" || clean.RefreshToken != "" {
		t.Fatalf("expected credentials to be cleared, got %+v", clean)
	}
	if user.PasswordHash != "hash" {
		t.Fatal("sanitizing must not mutate the original value")
	}
}
