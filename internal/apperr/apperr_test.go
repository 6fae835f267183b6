package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("load video: %w", NotFound("Video not found"))

	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected wrapped not found error to match ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Fatal("did not expect not found error to match ErrConflict")
	}
}

func TestKindOfAndStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{InvalidArgument("bad"), http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrTokenExpiredOrReused, http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
		{Conflict("dupe"), http.StatusConflict},
		{ErrRateLimited, http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := KindOf(tc.err).Status(); got != tc.status {
			t.Fatalf("expected status %d for %v got %d", tc.status, tc.err, got)
		}
	}
}

func TestPublicMessageHidesInternalCauses(t *testing.T) {
	err := Wrap(KindInternal, "insert user", errors.New("pq: connection reset"))
	if got := PublicMessage(err); got != ErrInternal.Message {
		t.Fatalf("expected generic message got %q", got)
	}
	if got := PublicMessage(errors.New("raw")); got != ErrInternal.Message {
		t.Fatalf("expected generic message for foreign error got %q", got)
	}
	if got := PublicMessage(NotFound("Channel does not exist")); got != "Channel does not exist" {
		t.Fatalf("unexpected message %q", got)
	}
}
