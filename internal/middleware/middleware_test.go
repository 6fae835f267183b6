package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/auth"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

func statusResponder(w http.ResponseWriter, _ *http.Request, err error) {
	w.WriteHeader(apperr.KindOf(err).Status())
}

func TestIPRateLimiterRefillsOverTime(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Second, 2, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.clock = func() time.Time { return now }

	if !limiter.Allow("1.1.1.1") || !limiter.Allow("1.1.1.1") {
		t.Fatal("expected burst of two to be allowed")
	}
	if limiter.Allow("1.1.1.1") {
		t.Fatal("expected third request to be limited")
	}
	if !limiter.Allow("2.2.2.2") {
		t.Fatal("expected other keys to have their own budget")
	}

	now = now.Add(time.Second)
	if !limiter.Allow("1.1.1.1") {
		t.Fatal("expected a token after one window")
	}
}

func TestIPRateLimiterExpiresIdleBuckets(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.clock = func() time.Time { return now }

	limiter.Allow("a")
	now = now.Add(30 * time.Second)
	limiter.Allow("b")
	if limiter.Len() != 2 {
		t.Fatalf("expected two buckets, got %d", limiter.Len())
	}

	now = now.Add(2 * time.Minute)
	limiter.Allow("c")
	if limiter.Len() != 1 {
		t.Fatalf("expected idle buckets to be swept, got %d", limiter.Len())
	}
	if !limiter.Allow("a") {
		t.Fatal("expected a swept key to start with a fresh budget")
	}
}

func limitedHandler(t *testing.T, proxies ...string) http.Handler {
	t.Helper()
	clients, err := NewClientIPResolver(proxies)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	limiter := NewIPRateLimiter(1, time.Hour, 1, time.Hour)
	return LimitByIP(limiter, clients, "login", statusResponder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
}

func loginFrom(handler http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestLimitByIPIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	handler := limitedHandler(t)

	if code := loginFrom(handler, "203.0.113.7:4000", "10.0.0.1"); code != http.StatusNoContent {
		t.Fatalf("first request: expected 204 got %d", code)
	}
	for i, spoofed := range []string{"10.0.0.2", "10.0.0.3, 192.168.0.1", ""} {
		if code := loginFrom(handler, "203.0.113.7:4001", spoofed); code != http.StatusTooManyRequests {
			t.Fatalf("spoofed request %d: expected 429 got %d", i, code)
		}
	}
	if code := loginFrom(handler, "203.0.113.8:4000", ""); code != http.StatusNoContent {
		t.Fatalf("expected a different peer to pass, got %d", code)
	}
}

func TestLimitByIPHonoursTrustedProxy(t *testing.T) {
	handler := limitedHandler(t, "10.0.0.0/8")

	if code := loginFrom(handler, "10.1.2.3:80", "198.51.100.1, 10.9.9.9"); code != http.StatusNoContent {
		t.Fatalf("first client: expected 204 got %d", code)
	}
	if code := loginFrom(handler, "10.1.2.4:80", "198.51.100.1"); code != http.StatusTooManyRequests {
		t.Fatalf("same client via another proxy: expected 429 got %d", code)
	}
	if code := loginFrom(handler, "10.1.2.3:80", "198.51.100.2"); code != http.StatusNoContent {
		t.Fatalf("second client: expected 204 got %d", code)
	}
	if code := loginFrom(handler, "10.1.2.3:80", "1.1.1.1, 198.51.100.2"); code != http.StatusTooManyRequests {
		t.Fatalf("prepended hop must not reset the budget, got %d", code)
	}
}

func TestClientIPResolver(t *testing.T) {
	clients, err := NewClientIPResolver([]string{"192.0.2.10", "10.0.0.0/8"})
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	cases := []struct {
		remote, forwarded, want string
	}{
		{"203.0.113.7:1234", "1.1.1.1", "203.0.113.7"},
		{"192.0.2.10:1234", "1.1.1.1", "1.1.1.1"},
		{"192.0.2.10:1234", "1.1.1.1, 10.0.0.5", "1.1.1.1"},
		{"192.0.2.10:1234", "", "192.0.2.10"},
		{"192.0.2.10:1234", "garbage", "192.0.2.10"},
		{"[::ffff:10.0.0.1]:80", "2.2.2.2", "2.2.2.2"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tc.remote
		if tc.forwarded != "" {
			req.Header.Set("X-Forwarded-For", tc.forwarded)
		}
		if got := clients.Resolve(req); got != tc.want {
			t.Errorf("Resolve(%s, %q) = %q want %q", tc.remote, tc.forwarded, got, tc.want)
		}
	}

	var none *ClientIPResolver
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	req.Header.Set("X-Forwarded-For", "1.1.1.1")
	if got := none.Resolve(req); got != "192.0.2.10" {
		t.Errorf("nil resolver returned %q", got)
	}

	if _, err := NewClientIPResolver([]string{"10.0.0.0/33"}); err == nil {
		t.Error("expected an invalid prefix to fail")
	}
}

type stubResolver struct {
	user models.User
	err  error
	got  string
}

func (s *stubResolver) ResolveIdentity(_ context.Context, token string) (models.User, error) {
	s.got = token
	return s.user, s.err
}

func TestAuthenticate(t *testing.T) {
	resolver := &stubResolver{user: models.User{ID: "u-1", Username: "chai"}}
	var seen models.User
	handler := Authenticate(resolver, statusResponder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen.ID != "u-1" || resolver.got != "abc" {
		t.Fatalf("unexpected outcome code=%d user=%+v token=%q", rec.Code, seen, resolver.got)
	}

	resolver.err = apperr.ErrTokenInvalid
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRequestLoggerPropagatesRequestIDAndRecovers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var requestID string
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = logging.RequestIDFromContext(r.Context())
		if r.URL.Path == "/panic" {
			panic("boom")
		}
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted || requestID != "req-123" || rec.Header().Get(RequestIDHeader) != "req-123" {
		t.Fatalf("unexpected code=%d id=%q header=%q", rec.Code, requestID, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic got %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
}
