package httpserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/vinaypatel8092/VideoTube/internal/config"
)

func TestNewAppliesDefaults(t *testing.T) {
	srv := New(8000, http.NotFoundHandler(), config.HTTPConfig{WriteTimeout: time.Minute})
	if srv.Addr() != ":8000" {
		t.Fatalf("unexpected addr %q", srv.Addr())
	}
	if srv.inner.ReadHeaderTimeout != 5*time.Second || srv.inner.WriteTimeout != time.Minute {
		t.Fatalf("unexpected timeouts %+v", srv.inner)
	}
	if srv.shutdownTimeout != DefaultShutdownTimeout {
		t.Fatalf("expected default shutdown timeout, got %s", srv.shutdownTimeout)
	}
}

func TestServeAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := New(0, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "pong")
	}), config.HTTPConfig{ShutdownTimeout: time.Second})

	done := make(chan error, 1)
	go func() { done <- srv.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "pong" {
		t.Fatalf("unexpected body %q", body)
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("expected clean exit, got %v", err)
	}
}
