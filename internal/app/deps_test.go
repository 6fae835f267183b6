package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vinaypatel8092/VideoTube/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func testConfig() config.Config {
	return config.Config{
		AccessTokenSecret:  "access",
		AccessTokenTTL:     time.Minute,
		RefreshTokenSecret: "refresh",
		RefreshTokenTTL:    time.Hour,
		UploadDir:          os.TempDir(),
		MaxUploadBytes:     1 << 20,
		AuthRateLimit:      config.RateLimitConfig{Requests: 5, Window: time.Minute, Burst: 2},
		ObjectStore:        config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"},
		Assets:             config.AssetConfig{ProbeTimeout: time.Second, BreakerFailures: 3, BreakerTimeout: time.Second, JanitorWorkers: 1, JanitorQueueSize: 4},
	}
}

func TestBuildDependencies(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, cleanup, err := buildDependencies(context.Background(), fakePool{}, testConfig(), logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup function")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := cleanup(ctx); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	}()

	v := reflect.ValueOf(deps)
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() == reflect.Interface || field.Kind() == reflect.Pointer {
			if field.IsNil() {
				t.Errorf("dependency %s is not configured", v.Type().Field(i).Name)
			}
		}
	}
	if deps.Uploads.MaxBytes != 1<<20 {
		t.Errorf("unexpected upload limit %d", deps.Uploads.MaxBytes)
	}
}

func TestBuildDependenciesRequiresBucket(t *testing.T) {
	cfg := testConfig()
	cfg.ObjectStore.Bucket = ""
	if _, _, err := buildDependencies(context.Background(), fakePool{}, cfg, slog.Default()); err == nil {
		t.Fatal("expected missing bucket to fail")
	}
}

func TestBuildDependenciesRejectsBadTrustedProxy(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRateLimit.TrustedProxies = []string{"10.0.0.0/8", "not-an-ip"}
	if _, _, err := buildDependencies(context.Background(), fakePool{}, cfg, slog.Default()); err == nil {
		t.Fatal("expected an invalid trusted proxy to fail")
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected error without a command")
	}
	if err := Run(context.Background(), []string{"dance"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestListMigrationsSortsSQLFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.sql", "0001_a.sql", "notes.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "0000_dir.sql"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := listMigrations(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"0001_a.sql", "0002_b.sql"}) {
		t.Fatalf("unexpected migrations %v", got)
	}
}

func TestSeedFileAndBackoff(t *testing.T) {
	if seedFile("dev") != "dev_seed.sql" || seedFile("custom.sql") != "custom.sql" {
		t.Fatal("unexpected seed file mapping")
	}
	if migrationBackoff(1) != migrationBaseBackoff || migrationBackoff(30) != migrationMaxBackoff {
		t.Fatal("unexpected backoff bounds")
	}
	if shouldRetryMigration(nil) || !shouldRetryMigration(context.DeadlineExceeded) {
		t.Fatal("unexpected retry classification")
	}
}
