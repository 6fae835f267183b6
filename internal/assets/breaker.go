package assets

import (
	"context"
	"io"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/vinaypatel8092/VideoTube/internal/metrics"
)

// BreakerConfig tunes the circuit breaker placed in front of object storage.
type BreakerConfig struct {
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
}

// BreakerStorage guards an ObjectStorage with a circuit breaker. While open,
// calls fail immediately with gobreaker.ErrOpenState.
type BreakerStorage struct {
	base    ObjectStorage
	breaker *gobreaker.CircuitBreaker[string]
}

// NewBreakerStorage wraps base.
func NewBreakerStorage(base ObjectStorage, cfg BreakerConfig, logger *slog.Logger) *BreakerStorage {
	if cfg.Failures == 0 {
		cfg.Failures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "object-storage",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.StorageBreakerState.Set(float64(to))
			logger.Warn("storage circuit breaker state changed",
				slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
		},
	}

	return &BreakerStorage{base: base, breaker: gobreaker.NewCircuitBreaker[string](settings)}
}

// Save uploads through the breaker.
func (s *BreakerStorage) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	return s.breaker.Execute(func() (string, error) {
		return s.base.Save(ctx, key, r)
	})
}

// Delete removes through the breaker.
func (s *BreakerStorage) Delete(ctx context.Context, key string) error {
	_, err := s.breaker.Execute(func() (string, error) {
		return "", s.base.Delete(ctx, key)
	})
	return err
}

// KeyFor delegates to the wrapped storage; it performs no I/O.
func (s *BreakerStorage) KeyFor(url string) (string, bool) {
	return s.base.KeyFor(url)
}

// State reports the breaker state.
func (s *BreakerStorage) State() gobreaker.State {
	return s.breaker.State()
}

var _ ObjectStorage = (*BreakerStorage)(nil)
