package assets

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Deleter removes a stored asset by URL.
type Deleter interface {
	Delete(ctx context.Context, url string, kind Kind) error
}

// JanitorConfig controls the concurrency characteristics of the janitor.
type JanitorConfig struct {
	QueueSize int
	Workers   int
	// Timeout bounds each remote delete.
	Timeout time.Duration
}

// Janitor deletes replaced or orphaned assets in the background. Deletes are
// best effort: failures are logged and not retried.
type Janitor struct {
	deleter Deleter
	logger  *slog.Logger
	timeout time.Duration

	jobs   chan deleteJob
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type deleteJob struct {
	url  string
	kind Kind
}

var (
	errJanitorClosed    = errors.New("asset janitor closed")
	errJanitorQueueFull = errors.New("asset janitor queue full")
)

// NewJanitor starts the worker pool.
func NewJanitor(deleter Deleter, cfg JanitorConfig, logger *slog.Logger) *Janitor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	j := &Janitor{
		deleter: deleter,
		logger:  logger,
		timeout: cfg.Timeout,
		jobs:    make(chan deleteJob, cfg.QueueSize),
	}

	j.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go j.worker()
	}

	return j
}

// Enqueue schedules the deletion of url without blocking. Empty URLs are ignored.
func (j *Janitor) Enqueue(ctx context.Context, url string, kind Kind) error {
	if strings.TrimSpace(url) == "" {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return errJanitorClosed
	}

	select {
	case j.jobs <- deleteJob{url: url, kind: kind}:
		return nil
	default:
		j.logger.Warn("asset janitor queue full, dropping delete", slog.String("url", url), slog.String("kind", string(kind)))
		return errJanitorQueueFull
	}
}

// Shutdown stops accepting work and waits for queued deletes to finish.
func (j *Janitor) Shutdown(ctx context.Context) error {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.jobs)
	}
	j.mu.Unlock()

	done := make(chan struct{})
	go func() {
		j.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (j *Janitor) worker() {
	defer j.wg.Done()

	for job := range j.jobs {
		j.handle(job)
	}
}

func (j *Janitor) handle(job deleteJob) {
	if j.deleter == nil {
		j.logger.Error("asset janitor missing deleter", slog.String("url", job.url))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.deleter.Delete(ctx, job.url, job.kind); err != nil {
		j.logger.Error("asset delete failed", slog.String("url", job.url), slog.String("kind", string(job.kind)), slog.Any("error", err))
		return
	}
	j.logger.Info("asset deleted", slog.String("url", job.url), slog.String("kind", string(job.kind)))
}
