package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// CleanupResult reports what happened to each local file passed to RemoveLocal.
type CleanupResult struct {
	Removed []string
	Missing []string
	Failed  map[string]error
}

// RemoveLocal deletes temporary files. Empty paths are skipped and files that
// are already gone are reported as missing rather than failed.
func RemoveLocal(paths ...string) CleanupResult {
	var result CleanupResult
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		err := os.Remove(p)
		switch {
		case err == nil:
			result.Removed = append(result.Removed, p)
		case errors.Is(err, fs.ErrNotExist):
			result.Missing = append(result.Missing, p)
		default:
			if result.Failed == nil {
				result.Failed = make(map[string]error)
			}
			result.Failed[p] = err
		}
	}
	return result
}

// Err joins the failures, or returns nil when every file was handled.
func (r CleanupResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for p, err := range r.Failed {
		errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
	}
	return errors.Join(errs...)
}

// Log records failures at warn level and successful removals at debug level.
func (r CleanupResult) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for p, err := range r.Failed {
		logger.Warn("remove temporary file", slog.String("path", p), slog.Any("error", err))
	}
	if len(r.Removed) > 0 || len(r.Missing) > 0 {
		logger.Debug("temporary files cleaned", slog.Int("removed", len(r.Removed)), slog.Int("missing", len(r.Missing)))
	}
}
