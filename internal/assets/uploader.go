// Package assets moves uploaded media from local temporary files into object
// storage and removes it again when the owning record changes.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
	"github.com/vinaypatel8092/VideoTube/internal/metrics"
)

// Kind classifies an asset; it selects the storage prefix and whether the
// file is probed for a duration.
type Kind string

// Known asset kinds.
const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Asset is the stored form of an uploaded file.
type Asset struct {
	URL      string  `json:"url"`
	Duration float64 `json:"duration"`
}

// ObjectStorage is the remote blob store used for media.
type ObjectStorage interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	// KeyFor maps a public URL produced by Save back to its object key.
	KeyFor(url string) (string, bool)
}

// Prober reports the playback duration of a media file in seconds.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// ErrStorageUnavailable indicates that no object storage is configured.
var ErrStorageUnavailable = errors.New("asset storage unavailable")

// Uploader stores local files remotely.
type Uploader struct {
	storage ObjectStorage
	prober  Prober
	newKey  func(kind Kind, ext string) string
}

// NewUploader constructs an Uploader. prober may be nil, in which case videos
// are stored with a zero duration.
func NewUploader(storage ObjectStorage, prober Prober) *Uploader {
	return &Uploader{storage: storage, prober: prober, newKey: objectKey}
}

func objectKey(kind Kind, ext string) string {
	return fmt.Sprintf("%ss/%s%s", kind, uuid.NewString(), strings.ToLower(ext))
}

// Upload stores the file at localPath under a fresh key and returns its
// public URL (and duration for videos). The local file is removed afterwards
// whether or not the upload succeeded.
func (u *Uploader) Upload(ctx context.Context, localPath string, kind Kind) (asset Asset, err error) {
	logger := logging.FromContext(ctx)
	defer func() {
		RemoveLocal(localPath).Log(logger)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.AssetOperations.WithLabelValues("upload", string(kind), outcome).Inc()
	}()

	if strings.TrimSpace(localPath) == "" {
		return Asset{}, apperr.InvalidArgument(fmt.Sprintf("%s file is required", kind))
	}
	if u == nil || u.storage == nil {
		return Asset{}, ErrStorageUnavailable
	}

	if kind == KindVideo && u.prober != nil {
		duration, probeErr := u.prober.Duration(ctx, localPath)
		if probeErr != nil {
			logger.Warn("probe video duration", slog.String("path", localPath), slog.Any("error", probeErr))
		} else {
			asset.Duration = duration
		}
	}

	f, err := os.Open(localPath)
	if err != nil {
		return Asset{}, fmt.Errorf("open %s: %w", kind, err)
	}
	defer f.Close()

	key := u.newKey(kind, filepath.Ext(localPath))
	url, err := u.storage.Save(ctx, key, f)
	if err != nil {
		return Asset{}, fmt.Errorf("upload %s: %w", kind, err)
	}

	asset.URL = url
	logger.Info("asset uploaded", slog.String("kind", string(kind)), slog.String("key", key))
	return asset, nil
}

// Delete removes the object behind url. Empty URLs and URLs that do not
// belong to the configured storage are ignored.
func (u *Uploader) Delete(ctx context.Context, url string, kind Kind) (err error) {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	if u == nil || u.storage == nil {
		return ErrStorageUnavailable
	}

	key, ok := u.storage.KeyFor(url)
	if !ok {
		logging.FromContext(ctx).Warn("asset url outside storage", slog.String("url", url))
		return nil
	}

	err = u.storage.Delete(ctx, key)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		err = fmt.Errorf("delete %s: %w", kind, err)
	}
	metrics.AssetOperations.WithLabelValues("delete", string(kind), outcome).Inc()
	return err
}
