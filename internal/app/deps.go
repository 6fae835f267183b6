package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vinaypatel8092/VideoTube/internal/accounts"
	"github.com/vinaypatel8092/VideoTube/internal/aggregate"
	"github.com/vinaypatel8092/VideoTube/internal/assets"
	"github.com/vinaypatel8092/VideoTube/internal/auth"
	"github.com/vinaypatel8092/VideoTube/internal/config"
	"github.com/vinaypatel8092/VideoTube/internal/content"
	"github.com/vinaypatel8092/VideoTube/internal/db"
	"github.com/vinaypatel8092/VideoTube/internal/engagement"
	"github.com/vinaypatel8092/VideoTube/internal/handlers"
	"github.com/vinaypatel8092/VideoTube/internal/middleware"
	"github.com/vinaypatel8092/VideoTube/internal/repositories"
	"github.com/vinaypatel8092/VideoTube/internal/storage"
)

// rateLimitIdleFactor sets how many windows an idle client's limiter is kept.
const rateLimitIdleFactor = 10

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains the asset janitor.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshSecret: cfg.RefreshTokenSecret,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("token service: %w", err)
	}

	clientIPs, err := middleware.NewClientIPResolver(cfg.AuthRateLimit.TrustedProxies)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	objectStore, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("object storage: %w", err)
	}
	guarded := assets.NewBreakerStorage(objectStore, assets.BreakerConfig{
		Failures: cfg.Assets.BreakerFailures,
		Timeout:  cfg.Assets.BreakerTimeout,
	}, logger)
	uploader := assets.NewUploader(guarded, assets.NewFFProbe(cfg.Assets.ProbeTimeout))
	janitor := assets.NewJanitor(uploader, assets.JanitorConfig{
		QueueSize: cfg.Assets.JanitorQueueSize,
		Workers:   cfg.Assets.JanitorWorkers,
	}, logger)

	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)

	deps := handlers.Dependencies{
		Logger:    logger,
		Sessions:  auth.NewManager(tokens, users),
		Accounts:  accounts.NewService(users, uploader, janitor),
		Videos:    content.NewVideoService(videos, uploader, janitor),
		Comments:  content.NewCommentService(repositories.NewPostgresCommentRepository(pool), videos),
		Tweets:    content.NewTweetService(repositories.NewPostgresTweetRepository(pool)),
		Playlists: content.NewPlaylistService(playlists, videos),
		Toggler:   engagement.NewToggler(repositories.NewPostgresEngagementStore(pool)),
		Queries:   aggregate.NewEngine(repositories.NewPostgresDocumentReader(pool)),
		Limiter: middleware.NewIPRateLimiter(
			cfg.AuthRateLimit.Requests,
			cfg.AuthRateLimit.Window,
			cfg.AuthRateLimit.Burst,
			rateLimitIdleFactor*cfg.AuthRateLimit.Window,
		),
		ClientIPs:  clientIPs,
		Cookies:    handlers.CookieConfig{Secure: cfg.CookieSecure},
		Uploads:    handlers.UploadConfig{Dir: cfg.UploadDir, MaxBytes: cfg.MaxUploadBytes},
		CORSOrigin: cfg.CORSOrigin,
	}

	return deps, janitor.Shutdown, nil
}
