package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vinaypatel8092/VideoTube/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Logger     *slog.Logger
	Sessions   SessionManager
	Accounts   AccountService
	Videos     VideoService
	Comments   CommentService
	Tweets     TweetService
	Playlists  PlaylistService
	Toggler    Toggler
	Queries    Queries
	Limiter    middleware.RateLimiter
	ClientIPs  *middleware.ClientIPResolver
	Cookies    CookieConfig
	Uploads    UploadConfig
	CORSOrigin string
}

// NewRouter builds the HTTP handler serving the API under /api/v1 together
// with /healthz and /metrics.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	users := UserHandler{Sessions: deps.Sessions, Accounts: deps.Accounts, Queries: deps.Queries, Cookies: deps.Cookies, Uploads: deps.Uploads}
	videos := VideoHandler{Videos: deps.Videos, Queries: deps.Queries, Uploads: deps.Uploads}
	comments := CommentHandler{Comments: deps.Comments, Queries: deps.Queries}
	tweets := TweetHandler{Tweets: deps.Tweets, Queries: deps.Queries}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Queries: deps.Queries}
	engagement := EngagementHandler{Toggler: deps.Toggler, Queries: deps.Queries}
	dashboard := DashboardHandler{Queries: deps.Queries}
	health := HealthHandler{}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(deps.CORSOrigin),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", health.Live)
	r.Handle("/metrics", promhttp.Handler())

	limit := func(scope string) func(http.Handler) http.Handler {
		return middleware.LimitByIP(deps.Limiter, deps.ClientIPs, scope, writeError)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", health.Check)
		r.With(limit("register")).Post("/users/register", users.Register)
		r.With(limit("login")).Post("/users/login", users.Login)
		r.With(limit("refresh")).Post("/users/refresh-token", users.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.Sessions, writeError))

			r.Route("/users", func(r chi.Router) {
				r.Post("/logout", users.Logout)
				r.Patch("/password", users.ChangePassword)
				r.Get("/current-user", users.Current)
				r.Patch("/account", users.UpdateAccount)
				r.Patch("/avatar", users.UpdateAvatar)
				r.Patch("/cover-image", users.UpdateCoverImage)
				r.Get("/channel/{username}", users.Channel)
				r.Get("/history", users.History)
			})

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", videos.List)
				r.Post("/", videos.Publish)
				r.Get("/{videoId}", videos.Get)
				r.Patch("/{videoId}", videos.Update)
				r.Delete("/{videoId}", videos.Delete)
				r.Patch("/toggle/publish/{videoId}", videos.TogglePublish)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/{videoId}", comments.List)
				r.Post("/{videoId}", comments.Add)
				r.Patch("/c/{commentId}", comments.Update)
				r.Delete("/c/{commentId}", comments.Delete)
			})

			r.Route("/tweet", func(r chi.Router) {
				r.Post("/", tweets.Create)
				r.Get("/user/{userId}", tweets.ByUser)
				r.Patch("/{tweetId}", tweets.Update)
				r.Delete("/{tweetId}", tweets.Delete)
			})

			r.Route("/playlist", func(r chi.Router) {
				r.Post("/", playlists.Create)
				r.Get("/user/{userId}", playlists.ByUser)
				r.Get("/{playlistId}", playlists.Get)
				r.Patch("/{playlistId}", playlists.Update)
				r.Delete("/{playlistId}", playlists.Delete)
				r.Patch("/add/{videoId}/{playlistId}", playlists.AddVideo)
				r.Patch("/remove/{videoId}/{playlistId}", playlists.RemoveVideo)
			})

			r.Route("/like", func(r chi.Router) {
				r.Post("/video/{videoId}", engagement.LikeVideo)
				r.Post("/comment/{commentId}", engagement.LikeComment)
				r.Post("/tweet/{tweetId}", engagement.LikeTweet)
				r.Get("/videos", engagement.LikedVideos)
			})

			r.Route("/subscription", func(r chi.Router) {
				r.Post("/{channelId}", engagement.Subscribe)
				r.Get("/subscribers/{channelId}", engagement.Subscribers)
				r.Get("/channels/{subscriberId}", engagement.Channels)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashboard.Stats)
				r.Get("/videos", dashboard.Videos)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(r.Context(), w, http.StatusNotFound, nil, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(r.Context(), w, http.StatusMethodNotAllowed, nil, "Method not allowed")
	})
	return r
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
