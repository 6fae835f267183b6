package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vinaypatel8092/VideoTube/internal/accounts"
	"github.com/vinaypatel8092/VideoTube/internal/aggregate"
	"github.com/vinaypatel8092/VideoTube/internal/assets"
	"github.com/vinaypatel8092/VideoTube/internal/auth"
	"github.com/vinaypatel8092/VideoTube/internal/content"
	"github.com/vinaypatel8092/VideoTube/internal/engagement"
	"github.com/vinaypatel8092/VideoTube/internal/middleware"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

type fakeUploader struct {
	mu    sync.Mutex
	kinds []assets.Kind
}

func (f *fakeUploader) Upload(_ context.Context, localPath string, kind assets.Kind) (assets.Asset, error) {
	defer assets.RemoveLocal(localPath)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
	asset := assets.Asset{URL: "https://cdn.test/" + uuid.NewString() + filepath.Ext(localPath)}
	if kind == assets.KindVideo {
		asset.Duration = 12.5
	}
	return asset, nil
}

type fakeCleaner struct {
	mu   sync.Mutex
	urls []string
}

func (f *fakeCleaner) Enqueue(_ context.Context, url string, _ assets.Kind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	return nil
}

// stubQueries serves canned read views and records the arguments it saw.
type stubQueries struct {
	Queries

	video    models.VideoView
	lastPage aggregate.Page
	lastSort aggregate.SortKey
	lastUser string
}

func (s *stubQueries) VideoByID(_ context.Context, videoID string) (models.VideoView, error) {
	v := s.video
	v.ID = videoID
	return v, nil
}

func (s *stubQueries) AllVideos(_ context.Context, _ string, userID string, sort aggregate.SortKey, page aggregate.Page) ([]models.VideoView, error) {
	s.lastUser, s.lastSort, s.lastPage = userID, sort, page
	return []models.VideoView{}, nil
}

func (s *stubQueries) ChannelVideos(_ context.Context, ownerID, _ string, sort aggregate.SortKey, page aggregate.Page) ([]models.ChannelVideo, error) {
	s.lastUser, s.lastSort, s.lastPage = ownerID, sort, page
	return []models.ChannelVideo{}, nil
}

type testServer struct {
	handler  http.Handler
	users    *accounts.MemoryStore
	content  *content.MemoryStore
	likes    *engagement.MemoryStore
	uploader *fakeUploader
	cleaner  *fakeCleaner
	queries  *stubQueries
	uploads  string
}

func newTestServer(t *testing.T, limiter middleware.RateLimiter) *testServer {
	t.Helper()
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	srv := &testServer{
		users:    accounts.NewMemoryStore(),
		content:  content.NewMemoryStore(),
		likes:    engagement.NewMemoryStore(),
		uploader: &fakeUploader{},
		cleaner:  &fakeCleaner{},
		queries:  &stubQueries{},
		uploads:  t.TempDir(),
	}
	srv.handler = NewRouter(Dependencies{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sessions:  auth.NewManager(tokens, srv.users),
		Accounts:  accounts.NewService(srv.users, srv.uploader, srv.cleaner),
		Videos:    content.NewVideoService(srv.content, srv.uploader, srv.cleaner),
		Comments:  content.NewCommentService(srv.content, srv.content),
		Tweets:    content.NewTweetService(srv.content),
		Playlists: content.NewPlaylistService(srv.content, srv.content),
		Toggler:   engagement.NewToggler(srv.likes),
		Queries:   srv.queries,
		Limiter:   limiter,
		Uploads:   UploadConfig{Dir: srv.uploads, MaxBytes: 1 << 20},
	})
	return srv
}

func (s *testServer) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seedUser(t *testing.T, username string) models.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		FullName:     strings.ToUpper(username),
		PasswordHash: hash,
	}
	s.users.Put(user)
	return user
}

func (s *testServer) login(t *testing.T, username string) []*http.Cookie {
	t.Helper()
	rec := s.do(t, jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{"username": username, "password": "password123"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rec.Code, rec.Body.String())
	}
	return rec.Result().Cookies()
}

func (s *testServer) seedVideo(t *testing.T, ownerID string, published bool) models.Video {
	t.Helper()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       "chai aur code",
		Description: "episode one",
		VideoFile:   "https://cdn.test/v.mp4",
		Thumbnail:   "https://cdn.test/t.png",
		IsPublished: published,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.content.CreateVideo(context.Background(), video); err != nil {
		t.Fatalf("create video: %v", err)
	}
	return video
}

func jsonRequest(method, target string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for field, name := range files {
		part, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		if _, err := part.Write([]byte("binary-" + field)); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type envelopeOf[T any] struct {
	StatusCode int    `json:"statusCode"`
	Data       T      `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) envelopeOf[T] {
	t.Helper()
	var env envelopeOf[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if env.StatusCode != rec.Code {
		t.Fatalf("envelope status %d does not match response %d", env.StatusCode, rec.Code)
	}
	return env
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealthcheckEnvelope(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/healthcheck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	env := decodeEnvelope[map[string]string](t, rec)
	if !env.Success || env.Message != "Server is running." || env.Data["status"] != "OK" {
		t.Fatalf("unexpected envelope %+v", env)
	}

	rec = srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	miss := decodeEnvelope[any](t, rec)
	if rec.Code != http.StatusNotFound || miss.Success {
		t.Fatalf("expected failed 404 envelope, got %d %+v", rec.Code, miss)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if env := decodeEnvelope[any](t, rec); env.Success || env.Data != nil {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestRegisterAndSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	req := multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{"fullName": "Chai Code", "email": "Chai@Example.COM", "username": "ChaiCode", "password": "password123"},
		map[string]string{"avatar": "me.PNG"})
	rec := srv.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "refreshToken") {
		t.Fatalf("register response leaks credentials: %s", rec.Body.String())
	}
	registered := decodeEnvelope[models.User](t, rec)
	if registered.Data.Username != "chaicode" || registered.Data.Email != "chai@example.com" || !strings.HasSuffix(registered.Data.Avatar, ".png") {
		t.Fatalf("unexpected user %+v", registered.Data)
	}
	if entries, _ := os.ReadDir(srv.uploads); len(entries) != 0 {
		t.Fatalf("expected spooled uploads to be removed, found %d", len(entries))
	}

	rec = srv.do(t, jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{"email": "Chai@Example.COM", "password": "password123"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d", rec.Code)
	}
	login := decodeEnvelope[loginResponse](t, rec)
	if login.Message != "User logged In Successfully" || login.Data.AccessToken == "" || login.Data.User.ID != registered.Data.ID {
		t.Fatalf("unexpected login envelope %+v", login)
	}
	access := cookieNamed(rec.Result().Cookies(), auth.AccessTokenCookie)
	refresh := cookieNamed(rec.Result().Cookies(), auth.RefreshTokenCookie)
	if access == nil || refresh == nil || !access.HttpOnly || !refresh.HttpOnly {
		t.Fatalf("expected httpOnly session cookies, got %v", rec.Result().Cookies())
	}

	rec = srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil), access)
	if current := decodeEnvelope[models.User](t, rec); rec.Code != http.StatusOK || current.Data.Username != "chaicode" {
		t.Fatalf("current user: %d %+v", rec.Code, current)
	}

	rec = srv.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil), refresh)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200 got %d body %s", rec.Code, rec.Body.String())
	}
	rotated := cookieNamed(rec.Result().Cookies(), auth.RefreshTokenCookie)
	newAccess := cookieNamed(rec.Result().Cookies(), auth.AccessTokenCookie)
	if rotated == nil || rotated.Value == refresh.Value || newAccess == nil {
		t.Fatal("expected a rotated refresh token")
	}

	rec = srv.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil), newAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200 got %d", rec.Code)
	}
	if c := cookieNamed(rec.Result().Cookies(), auth.AccessTokenCookie); c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected access cookie to be cleared, got %+v", c)
	}

	rec = srv.do(t, jsonRequest(http.MethodPost, "/api/v1/users/refresh-token", refreshRequest{RefreshToken: rotated.Value}))
	if env := decodeEnvelope[any](t, rec); rec.Code != http.StatusUnauthorized || env.Message != "Refresh Token is expired or used" {
		t.Fatalf("expected reuse rejection, got %d %+v", rec.Code, env)
	}
}

func TestRegisterRequiresAvatar(t *testing.T) {
	srv := newTestServer(t, nil)
	req := multipartRequest(t, http.MethodPost, "/api/v1/users/register",
		map[string]string{"fullName": "A", "email": "a@example.com", "username": "a", "password": "password123"}, nil)
	rec := srv.do(t, req)
	if env := decodeEnvelope[any](t, rec); rec.Code != http.StatusBadRequest || env.Message != "Avatar file is required" {
		t.Fatalf("unexpected response %d %+v", rec.Code, env)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	srv := newTestServer(t, middleware.NewIPRateLimiter(1, time.Hour, 1, time.Hour))
	srv.seedUser(t, "limited")
	srv.login(t, "limited")

	rec := srv.do(t, jsonRequest(http.MethodPost, "/api/v1/users/login", map[string]string{"username": "limited", "password": "password123"}))
	if env := decodeEnvelope[any](t, rec); rec.Code != http.StatusTooManyRequests || env.Message != "Too many requests, please try again later" {
		t.Fatalf("expected 429, got %d %+v", rec.Code, env)
	}
}

func TestPublishVideoFromMultipart(t *testing.T) {
	srv := newTestServer(t, nil)
	owner := srv.seedUser(t, "creator")
	cookies := srv.login(t, "creator")

	req := multipartRequest(t, http.MethodPost, "/api/v1/videos",
		map[string]string{"title": "Go in practice", "description": "chapter one"},
		map[string]string{"videoFile": "clip.MP4", "thumbnail": "thumb.jpg"})
	rec := srv.do(t, req, cookies...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("publish: expected 201 got %d body %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope[models.Video](t, rec)
	if env.Data.OwnerID != owner.ID || env.Data.Duration != 12.5 || !env.Data.IsPublished {
		t.Fatalf("unexpected video %+v", env.Data)
	}
	if len(srv.uploader.kinds) != 2 {
		t.Fatalf("expected two uploads, got %v", srv.uploader.kinds)
	}
}

func TestUploadOverLimitIsRejected(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.seedUser(t, "big")
	cookies := srv.login(t, "big")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("avatar", "huge.png")
	part.Write(bytes.Repeat([]byte("x"), 2<<20))
	mw.Close()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := srv.do(t, req, cookies...)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestCommentEditByAnotherUserIsForbidden(t *testing.T) {
	srv := newTestServer(t, nil)
	author := srv.seedUser(t, "author")
	srv.seedUser(t, "intruder")
	video := srv.seedVideo(t, author.ID, true)

	rec := srv.do(t, jsonRequest(http.MethodPost, "/api/v1/comments/"+video.ID, contentRequest{Content: "first"}), srv.login(t, "author")...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add comment: %d %s", rec.Code, rec.Body.String())
	}
	comment := decodeEnvelope[models.Comment](t, rec).Data

	rec = srv.do(t, jsonRequest(http.MethodPatch, "/api/v1/comments/c/"+comment.ID, contentRequest{Content: "hijacked"}), srv.login(t, "intruder")...)
	if env := decodeEnvelope[any](t, rec); rec.Code != http.StatusForbidden || env.Message != "You are not the owner of this comment" {
		t.Fatalf("expected 403, got %d %+v", rec.Code, env)
	}
	stored, err := srv.content.FindComment(context.Background(), comment.ID)
	if err != nil || stored.Content != "first" {
		t.Fatalf("comment changed: %+v %v", stored, err)
	}
}

func TestLikeAndSubscriptionToggles(t *testing.T) {
	srv := newTestServer(t, nil)
	viewer := srv.seedUser(t, "viewer")
	channel := srv.seedUser(t, "channel")
	video := srv.seedVideo(t, channel.ID, true)
	cookies := srv.login(t, "viewer")

	for _, want := range []struct {
		status  int
		message string
	}{
		{http.StatusCreated, "Video liked successfully"},
		{http.StatusOK, "Video unliked successfully"},
		{http.StatusCreated, "Video liked successfully"},
	} {
		rec := srv.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/like/video/"+video.ID, nil), cookies...)
		if env := decodeEnvelope[any](t, rec); rec.Code != want.status || env.Message != want.message {
			t.Fatalf("expected %d %q, got %d %+v", want.status, want.message, rec.Code, env)
		}
	}
	if n := srv.likes.Count(engagement.KindVideoLike, viewer.ID, video.ID); n != 1 {
		t.Fatalf("expected one like, got %d", n)
	}

	rec := srv.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/subscription/"+channel.ID, nil), cookies...)
	if env := decodeEnvelope[engagement.Relation](t, rec); rec.Code != http.StatusCreated || env.Message != "Subscribed to channel successfully" || env.Data.TargetID != channel.ID {
		t.Fatalf("unexpected subscribe envelope %+v", env)
	}

	rec = srv.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/subscription/"+viewer.ID, nil), cookies...)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected self-subscription to be rejected, got %d", rec.Code)
	}

	rec = srv.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/like/tweet/not-a-uuid", nil), cookies...)
	if env := decodeEnvelope[any](t, rec); rec.Code != http.StatusBadRequest || env.Message != "Invalid tweetId" {
		t.Fatalf("expected invalid id, got %d %+v", rec.Code, env)
	}
}

func TestGetVideoRecordsView(t *testing.T) {
	srv := newTestServer(t, nil)
	owner := srv.seedUser(t, "owner")
	viewer := srv.seedUser(t, "watcher")
	video := srv.seedVideo(t, owner.ID, true)
	hidden := srv.seedVideo(t, owner.ID, false)
	cookies := srv.login(t, "watcher")

	rec := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+video.ID, nil), cookies...)
	if env := decodeEnvelope[models.VideoView](t, rec); rec.Code != http.StatusOK || env.Data.ID != video.ID {
		t.Fatalf("unexpected response %d %+v", rec.Code, env)
	}
	stored, _ := srv.content.FindVideo(context.Background(), video.ID)
	if stored.Views != 1 {
		t.Fatalf("expected one view, got %d", stored.Views)
	}
	if history := srv.content.History(viewer.ID); len(history) != 1 || history[0] != video.ID {
		t.Fatalf("unexpected history %v", history)
	}

	rec = srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+hidden.ID, nil), cookies...)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected unpublished video to be hidden, got %d", rec.Code)
	}
}

func TestVideoListingParsesPagingAndSort(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.seedUser(t, "lister")
	cookies := srv.login(t, "lister")

	rec := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/videos?page=3&limit=500&sortBy=views&sortType=asc", nil), cookies...)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	if srv.queries.lastPage.Number != 3 || srv.queries.lastPage.Limit != aggregate.MaxLimit {
		t.Fatalf("unexpected page %+v", srv.queries.lastPage)
	}
	if srv.queries.lastSort.Field != "views" || srv.queries.lastSort.Desc {
		t.Fatalf("unexpected sort %+v", srv.queries.lastSort)
	}

	rec = srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/videos?sortBy=likes", nil), cookies...)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected likes sort to be rejected on public listing, got %d", rec.Code)
	}
	rec = srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/videos?sortBy=likes", nil), cookies...)
	if rec.Code != http.StatusOK || srv.queries.lastSort.Field != "likes" {
		t.Fatalf("expected dashboard to sort by likes, got %d %+v", rec.Code, srv.queries.lastSort)
	}
}

func TestPlaylistLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, nil)
	owner := srv.seedUser(t, "curator")
	video := srv.seedVideo(t, owner.ID, true)
	cookies := srv.login(t, "curator")

	rec := srv.do(t, jsonRequest(http.MethodPost, "/api/v1/playlist", playlistRequest{Name: "Go", Description: "all things go"}), cookies...)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create playlist: %d %s", rec.Code, rec.Body.String())
	}
	playlist := decodeEnvelope[models.Playlist](t, rec).Data

	path := "/api/v1/playlist/add/" + video.ID + "/" + playlist.ID
	if rec := srv.do(t, httptest.NewRequest(http.MethodPatch, path, nil), cookies...); rec.Code != http.StatusOK {
		t.Fatalf("add video: %d %s", rec.Code, rec.Body.String())
	}
	rec = srv.do(t, httptest.NewRequest(http.MethodPatch, path, nil), cookies...)
	if env := decodeEnvelope[any](t, rec); rec.Code != http.StatusBadRequest || env.Message != "Video already exists in playlist" {
		t.Fatalf("expected duplicate rejection, got %d %+v", rec.Code, env)
	}

	rec = srv.do(t, httptest.NewRequest(http.MethodDelete, "/api/v1/playlist/"+playlist.ID, nil), cookies...)
	if env := decodeEnvelope[any](t, rec); rec.Code != http.StatusOK || env.Message != "Playlist deleted successfully" {
		t.Fatalf("delete playlist: %d %+v", rec.Code, env)
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" https://a.test, ,https://b.test ")
	if len(got) != 2 || got[0] != "https://a.test" || got[1] != "https://b.test" {
		t.Fatalf("unexpected origins %v", got)
	}
	if got := splitOrigins(""); len(got) != 1 || got[0] != "*" {
		t.Fatalf("expected wildcard default, got %v", got)
	}
}
