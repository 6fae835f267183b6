package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaypatel8092/VideoTube/internal/aggregate"
	"github.com/vinaypatel8092/VideoTube/internal/content"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
)

// VideoHandler exposes video endpoints.
type VideoHandler struct {
	Videos  VideoService
	Queries Queries
	Uploads UploadConfig
}

// List handles GET /api/v1/videos. It accepts page, limit, query, sortBy,
// sortType and userId query parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	sort, err := aggregate.VideoSort(q.Get("sortBy"), q.Get("sortType"), false)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	videos, err := h.Queries.AllVideos(ctx, q.Get("query"), q.Get("userId"), sort, aggregate.NewPage(q.Get("page"), q.Get("limit")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, videos, "Videos fetched successfully")
}

// Publish handles POST /api/v1/videos with videoFile and thumbnail uploads.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	form, err := h.Uploads.readForm(w, r, "videoFile", "thumbnail")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	video, err := h.Videos.Publish(ctx, content.PublishInput{
		OwnerID:       user.ID,
		Title:         form.value("title"),
		Description:   form.value("description"),
		VideoPath:     form.file("videoFile"),
		ThumbnailPath: form.file("thumbnail"),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("video published", "videoId", video.ID, "duration", video.Duration)
	respondJSON(ctx, w, http.StatusCreated, video, "Video Published Successfully")
}

// Get handles GET /api/v1/videos/{videoId}. Fetching a video counts as a
// view and records it in the caller's watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	videoID := chi.URLParam(r, "videoId")
	if _, err := h.Videos.Watch(ctx, user.ID, videoID); err != nil {
		respondError(ctx, w, err)
		return
	}
	video, err := h.Queries.VideoByID(ctx, videoID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, video, "Video fetched successfully")
}

// Update handles PATCH /api/v1/videos/{videoId}. Title, description and an
// optional thumbnail upload may be changed.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	form, err := h.Uploads.readForm(w, r, "thumbnail")
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	video, err := h.Videos.Update(ctx, content.UpdateVideoInput{
		ActorID:       user.ID,
		VideoID:       chi.URLParam(r, "videoId"),
		Title:         form.value("title"),
		Description:   form.value("description"),
		ThumbnailPath: form.file("thumbnail"),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, video, "Video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{videoId}.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Videos.Delete(ctx, user.ID, chi.URLParam(r, "videoId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, struct{}{}, "Video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/toggle/publish/{videoId}.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	video, err := h.Videos.TogglePublish(ctx, user.ID, chi.URLParam(r, "videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, video, "Publish status updated successfully")
}
