package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaypatel8092/VideoTube/internal/aggregate"
)

// CommentHandler exposes comment endpoints.
type CommentHandler struct {
	Comments CommentService
	Queries  Queries
}

type contentRequest struct {
	Content string `json:"content"`
}

// List handles GET /api/v1/comments/{videoId}.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	comments, err := h.Queries.VideoComments(ctx, chi.URLParam(r, "videoId"), aggregate.NewPage(q.Get("page"), q.Get("limit")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, comments, "Video comments fetched successfully")
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	comment, err := h.Comments.Add(ctx, user.ID, chi.URLParam(r, "videoId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, comment, "Comment added successfully")
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	comment, err := h.Comments.Update(ctx, user.ID, chi.URLParam(r, "commentId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, comment, "Comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Comments.Delete(ctx, user.ID, chi.URLParam(r, "commentId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, struct{}{}, "Comment deleted successfully")
}
