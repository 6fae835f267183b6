package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaypatel8092/VideoTube/internal/content"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

// PlaylistHandler exposes playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistService
	Queries   Queries
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (p playlistRequest) input() content.PlaylistInput {
	return content.PlaylistInput{Name: p.Name, Description: p.Description}
}

// Create handles POST /api/v1/playlist.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	playlist, err := h.Playlists.Create(ctx, user.ID, req.input())
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, playlist, "Playlist created successfully")
}

// ByUser handles GET /api/v1/playlist/user/{userId}.
func (h PlaylistHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlists, err := h.Queries.UserPlaylists(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, playlists, "User playlists fetched successfully")
}

// Get handles GET /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, err := h.Queries.PlaylistByID(ctx, chi.URLParam(r, "playlistId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, playlist, "Playlist fetched successfully")
}

// Update handles PATCH /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	playlist, err := h.Playlists.Update(ctx, user.ID, chi.URLParam(r, "playlistId"), req.input())
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, playlist, "Playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlist/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Playlists.Delete(ctx, user.ID, chi.URLParam(r, "playlistId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, struct{}{}, "Playlist deleted successfully")
}

// AddVideo handles PATCH /api/v1/playlist/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	h.changeEntry(w, r, h.Playlists.AddVideo, "Video added to playlist successfully")
}

// RemoveVideo handles PATCH /api/v1/playlist/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	h.changeEntry(w, r, h.Playlists.RemoveVideo, "Video removed successfully from playlist")
}

type entryChange func(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error)

func (h PlaylistHandler) changeEntry(w http.ResponseWriter, r *http.Request, change entryChange, message string) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	playlist, err := change(ctx, user.ID, chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, playlist, message)
}
