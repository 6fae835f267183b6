package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// TweetHandler exposes tweet endpoints. A tweet is always owned by the
// authenticated caller.
type TweetHandler struct {
	Tweets  TweetService
	Queries Queries
}

// Create handles POST /api/v1/tweet.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
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
	tweet, err := h.Tweets.Create(ctx, user.ID, req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, tweet, "Tweet created successfully")
}

// ByUser handles GET /api/v1/tweet/user/{userId}.
func (h TweetHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tweets, err := h.Queries.UserTweets(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, tweets, "Tweets fetched successfully")
}

// Update handles PATCH /api/v1/tweet/{tweetId}.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	tweet, err := h.Tweets.Update(ctx, user.ID, chi.URLParam(r, "tweetId"), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, tweet, "Tweet updated successfully")
}

// Delete handles DELETE /api/v1/tweet/{tweetId}.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Tweets.Delete(ctx, user.ID, chi.URLParam(r, "tweetId")); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, struct{}{}, "Tweet deleted successfully")
}
