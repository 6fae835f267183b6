package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaypatel8092/VideoTube/internal/engagement"
)

// EngagementHandler exposes like and subscription endpoints.
type EngagementHandler struct {
	Toggler Toggler
	Queries Queries
}

type toggleMessages struct {
	added   string
	removed string
}

var toggleCopy = map[engagement.Kind]toggleMessages{
	engagement.KindVideoLike:    {added: "Video liked successfully", removed: "Video unliked successfully"},
	engagement.KindCommentLike:  {added: "Comment liked successfully", removed: "Comment unliked successfully"},
	engagement.KindTweetLike:    {added: "Tweet liked successfully", removed: "Tweet unliked successfully"},
	engagement.KindSubscription: {added: "Subscribed to channel successfully", removed: "Unsubscribed to channel successfully"},
}

// LikeVideo handles POST /api/v1/like/video/{videoId}.
func (h EngagementHandler) LikeVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, engagement.KindVideoLike, "videoId")
}

// LikeComment handles POST /api/v1/like/comment/{commentId}.
func (h EngagementHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, engagement.KindCommentLike, "commentId")
}

// LikeTweet handles POST /api/v1/like/tweet/{tweetId}.
func (h EngagementHandler) LikeTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, engagement.KindTweetLike, "tweetId")
}

// Subscribe handles POST /api/v1/subscription/{channelId}.
func (h EngagementHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, engagement.KindSubscription, "channelId")
}

func (h EngagementHandler) toggle(w http.ResponseWriter, r *http.Request, kind engagement.Kind, param string) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	result, err := h.Toggler.Toggle(ctx, kind, chi.URLParam(r, param), user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	msgs := toggleCopy[kind]
	if result.State == engagement.StateRemoved || result.Record == nil {
		respondOK(ctx, w, struct{}{}, msgs.removed)
		return
	}
	respondJSON(ctx, w, http.StatusCreated, result.Record, msgs.added)
}

// LikedVideos handles GET /api/v1/like/videos.
func (h EngagementHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	videos, err := h.Queries.LikedVideos(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, videos, "Liked videos fetched successfully")
}

// Subscribers handles GET /api/v1/subscription/subscribers/{channelId}.
func (h EngagementHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subscribers, err := h.Queries.ChannelSubscribers(ctx, chi.URLParam(r, "channelId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, subscribers, "Channel Subscribers retrieved successfully")
}

// Channels handles GET /api/v1/subscription/channels/{subscriberId}.
func (h EngagementHandler) Channels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channels, err := h.Queries.SubscribedChannels(ctx, chi.URLParam(r, "subscriberId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, channels, "Subscribed Channels retrieved successfully")
}
