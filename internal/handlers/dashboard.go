package handlers

import (
	"net/http"

	"github.com/vinaypatel8092/VideoTube/internal/aggregate"
)

// DashboardHandler serves the caller's channel statistics.
type DashboardHandler struct {
	Queries Queries
}

// Stats handles GET /api/v1/dashboard/stats.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	stats, err := h.Queries.ChannelStats(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, stats, "Channel Stats retrieved successfully")
}

// Videos handles GET /api/v1/dashboard/videos. Unpublished videos are
// included and sortBy additionally accepts likes.
func (h DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	q := r.URL.Query()
	sort, err := aggregate.VideoSort(q.Get("sortBy"), q.Get("sortType"), true)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	videos, err := h.Queries.ChannelVideos(ctx, user.ID, q.Get("query"), sort, aggregate.NewPage(q.Get("page"), q.Get("limit")))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, videos, "Channel videos fetched successfully")
}
