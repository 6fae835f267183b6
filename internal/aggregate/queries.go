package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
	"github.com/vinaypatel8092/VideoTube/internal/metrics"
	"github.com/vinaypatel8092/VideoTube/internal/models"
	"github.com/vinaypatel8092/VideoTube/internal/validation"
)

// DocumentReader executes a compiled pipeline and returns one JSON document per row.
type DocumentReader interface {
	QueryDocuments(ctx context.Context, sql string, args ...any) ([][]byte, error)
}

// Engine serves the derived views.
type Engine struct {
	reader DocumentReader
}

// NewEngine constructs an Engine reading through reader.
func NewEngine(reader DocumentReader) *Engine {
	if reader == nil {
		panic("aggregate: document reader is required")
	}
	return &Engine{reader: reader}
}

func run[T any](ctx context.Context, e *Engine, view string, p Pipeline) ([]T, error) {
	ctx, span := logging.StartSpan(ctx, "aggregate."+view)
	defer span.End()

	query, args, err := p.Build()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "", fmt.Errorf("build %s: %w", view, err))
	}

	start := time.Now()
	rows, err := e.reader.QueryDocuments(ctx, query, args...)
	metrics.AggregationDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
	if err != nil {
		logging.FromContext(ctx).Error("aggregation failed", slog.String("view", view), slog.Any("error", err))
		return nil, fmt.Errorf("query %s: %w", view, err)
	}

	out := make([]T, 0, len(rows))
	for _, raw := range rows {
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "", fmt.Errorf("decode %s: %w", view, err))
		}
		out = append(out, doc)
	}
	return out, nil
}

func ownerLookup(local, as string) Lookup {
	return Lookup{
		From:         Users,
		LocalField:   local,
		ForeignField: "_id",
		As:           as,
		Pipeline:     []Stage{Project("username", "fullName", "avatar")},
	}
}

func newestFirst(field string) Stage {
	return Sort(SortKey{Field: field, Type: SortTime, Desc: true})
}

func searchVideos(query string) []Stage {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	return []Stage{Match(Or(Contains("title", query), Contains("description", query)))}
}

// VideoComments returns one page of a video's comments, newest first, each
// with its author embedded. A video without comments yields an empty list.
func (e *Engine) VideoComments(ctx context.Context, videoID string, page Page) ([]models.CommentView, error) {
	if err := validation.ID("videoId", videoID); err != nil {
		return nil, err
	}
	stages := []Stage{
		Match(Eq("video", videoID)),
		ownerLookup("owner", "owner"),
		Unwind("owner"),
		newestFirst("createdAt"),
	}
	stages = append(stages, page.stages()...)
	return run[models.CommentView](ctx, e, "video_comments", From(Comments, stages...))
}

// ChannelStats summarises a channel: video count, total views, total likes on
// its videos, subscriber count and how many channels it subscribes to.
func (e *Engine) ChannelStats(ctx context.Context, userID string) (models.ChannelStats, error) {
	if err := validation.ID("userId", userID); err != nil {
		return models.ChannelStats{}, err
	}
	p := From(Users,
		Match(Eq("_id", userID)),
		Lookup{
			From: Videos, LocalField: "_id", ForeignField: "owner", As: "videos",
			Pipeline: []Stage{
				Lookup{From: Likes, LocalField: "_id", ForeignField: "video", As: "videoLikes", Pipeline: []Stage{Project()}},
				AddFields(Set("videoLikes", Size("videoLikes"))),
				Project("views", "videoLikes"),
			},
		},
		AddFields(
			Set("totalVideos", Size("videos")),
			Set("totalViews", Sum("videos", "views")),
			Set("totalVideoLikes", Sum("videos", "videoLikes")),
		),
		Lookup{From: Subscriptions, LocalField: "_id", ForeignField: "channel", As: "subscribers", Pipeline: []Stage{Project()}},
		Lookup{From: Subscriptions, LocalField: "_id", ForeignField: "subscriber", As: "subscribedTo", Pipeline: []Stage{Project()}},
		AddFields(
			Set("totalSubscribers", Size("subscribers")),
			Set("totalChannelSubscribedTo", Size("subscribedTo")),
		),
		Project("username", "fullName", "avatar", "coverImage",
			"totalVideos", "totalViews", "totalVideoLikes", "totalSubscribers", "totalChannelSubscribedTo"),
	)

	docs, err := run[models.ChannelStats](ctx, e, "channel_stats", p)
	if err != nil {
		return models.ChannelStats{}, err
	}
	if len(docs) == 0 {
		return models.ChannelStats{}, apperr.NotFound("Channel stats not found")
	}
	return docs[0], nil
}

// ChannelVideos lists a channel's videos, published or not, with like counts.
func (e *Engine) ChannelVideos(ctx context.Context, ownerID, query string, sort SortKey, page Page) ([]models.ChannelVideo, error) {
	if err := validation.ID("userId", ownerID); err != nil {
		return nil, err
	}
	stages := []Stage{Match(Eq("owner", ownerID))}
	stages = append(stages, searchVideos(query)...)
	stages = append(stages,
		Lookup{From: Likes, LocalField: "_id", ForeignField: "video", As: "likes", Pipeline: []Stage{Project()}},
		AddFields(Set("likes", Size("likes"))),
		Sort(sort),
	)
	stages = append(stages, page.stages()...)

	docs, err := run[models.ChannelVideo](ctx, e, "channel_videos", From(Videos, stages...))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperr.NotFound("No channel videos found")
	}
	return docs, nil
}

// LikedVideos lists the published videos a user liked, most recently liked first.
func (e *Engine) LikedVideos(ctx context.Context, userID string) ([]models.VideoView, error) {
	if err := validation.ID("userId", userID); err != nil {
		return nil, err
	}
	p := From(Likes,
		Match(And(Eq("likedBy", userID), Exists("video"))),
		Lookup{
			From: Videos, LocalField: "video", ForeignField: "_id", As: "video",
			Pipeline: []Stage{
				Match(Eq("isPublished", true)),
				ownerLookup("owner", "owner"),
				Unwind("owner"),
			},
		},
		Unwind("video"),
		newestFirst("createdAt"),
		ReplaceRoot("video"),
	)

	docs, err := run[models.VideoView](ctx, e, "liked_videos", p)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperr.NotFound("No videos found")
	}
	return docs, nil
}

// ChannelProfile returns the channel page for username as seen by viewerID.
func (e *Engine) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return models.ChannelProfile{}, apperr.InvalidArgument("username is missing")
	}
	p := From(Users,
		Match(Eq("username", username)),
		Lookup{From: Subscriptions, LocalField: "_id", ForeignField: "channel", As: "subscribers", Pipeline: []Stage{Project("subscriber")}},
		Lookup{From: Subscriptions, LocalField: "_id", ForeignField: "subscriber", As: "subscribedTo", Pipeline: []Stage{Project()}},
		AddFields(
			Set("subscribersCount", Size("subscribers")),
			Set("channelsSubscribedToCount", Size("subscribedTo")),
			Set("isSubscribed", ContainsValue("subscribers", "subscriber", viewerID)),
		),
		Project("fullName", "username", "email", "avatar", "coverImage",
			"subscribersCount", "channelsSubscribedToCount", "isSubscribed"),
	)

	docs, err := run[models.ChannelProfile](ctx, e, "channel_profile", p)
	if err != nil {
		return models.ChannelProfile{}, err
	}
	if len(docs) == 0 {
		return models.ChannelProfile{}, apperr.NotFound("Channel does not exist")
	}
	return docs[0], nil
}

type historyDoc struct {
	History []struct {
		Video models.VideoView `json:"video"`
	} `json:"history"`
}

// WatchHistory returns the videos a user watched, most recent first, each with
// its owner embedded.
func (e *Engine) WatchHistory(ctx context.Context, userID string) ([]models.VideoView, error) {
	if err := validation.ID("userId", userID); err != nil {
		return nil, err
	}
	p := From(Users,
		Match(Eq("_id", userID)),
		Lookup{
			From: WatchHistory, LocalField: "_id", ForeignField: "user", As: "history",
			Pipeline: []Stage{
				Lookup{
					From: Videos, LocalField: "video", ForeignField: "_id", As: "video",
					Pipeline: []Stage{ownerLookup("owner", "owner"), First("owner")},
				},
				Unwind("video"),
				newestFirst("watchedAt"),
			},
		},
		Project("history"),
	)

	docs, err := run[historyDoc](ctx, e, "watch_history", p)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperr.NotFound("User does not exist")
	}
	videos := make([]models.VideoView, 0, len(docs[0].History))
	for _, entry := range docs[0].History {
		videos = append(videos, entry.Video)
	}
	return videos, nil
}

// AllVideos lists published videos, optionally restricted to one owner and to
// titles or descriptions containing query. An empty page is not an error.
func (e *Engine) AllVideos(ctx context.Context, query, userID string, sort SortKey, page Page) ([]models.VideoView, error) {
	stages := []Stage{Match(Eq("isPublished", true))}
	if userID != "" {
		if err := validation.ID("userId", userID); err != nil {
			return nil, err
		}
		stages = append(stages, Match(Eq("owner", userID)))
	}
	stages = append(stages, searchVideos(query)...)
	stages = append(stages, ownerLookup("owner", "owner"), First("owner"), Sort(sort))
	stages = append(stages, page.stages()...)
	return run[models.VideoView](ctx, e, "all_videos", From(Videos, stages...))
}

// VideoByID returns one video with its owner, regardless of publication state.
func (e *Engine) VideoByID(ctx context.Context, videoID string) (models.VideoView, error) {
	if err := validation.ID("videoId", videoID); err != nil {
		return models.VideoView{}, err
	}
	p := From(Videos, Match(Eq("_id", videoID)), ownerLookup("owner", "owner"), First("owner"))
	docs, err := run[models.VideoView](ctx, e, "video_by_id", p)
	if err != nil {
		return models.VideoView{}, err
	}
	if len(docs) == 0 {
		return models.VideoView{}, apperr.NotFound("Video not found")
	}
	return docs[0], nil
}

// UserTweets lists a user's tweets, newest first, with like counts.
func (e *Engine) UserTweets(ctx context.Context, userID string) ([]models.TweetView, error) {
	if err := validation.ID("userId", userID); err != nil {
		return nil, err
	}
	p := From(Tweets,
		Match(Eq("owner", userID)),
		ownerLookup("owner", "owner"),
		First("owner"),
		Lookup{From: Likes, LocalField: "_id", ForeignField: "tweet", As: "likes", Pipeline: []Stage{Project()}},
		AddFields(Set("likes", Size("likes"))),
		newestFirst("createdAt"),
	)
	return run[models.TweetView](ctx, e, "user_tweets", p)
}

// UserPlaylists lists a user's playlists, newest first, with video counts.
func (e *Engine) UserPlaylists(ctx context.Context, userID string) ([]models.PlaylistSummary, error) {
	if err := validation.ID("userId", userID); err != nil {
		return nil, err
	}
	p := From(Playlists,
		Match(Eq("owner", userID)),
		Lookup{From: PlaylistVideos, LocalField: "_id", ForeignField: "playlist", As: "videos", Pipeline: []Stage{Project()}},
		AddFields(Set("videoCount", Size("videos"))),
		newestFirst("createdAt"),
		Project("name", "description", "videoCount", "createdAt", "updatedAt"),
	)

	docs, err := run[models.PlaylistSummary](ctx, e, "user_playlists", p)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperr.NotFound("No playlists found")
	}
	return docs, nil
}

// PlaylistByID returns a playlist with its owner and its published videos in
// the order they were added.
func (e *Engine) PlaylistByID(ctx context.Context, playlistID string) (models.PlaylistDetail, error) {
	if err := validation.ID("playlistId", playlistID); err != nil {
		return models.PlaylistDetail{}, err
	}
	p := From(Playlists,
		Match(Eq("_id", playlistID)),
		Lookup{
			From: PlaylistVideos, LocalField: "_id", ForeignField: "playlist", As: "videos",
			Pipeline: []Stage{
				Lookup{
					From: Videos, LocalField: "video", ForeignField: "_id", As: "video",
					Pipeline: []Stage{
						Match(Eq("isPublished", true)),
						ownerLookup("owner", "owner"),
						Unwind("owner"),
					},
				},
				Unwind("video"),
				Sort(SortKey{Field: "addedAt", Type: SortTime}),
				ReplaceRoot("video"),
			},
		},
		ownerLookup("owner", "owner"),
		Unwind("owner"),
	)

	docs, err := run[models.PlaylistDetail](ctx, e, "playlist_by_id", p)
	if err != nil {
		return models.PlaylistDetail{}, err
	}
	if len(docs) == 0 {
		return models.PlaylistDetail{}, apperr.NotFound("Playlist not found")
	}
	if docs[0].Videos == nil {
		docs[0].Videos = []models.VideoView{}
	}
	return docs[0], nil
}

type subscribersDoc struct {
	Subscribers []models.SubscriberEntry `json:"subscribers"`
}

// ChannelSubscribers lists the users subscribed to a channel, newest first.
// A missing channel is NotFound; a channel without subscribers is an empty list.
func (e *Engine) ChannelSubscribers(ctx context.Context, channelID string) ([]models.SubscriberEntry, error) {
	if err := validation.ID("channelId", channelID); err != nil {
		return nil, err
	}
	p := From(Users,
		Match(Eq("_id", channelID)),
		Lookup{
			From: Subscriptions, LocalField: "_id", ForeignField: "channel", As: "subscribers",
			Pipeline: []Stage{
				ownerLookup("subscriber", "subscriber"),
				First("subscriber"),
				newestFirst("createdAt"),
				Project("subscriber", "createdAt"),
			},
		},
		Project("subscribers"),
	)

	docs, err := run[subscribersDoc](ctx, e, "channel_subscribers", p)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperr.NotFound("Channel does not exist")
	}
	if docs[0].Subscribers == nil {
		return []models.SubscriberEntry{}, nil
	}
	return docs[0].Subscribers, nil
}

// SubscribedChannels lists the channels a user subscribes to, newest first.
func (e *Engine) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannelEntry, error) {
	if err := validation.ID("subscriberId", subscriberID); err != nil {
		return nil, err
	}
	p := From(Subscriptions,
		Match(Eq("subscriber", subscriberID)),
		ownerLookup("channel", "channel"),
		First("channel"),
		newestFirst("createdAt"),
		Project("channel", "createdAt"),
	)
	return run[models.SubscribedChannelEntry](ctx, e, "subscribed_channels", p)
}
