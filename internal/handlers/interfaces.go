package handlers

import (
	"context"

	"github.com/vinaypatel8092/VideoTube/internal/accounts"
	"github.com/vinaypatel8092/VideoTube/internal/aggregate"
	"github.com/vinaypatel8092/VideoTube/internal/auth"
	"github.com/vinaypatel8092/VideoTube/internal/content"
	"github.com/vinaypatel8092/VideoTube/internal/engagement"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

// SessionManager drives login, token refresh, logout and password changes,
// and resolves access tokens for the authentication middleware.
type SessionManager interface {
	Login(ctx context.Context, in auth.LoginInput) (auth.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ResolveIdentity(ctx context.Context, accessToken string) (models.User, error)
}

// AccountService registers users and edits their profiles.
type AccountService interface {
	Register(ctx context.Context, in accounts.RegisterInput) (models.User, error)
	UpdateAccount(ctx context.Context, userID string, in accounts.AccountInput) (models.User, error)
	UpdateAvatar(ctx context.Context, userID, localPath string) (models.User, error)
	UpdateCoverImage(ctx context.Context, userID, localPath string) (models.User, error)
}

// VideoService manages uploaded videos.
type VideoService interface {
	Publish(ctx context.Context, in content.PublishInput) (models.Video, error)
	Update(ctx context.Context, in content.UpdateVideoInput) (models.Video, error)
	Delete(ctx context.Context, actorID, videoID string) error
	TogglePublish(ctx context.Context, actorID, videoID string) (models.Video, error)
	Watch(ctx context.Context, viewerID, videoID string) (models.Video, error)
}

// CommentService manages comments on videos.
type CommentService interface {
	Add(ctx context.Context, actorID, videoID, content string) (models.Comment, error)
	Update(ctx context.Context, actorID, commentID, content string) (models.Comment, error)
	Delete(ctx context.Context, actorID, commentID string) error
}

// TweetService manages tweets.
type TweetService interface {
	Create(ctx context.Context, actorID, content string) (models.Tweet, error)
	Update(ctx context.Context, actorID, tweetID, content string) (models.Tweet, error)
	Delete(ctx context.Context, actorID, tweetID string) error
}

// PlaylistService manages playlists.
type PlaylistService interface {
	Create(ctx context.Context, actorID string, in content.PlaylistInput) (models.Playlist, error)
	Update(ctx context.Context, actorID, playlistID string, in content.PlaylistInput) (models.Playlist, error)
	Delete(ctx context.Context, actorID, playlistID string) error
	AddVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error)
}

// Toggler flips likes and subscriptions.
type Toggler interface {
	Toggle(ctx context.Context, kind engagement.Kind, targetID, actorID string) (engagement.Result, error)
}

// Queries serves the derived read views.
type Queries interface {
	VideoComments(ctx context.Context, videoID string, page aggregate.Page) ([]models.CommentView, error)
	ChannelStats(ctx context.Context, userID string) (models.ChannelStats, error)
	ChannelVideos(ctx context.Context, ownerID, query string, sort aggregate.SortKey, page aggregate.Page) ([]models.ChannelVideo, error)
	LikedVideos(ctx context.Context, userID string) ([]models.VideoView, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.VideoView, error)
	AllVideos(ctx context.Context, query, userID string, sort aggregate.SortKey, page aggregate.Page) ([]models.VideoView, error)
	VideoByID(ctx context.Context, videoID string) (models.VideoView, error)
	UserTweets(ctx context.Context, userID string) ([]models.TweetView, error)
	UserPlaylists(ctx context.Context, userID string) ([]models.PlaylistSummary, error)
	PlaylistByID(ctx context.Context, playlistID string) (models.PlaylistDetail, error)
	ChannelSubscribers(ctx context.Context, channelID string) ([]models.SubscriberEntry, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.SubscribedChannelEntry, error)
}

var _ Queries = (*aggregate.Engine)(nil)
