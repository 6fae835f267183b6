// Package content implements the ownership-checked mutations of videos,
// comments, tweets and playlists.
package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/assets"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

// VideoStore persists videos and their views.
type VideoStore interface {
	CreateVideo(ctx context.Context, video models.Video) error
	FindVideo(ctx context.Context, id string) (models.Video, error)
	UpdateVideo(ctx context.Context, video models.Video) error
	DeleteVideo(ctx context.Context, id string) error
	RecordView(ctx context.Context, entryID, videoID, viewerID string, at time.Time) error
}

// CommentStore persists comments.
type CommentStore interface {
	CreateComment(ctx context.Context, c models.Comment) error
	FindComment(ctx context.Context, id string) (models.Comment, error)
	UpdateComment(ctx context.Context, c models.Comment) error
	DeleteComment(ctx context.Context, id string) error
}

// TweetStore persists tweets.
type TweetStore interface {
	CreateTweet(ctx context.Context, t models.Tweet) error
	FindTweet(ctx context.Context, id string) (models.Tweet, error)
	UpdateTweet(ctx context.Context, t models.Tweet) error
	DeleteTweet(ctx context.Context, id string) error
}

// PlaylistStore persists playlists and their entries. AddPlaylistVideo
// returns apperr.ErrConflict for a duplicate entry and apperr.ErrNotFound when
// the video does not exist.
type PlaylistStore interface {
	CreatePlaylist(ctx context.Context, p models.Playlist) error
	FindPlaylist(ctx context.Context, id string) (models.Playlist, error)
	UpdatePlaylist(ctx context.Context, p models.Playlist) error
	DeletePlaylist(ctx context.Context, id string) error
	AddPlaylistVideo(ctx context.Context, entryID, playlistID, videoID string, at time.Time) error
	RemovePlaylistVideo(ctx context.Context, playlistID, videoID string, at time.Time) (bool, error)
}

// AssetUploader moves a local temporary file into object storage.
type AssetUploader interface {
	Upload(ctx context.Context, localPath string, kind assets.Kind) (assets.Asset, error)
}

// AssetCleaner schedules the removal of a stored asset.
type AssetCleaner interface {
	Enqueue(ctx context.Context, url string, kind assets.Kind) error
}

type clock struct {
	now   func() time.Time
	newID func() string
}

func (c clock) timestamp() time.Time { return c.now().UTC() }

// authorize reports Forbidden unless actorID owns the resource.
func authorize(ownerID, actorID, noun string) error {
	if ownerID != actorID {
		return apperr.Forbidden(fmt.Sprintf("You are not the owner of this %s", noun))
	}
	return nil
}

// notFound replaces a store miss with a client-facing message and passes
// other errors through.
func notFound(err error, message string) error {
	if apperr.KindOf(err) == apperr.KindNotFound {
		return apperr.NotFound(message)
	}
	return err
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
