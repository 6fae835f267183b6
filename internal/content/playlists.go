package content

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/models"
	"github.com/vinaypatel8092/VideoTube/internal/validation"
)

// PlaylistInput carries the editable fields of a playlist.
type PlaylistInput struct {
	Name        string `validate:"max=150"`
	Description string `validate:"max=5000"`
}

// PlaylistService manages playlists and their entries.
type PlaylistService struct {
	playlists PlaylistStore
	videos    VideoStore
	clock
}

// NewPlaylistService constructs a PlaylistService.
func NewPlaylistService(playlists PlaylistStore, videos VideoStore) *PlaylistService {
	if playlists == nil || videos == nil {
		panic("content: playlist service dependencies must not be nil")
	}
	return &PlaylistService{
		playlists: playlists,
		videos:    videos,
		clock:     clock{now: time.Now, newID: uuid.NewString},
	}
}

// Create stores an empty playlist owned by actorID.
func (s *PlaylistService) Create(ctx context.Context, actorID string, in PlaylistInput) (models.Playlist, error) {
	if err := validation.ID("userId", actorID); err != nil {
		return models.Playlist{}, err
	}
	if blank(in.Name) || blank(in.Description) {
		return models.Playlist{}, apperr.InvalidArgument("Name and Description of playlist are required")
	}
	if err := validation.Struct(in); err != nil {
		return models.Playlist{}, err
	}

	now := s.timestamp()
	playlist := models.Playlist{
		ID:          s.newID(),
		OwnerID:     actorID,
		Name:        in.Name,
		Description: in.Description,
		Videos:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.playlists.CreatePlaylist(ctx, playlist); err != nil {
		return models.Playlist{}, fmt.Errorf("create playlist: %w", notFound(err, "User does not exist"))
	}
	return playlist, nil
}

// Update applies the non-empty fields of in.
func (s *PlaylistService) Update(ctx context.Context, actorID, playlistID string, in PlaylistInput) (models.Playlist, error) {
	if blank(in.Name) && blank(in.Description) {
		return models.Playlist{}, apperr.InvalidArgument("Name and description of playlist are required")
	}
	if err := validation.Struct(in); err != nil {
		return models.Playlist{}, err
	}
	playlist, err := s.owned(ctx, actorID, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}

	if !blank(in.Name) {
		playlist.Name = in.Name
	}
	if !blank(in.Description) {
		playlist.Description = in.Description
	}
	playlist.UpdatedAt = s.timestamp()
	if err := s.playlists.UpdatePlaylist(ctx, playlist); err != nil {
		return models.Playlist{}, fmt.Errorf("update playlist: %w", notFound(err, "Playlist not found"))
	}
	return playlist, nil
}

// Delete removes a playlist owned by actorID. The videos are untouched.
func (s *PlaylistService) Delete(ctx context.Context, actorID, playlistID string) error {
	playlist, err := s.owned(ctx, actorID, playlistID)
	if err != nil {
		return err
	}
	if err := s.playlists.DeletePlaylist(ctx, playlist.ID); err != nil {
		return fmt.Errorf("delete playlist: %w", notFound(err, "Playlist not found"))
	}
	return nil
}

// AddVideo appends videoID to the playlist. A video appears at most once.
func (s *PlaylistService) AddVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error) {
	playlist, err := s.entryTarget(ctx, actorID, playlistID, videoID)
	if err != nil {
		return models.Playlist{}, err
	}
	if contains(playlist.Videos, videoID) {
		return models.Playlist{}, apperr.InvalidArgument("Video already exists in playlist")
	}

	now := s.timestamp()
	if err := s.playlists.AddPlaylistVideo(ctx, s.newID(), playlist.ID, videoID, now); err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindConflict:
			return models.Playlist{}, apperr.InvalidArgument("Video already exists in playlist")
		case apperr.KindNotFound:
			return models.Playlist{}, apperr.NotFound("Video not found")
		}
		return models.Playlist{}, fmt.Errorf("add playlist video: %w", err)
	}

	playlist.Videos = append(playlist.Videos, videoID)
	playlist.UpdatedAt = now
	return playlist, nil
}

// RemoveVideo drops videoID from the playlist.
func (s *PlaylistService) RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error) {
	playlist, err := s.entryTarget(ctx, actorID, playlistID, videoID)
	if err != nil {
		return models.Playlist{}, err
	}

	now := s.timestamp()
	removed, err := s.playlists.RemovePlaylistVideo(ctx, playlist.ID, videoID, now)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("remove playlist video: %w", err)
	}
	if !removed {
		return models.Playlist{}, apperr.InvalidArgument("Video does not exist in playlist")
	}

	kept := make([]string, 0, len(playlist.Videos))
	for _, id := range playlist.Videos {
		if id != videoID {
			kept = append(kept, id)
		}
	}
	playlist.Videos = kept
	playlist.UpdatedAt = now
	return playlist, nil
}

func (s *PlaylistService) entryTarget(ctx context.Context, actorID, playlistID, videoID string) (models.Playlist, error) {
	if err := validation.ID("videoId", videoID); err != nil {
		return models.Playlist{}, err
	}
	playlist, err := s.owned(ctx, actorID, playlistID)
	if err != nil {
		return models.Playlist{}, err
	}
	if _, err := s.videos.FindVideo(ctx, videoID); err != nil {
		return models.Playlist{}, notFound(err, "Video not found")
	}
	return playlist, nil
}

func (s *PlaylistService) owned(ctx context.Context, actorID, playlistID string) (models.Playlist, error) {
	if err := validation.ID("playlistId", playlistID); err != nil {
		return models.Playlist{}, err
	}
	playlist, err := s.playlists.FindPlaylist(ctx, playlistID)
	if err != nil {
		return models.Playlist{}, notFound(err, "Playlist not found")
	}
	if err := authorize(playlist.OwnerID, actorID, "playlist"); err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
