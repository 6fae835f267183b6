package content

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/assets"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
	"github.com/vinaypatel8092/VideoTube/internal/models"
	"github.com/vinaypatel8092/VideoTube/internal/validation"
)

// PublishInput carries a new video and the temporary files received with it.
type PublishInput struct {
	OwnerID       string
	Title         string `validate:"notblank,max=200"`
	Description   string `validate:"notblank,max=5000"`
	VideoPath     string
	ThumbnailPath string
}

// UpdateVideoInput changes the non-empty fields of a video.
type UpdateVideoInput struct {
	ActorID       string
	VideoID       string
	Title         string `validate:"max=200"`
	Description   string `validate:"max=5000"`
	ThumbnailPath string
}

// VideoService manages the lifecycle of uploaded videos.
type VideoService struct {
	videos  VideoStore
	uploads AssetUploader
	cleaner AssetCleaner
	clock
}

// NewVideoService constructs a VideoService.
func NewVideoService(videos VideoStore, uploads AssetUploader, cleaner AssetCleaner) *VideoService {
	if videos == nil || uploads == nil || cleaner == nil {
		panic("content: video service dependencies must not be nil")
	}
	return &VideoService{
		videos:  videos,
		uploads: uploads,
		cleaner: cleaner,
		clock:   clock{now: time.Now, newID: uuid.NewString},
	}
}

// Publish uploads the video and thumbnail and stores a published video owned
// by in.OwnerID. Temporary files are removed on every path.
func (s *VideoService) Publish(ctx context.Context, in PublishInput) (video models.Video, err error) {
	logger := logging.FromContext(ctx)
	if err := validation.ID("userId", in.OwnerID); err != nil {
		assets.RemoveLocal(in.VideoPath, in.ThumbnailPath).Log(logger)
		return models.Video{}, err
	}
	if blank(in.VideoPath) || blank(in.ThumbnailPath) {
		assets.RemoveLocal(in.VideoPath, in.ThumbnailPath).Log(logger)
		return models.Video{}, apperr.InvalidArgument("Video and thumbnail both are required.")
	}
	if err := validation.Struct(in); err != nil {
		assets.RemoveLocal(in.VideoPath, in.ThumbnailPath).Log(logger)
		return models.Video{}, apperr.Wrap(apperr.KindInvalidArgument, "Title and description are required.", err)
	}

	ctx, span := logging.StartSpan(ctx, "content.video.publish")
	defer span.End()

	file, err := s.uploads.Upload(ctx, in.VideoPath, assets.KindVideo)
	if err != nil {
		assets.RemoveLocal(in.ThumbnailPath).Log(logger)
		return models.Video{}, apperr.Wrap(apperr.KindInternal, "Error while uploading video", err)
	}
	thumbnail, err := s.uploads.Upload(ctx, in.ThumbnailPath, assets.KindImage)
	if err != nil {
		s.discard(ctx, file.URL, assets.KindVideo)
		return models.Video{}, apperr.Wrap(apperr.KindInternal, "Error while uploading thumbnail", err)
	}

	now := s.timestamp()
	video = models.Video{
		ID:          s.newID(),
		OwnerID:     in.OwnerID,
		Title:       in.Title,
		Description: in.Description,
		VideoFile:   file.URL,
		Thumbnail:   thumbnail.URL,
		Duration:    file.Duration,
		IsPublished: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.videos.CreateVideo(ctx, video); err != nil {
		s.discard(ctx, file.URL, assets.KindVideo)
		s.discard(ctx, thumbnail.URL, assets.KindImage)
		return models.Video{}, fmt.Errorf("create video: %w", err)
	}

	logger.Info("video published", slog.String("video_id", video.ID), slog.String("owner_id", video.OwnerID))
	return video, nil
}

// Update applies the non-empty fields of in. A replaced thumbnail is deleted
// in the background once the record is saved.
func (s *VideoService) Update(ctx context.Context, in UpdateVideoInput) (models.Video, error) {
	logger := logging.FromContext(ctx)
	video, err := s.owned(ctx, in.ActorID, in.VideoID)
	if err == nil {
		err = validation.Struct(in)
	}
	if err == nil && blank(in.Title) && blank(in.Description) && blank(in.ThumbnailPath) {
		err = apperr.InvalidArgument("At least one of title, description or thumbnail is required")
	}
	if err != nil {
		assets.RemoveLocal(in.ThumbnailPath).Log(logger)
		return models.Video{}, err
	}

	if !blank(in.Title) {
		video.Title = in.Title
	}
	if !blank(in.Description) {
		video.Description = in.Description
	}

	previous := ""
	if !blank(in.ThumbnailPath) {
		thumbnail, err := s.uploads.Upload(ctx, in.ThumbnailPath, assets.KindImage)
		if err != nil {
			return models.Video{}, apperr.Wrap(apperr.KindInternal, "Error while uploading thumbnail.", err)
		}
		previous, video.Thumbnail = video.Thumbnail, thumbnail.URL
	}

	video.UpdatedAt = s.timestamp()
	if err := s.videos.UpdateVideo(ctx, video); err != nil {
		if previous != "" {
			s.discard(ctx, video.Thumbnail, assets.KindImage)
		}
		return models.Video{}, fmt.Errorf("update video: %w", err)
	}

	s.discard(ctx, previous, assets.KindImage)
	return video, nil
}

// Delete removes the video and schedules removal of its stored files.
func (s *VideoService) Delete(ctx context.Context, actorID, videoID string) error {
	video, err := s.owned(ctx, actorID, videoID)
	if err != nil {
		return err
	}
	if err := s.videos.DeleteVideo(ctx, video.ID); err != nil {
		return fmt.Errorf("delete video: %w", notFound(err, "Video not found"))
	}

	s.discard(ctx, video.VideoFile, assets.KindVideo)
	s.discard(ctx, video.Thumbnail, assets.KindImage)
	logging.FromContext(ctx).Info("video deleted", slog.String("video_id", video.ID))
	return nil
}

// TogglePublish flips the published flag and returns the saved video.
func (s *VideoService) TogglePublish(ctx context.Context, actorID, videoID string) (models.Video, error) {
	video, err := s.owned(ctx, actorID, videoID)
	if err != nil {
		return models.Video{}, err
	}
	video.IsPublished = !video.IsPublished
	video.UpdatedAt = s.timestamp()
	if err := s.videos.UpdateVideo(ctx, video); err != nil {
		return models.Video{}, fmt.Errorf("toggle publish: %w", err)
	}
	return video, nil
}

// Watch counts a view of the video by viewerID and moves it to the top of
// the viewer's watch history. Unpublished videos are only visible to their
// owner.
func (s *VideoService) Watch(ctx context.Context, viewerID, videoID string) (models.Video, error) {
	if err := validation.ID("videoId", videoID); err != nil {
		return models.Video{}, err
	}
	if err := validation.ID("userId", viewerID); err != nil {
		return models.Video{}, err
	}

	video, err := s.videos.FindVideo(ctx, videoID)
	if err != nil {
		return models.Video{}, notFound(err, "Video not found")
	}
	if !video.IsPublished && video.OwnerID != viewerID {
		return models.Video{}, apperr.NotFound("Video not found")
	}

	if err := s.videos.RecordView(ctx, s.newID(), video.ID, viewerID, s.timestamp()); err != nil {
		return models.Video{}, fmt.Errorf("record view: %w", notFound(err, "Video not found"))
	}
	video.Views++
	return video, nil
}

func (s *VideoService) owned(ctx context.Context, actorID, videoID string) (models.Video, error) {
	if err := validation.ID("videoId", videoID); err != nil {
		return models.Video{}, err
	}
	video, err := s.videos.FindVideo(ctx, videoID)
	if err != nil {
		return models.Video{}, notFound(err, "Video does not exist")
	}
	if err := authorize(video.OwnerID, actorID, "video"); err != nil {
		return models.Video{}, err
	}
	return video, nil
}

func (s *VideoService) discard(ctx context.Context, url string, kind assets.Kind) {
	if blank(url) {
		return
	}
	if err := s.cleaner.Enqueue(ctx, url, kind); err != nil {
		logging.FromContext(ctx).Warn("schedule asset delete", slog.String("url", url), slog.Any("error", err))
	}
}
