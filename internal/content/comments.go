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

type textInput struct {
	Content string `validate:"notblank,max=5000"`
}

func checkContent(content string) error {
	if err := validation.Struct(textInput{Content: content}); err != nil {
		return apperr.Wrap(apperr.KindInvalidArgument, "Content is required", err)
	}
	return nil
}

// CommentService manages comments on videos.
type CommentService struct {
	comments CommentStore
	videos   VideoStore
	clock
}

// NewCommentService constructs a CommentService.
func NewCommentService(comments CommentStore, videos VideoStore) *CommentService {
	if comments == nil || videos == nil {
		panic("content: comment service dependencies must not be nil")
	}
	return &CommentService{
		comments: comments,
		videos:   videos,
		clock:    clock{now: time.Now, newID: uuid.NewString},
	}
}

// Add attaches a comment by actorID to the video.
func (s *CommentService) Add(ctx context.Context, actorID, videoID, content string) (models.Comment, error) {
	if err := validation.ID("videoId", videoID); err != nil {
		return models.Comment{}, err
	}
	if err := validation.ID("userId", actorID); err != nil {
		return models.Comment{}, err
	}
	if err := checkContent(content); err != nil {
		return models.Comment{}, err
	}

	if _, err := s.videos.FindVideo(ctx, videoID); err != nil {
		return models.Comment{}, notFound(err, "Video not found")
	}

	now := s.timestamp()
	comment := models.Comment{
		ID:        s.newID(),
		OwnerID:   actorID,
		VideoID:   videoID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", notFound(err, "Video not found"))
	}
	return comment, nil
}

// Update replaces the content of a comment owned by actorID.
func (s *CommentService) Update(ctx context.Context, actorID, commentID, content string) (models.Comment, error) {
	if err := checkContent(content); err != nil {
		return models.Comment{}, err
	}
	comment, err := s.owned(ctx, actorID, commentID)
	if err != nil {
		return models.Comment{}, err
	}

	comment.Content = content
	comment.UpdatedAt = s.timestamp()
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return models.Comment{}, fmt.Errorf("update comment: %w", notFound(err, "Comment not found"))
	}
	return comment, nil
}

// Delete removes a comment owned by actorID.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) error {
	comment, err := s.owned(ctx, actorID, commentID)
	if err != nil {
		return err
	}
	if err := s.comments.DeleteComment(ctx, comment.ID); err != nil {
		return fmt.Errorf("delete comment: %w", notFound(err, "Comment not found"))
	}
	return nil
}

func (s *CommentService) owned(ctx context.Context, actorID, commentID string) (models.Comment, error) {
	if err := validation.ID("commentId", commentID); err != nil {
		return models.Comment{}, err
	}
	comment, err := s.comments.FindComment(ctx, commentID)
	if err != nil {
		return models.Comment{}, notFound(err, "Comment not found")
	}
	if err := authorize(comment.OwnerID, actorID, "comment"); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}
