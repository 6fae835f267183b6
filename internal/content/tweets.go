package content

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vinaypatel8092/VideoTube/internal/models"
	"github.com/vinaypatel8092/VideoTube/internal/validation"
)

// TweetService manages short text posts.
type TweetService struct {
	tweets TweetStore
	clock
}

// NewTweetService constructs a TweetService.
func NewTweetService(tweets TweetStore) *TweetService {
	if tweets == nil {
		panic("content: tweet store must not be nil")
	}
	return &TweetService{tweets: tweets, clock: clock{now: time.Now, newID: uuid.NewString}}
}

// Create posts a tweet owned by actorID.
func (s *TweetService) Create(ctx context.Context, actorID, content string) (models.Tweet, error) {
	if err := validation.ID("userId", actorID); err != nil {
		return models.Tweet{}, err
	}
	if err := checkContent(content); err != nil {
		return models.Tweet{}, err
	}

	now := s.timestamp()
	tweet := models.Tweet{ID: s.newID(), OwnerID: actorID, Content: content, CreatedAt: now, UpdatedAt: now}
	if err := s.tweets.CreateTweet(ctx, tweet); err != nil {
		return models.Tweet{}, fmt.Errorf("create tweet: %w", notFound(err, "User does not exist"))
	}
	return tweet, nil
}

// Update replaces the content of a tweet owned by actorID.
func (s *TweetService) Update(ctx context.Context, actorID, tweetID, content string) (models.Tweet, error) {
	if err := checkContent(content); err != nil {
		return models.Tweet{}, err
	}
	tweet, err := s.owned(ctx, actorID, tweetID)
	if err != nil {
		return models.Tweet{}, err
	}

	tweet.Content = content
	tweet.UpdatedAt = s.timestamp()
	if err := s.tweets.UpdateTweet(ctx, tweet); err != nil {
		return models.Tweet{}, fmt.Errorf("update tweet: %w", notFound(err, "Tweet not found"))
	}
	return tweet, nil
}

// Delete removes a tweet owned by actorID.
func (s *TweetService) Delete(ctx context.Context, actorID, tweetID string) error {
	tweet, err := s.owned(ctx, actorID, tweetID)
	if err != nil {
		return err
	}
	if err := s.tweets.DeleteTweet(ctx, tweet.ID); err != nil {
		return fmt.Errorf("delete tweet: %w", notFound(err, "Tweet not found"))
	}
	return nil
}

func (s *TweetService) owned(ctx context.Context, actorID, tweetID string) (models.Tweet, error) {
	if err := validation.ID("tweetId", tweetID); err != nil {
		return models.Tweet{}, err
	}
	tweet, err := s.tweets.FindTweet(ctx, tweetID)
	if err != nil {
		return models.Tweet{}, notFound(err, "Tweet not found")
	}
	if err := authorize(tweet.OwnerID, actorID, "tweet"); err != nil {
		return models.Tweet{}, err
	}
	return tweet, nil
}
