// Package engagement implements the presence-only relations between users and
// content (likes and subscriptions) and the flip operation that maintains them.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
	"github.com/vinaypatel8092/VideoTube/internal/metrics"
	"github.com/vinaypatel8092/VideoTube/internal/validation"
)

// Kind names a toggleable relation.
type Kind string

const (
	// KindVideoLike is a user liking a video.
	KindVideoLike Kind = "video-like"
	// KindCommentLike is a user liking a comment.
	KindCommentLike Kind = "comment-like"
	// KindTweetLike is a user liking a tweet.
	KindTweetLike Kind = "tweet-like"
	// KindSubscription is a user subscribing to another user's channel.
	KindSubscription Kind = "subscription"
)

// Valid reports whether k is a known relation kind.
func (k Kind) Valid() bool {
	switch k {
	case KindVideoLike, KindCommentLike, KindTweetLike, KindSubscription:
		return true
	}
	return false
}

func (k Kind) targetName() string {
	switch k {
	case KindVideoLike:
		return "videoId"
	case KindCommentLike:
		return "commentId"
	case KindTweetLike:
		return "tweetId"
	default:
		return "channelId"
	}
}

// State is the outcome of a toggle.
type State string

const (
	// StateAdded means the toggle created the relation.
	StateAdded State = "added"
	// StateRemoved means the toggle deleted an existing relation.
	StateRemoved State = "removed"
)

// Relation is one stored like or subscription.
type Relation struct {
	ID        string    `json:"_id"`
	Kind      Kind      `json:"kind"`
	ActorID   string    `json:"actor"`
	TargetID  string    `json:"target"`
	CreatedAt time.Time `json:"createdAt"`
}

// Result reports what a toggle did. Record is set when the relation exists afterwards.
type Result struct {
	State  State     `json:"state"`
	Record *Relation `json:"record,omitempty"`
}

// Store persists relations. Implementations must guarantee that at most one
// relation exists per (kind, actor, target).
type Store interface {
	// Remove deletes the relation and reports whether one existed.
	Remove(ctx context.Context, kind Kind, actorID, targetID string) (bool, error)
	// Add inserts rel unless an equal relation exists, in which case the stored
	// one is returned with created false.
	Add(ctx context.Context, rel Relation) (stored Relation, created bool, err error)
}

// ErrTargetNotFound is returned by stores when the target of a new relation does not exist.
var ErrTargetNotFound = apperr.NotFound("target not found")

// Toggler flips relations between present and absent.
type Toggler struct {
	store Store
	now   func() time.Time
	newID func() string
}

// NewToggler constructs a Toggler over store.
func NewToggler(store Store) *Toggler {
	if store == nil {
		panic("engagement: store must not be nil")
	}
	return &Toggler{store: store, now: time.Now, newID: uuid.NewString}
}

// Toggle removes the (actor, target) relation if present, otherwise creates it.
// The delete happens first so that concurrent identical calls cannot leave two
// relations behind: the unique constraint absorbs a racing insert, and a racing
// delete simply finds nothing to remove.
func (t *Toggler) Toggle(ctx context.Context, kind Kind, targetID, actorID string) (Result, error) {
	if !kind.Valid() {
		return Result{}, apperr.InvalidArgument(fmt.Sprintf("unknown relation kind %q", kind))
	}
	if err := validation.ID(kind.targetName(), targetID); err != nil {
		return Result{}, err
	}
	if err := validation.ID("userId", actorID); err != nil {
		return Result{}, err
	}
	if kind == KindSubscription && targetID == actorID {
		return Result{}, apperr.InvalidArgument("You cannot subscribe to your own channel")
	}

	ctx, span := logging.StartSpan(ctx, "engagement.toggle")
	defer span.End()
	logger := logging.FromContext(ctx)

	removed, err := t.store.Remove(ctx, kind, actorID, targetID)
	if err != nil {
		return Result{}, fmt.Errorf("remove %s: %w", kind, err)
	}
	if removed {
		metrics.ToggleOutcomes.WithLabelValues(string(kind), string(StateRemoved)).Inc()
		logger.Info("relation removed", "kind", kind, "actor", actorID, "target", targetID)
		return Result{State: StateRemoved}, nil
	}

	rel := Relation{
		ID:        t.newID(),
		Kind:      kind,
		ActorID:   actorID,
		TargetID:  targetID,
		CreatedAt: t.now().UTC(),
	}
	stored, created, err := t.store.Add(ctx, rel)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Result{}, apperr.NotFound(notFoundMessage(kind))
		}
		return Result{}, fmt.Errorf("add %s: %w", kind, err)
	}
	if !created {
		logger.Info("relation already created by a concurrent request", "kind", kind, "actor", actorID, "target", targetID)
	}

	metrics.ToggleOutcomes.WithLabelValues(string(kind), string(StateAdded)).Inc()
	logger.Info("relation added", "kind", kind, "actor", actorID, "target", targetID)
	return Result{State: StateAdded, Record: &stored}, nil
}

func notFoundMessage(kind Kind) string {
	switch kind {
	case KindVideoLike:
		return "Video not found"
	case KindCommentLike:
		return "Comment not found"
	case KindTweetLike:
		return "Tweet not found"
	default:
		return "Channel does not exist"
	}
}
