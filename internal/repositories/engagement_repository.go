package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vinaypatel8092/VideoTube/internal/apperr"
	"github.com/vinaypatel8092/VideoTube/internal/db"
	"github.com/vinaypatel8092/VideoTube/internal/engagement"
)

// PostgresEngagementStore persists likes and subscriptions.
type PostgresEngagementStore struct {
	pool db.Pool
}

// NewPostgresEngagementStore constructs an engagement store backed by PostgreSQL.
func NewPostgresEngagementStore(pool db.Pool) *PostgresEngagementStore {
	return &PostgresEngagementStore{pool: pool}
}

type relationTable struct {
	table  string
	actor  string
	target string
}

func tableFor(kind engagement.Kind) (relationTable, error) {
	switch kind {
	case engagement.KindVideoLike:
		return relationTable{table: "likes", actor: "liked_by", target: "video_id"}, nil
	case engagement.KindCommentLike:
		return relationTable{table: "likes", actor: "liked_by", target: "comment_id"}, nil
	case engagement.KindTweetLike:
		return relationTable{table: "likes", actor: "liked_by", target: "tweet_id"}, nil
	case engagement.KindSubscription:
		return relationTable{table: "subscriptions", actor: "subscriber_id", target: "channel_id"}, nil
	default:
		return relationTable{}, apperr.InvalidArgument(fmt.Sprintf("unknown relation kind %q", kind))
	}
}

// Remove deletes the (actor, target) relation and reports whether it existed.
func (s *PostgresEngagementStore) Remove(ctx context.Context, kind engagement.Kind, actorID, targetID string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, t.table, t.actor, t.target), actorID, targetID)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", kind, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Add inserts rel. When a concurrent request already created the relation the
// stored row is returned with created false.
func (s *PostgresEngagementStore) Add(ctx context.Context, rel engagement.Relation) (engagement.Relation, bool, error) {
	t, err := tableFor(rel.Kind)
	if err != nil {
		return engagement.Relation{}, false, err
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return engagement.Relation{}, false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	insert := fmt.Sprintf(`
        INSERT INTO %s (id, %s, %s, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT DO NOTHING
        RETURNING id, created_at
    `, t.table, t.actor, t.target)

	stored := rel
	err = conn.QueryRow(ctx, insert, rel.ID, rel.ActorID, rel.TargetID, rel.CreatedAt).Scan(&stored.ID, &stored.CreatedAt)
	switch {
	case err == nil:
		stored.CreatedAt = stored.CreatedAt.UTC()
		return stored, true, nil
	case errors.Is(err, pgx.ErrNoRows):
	default:
		switch pgCode(err) {
		case codeForeignKeyViolation:
			return engagement.Relation{}, false, engagement.ErrTargetNotFound
		case codeCheckViolation:
			return engagement.Relation{}, false, apperr.InvalidArgument("You cannot subscribe to your own channel")
		}
		return engagement.Relation{}, false, fmt.Errorf("insert %s: %w", rel.Kind, err)
	}

	var createdAt time.Time
	err = conn.QueryRow(ctx, fmt.Sprintf(`SELECT id, created_at FROM %s WHERE %s = $1 AND %s = $2`, t.table, t.actor, t.target),
		rel.ActorID, rel.TargetID).Scan(&stored.ID, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// removed concurrently after the conflicting insert
			return rel, false, nil
		}
		return engagement.Relation{}, false, fmt.Errorf("select existing %s: %w", rel.Kind, err)
	}
	stored.CreatedAt = createdAt.UTC()
	return stored, false, nil
}

var _ engagement.Store = (*PostgresEngagementStore)(nil)
