package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vinaypatel8092/VideoTube/internal/db"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// CreateComment stores a comment. A missing video or owner yields ErrNotFound.
func (r *PostgresCommentRepository) CreateComment(ctx context.Context, c models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, owner_id, video_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, c.ID, c.OwnerID, c.VideoID, c.Content, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		switch pgCode(err) {
		case codeForeignKeyViolation:
			return ErrNotFound
		case codeUniqueViolation:
			return ErrConflict
		}
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// FindComment loads a comment by identifier.
func (r *PostgresCommentRepository) FindComment(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var c models.Comment
	err = conn.QueryRow(ctx, `
        SELECT id, owner_id, video_id, content, created_at, updated_at
        FROM comments
        WHERE id = $1
    `, id).Scan(&c.ID, &c.OwnerID, &c.VideoID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}

	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

// UpdateComment replaces the content of a comment.
func (r *PostgresCommentRepository) UpdateComment(ctx context.Context, c models.Comment) error {
	return execAffectingOne(ctx, r.pool, "update comment", `
        UPDATE comments
        SET content = $2, updated_at = $3
        WHERE id = $1
    `, c.ID, c.Content, c.UpdatedAt)
}

// DeleteComment removes a comment and the likes attached to it.
func (r *PostgresCommentRepository) DeleteComment(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.pool, "delete comment", `DELETE FROM comments WHERE id = $1`, id)
}

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

// CreateTweet stores a tweet.
func (r *PostgresTweetRepository) CreateTweet(ctx context.Context, t models.Tweet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tweets (id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, t.ID, t.OwnerID, t.Content, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		switch pgCode(err) {
		case codeForeignKeyViolation:
			return ErrNotFound
		case codeUniqueViolation:
			return ErrConflict
		}
		return fmt.Errorf("insert tweet: %w", err)
	}

	return nil
}

// FindTweet loads a tweet by identifier.
func (r *PostgresTweetRepository) FindTweet(ctx context.Context, id string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var t models.Tweet
	err = conn.QueryRow(ctx, `
        SELECT id, owner_id, content, created_at, updated_at
        FROM tweets
        WHERE id = $1
    `, id).Scan(&t.ID, &t.OwnerID, &t.Content, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tweet{}, ErrNotFound
		}
		return models.Tweet{}, fmt.Errorf("select tweet: %w", err)
	}

	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

// UpdateTweet replaces the content of a tweet.
func (r *PostgresTweetRepository) UpdateTweet(ctx context.Context, t models.Tweet) error {
	return execAffectingOne(ctx, r.pool, "update tweet", `
        UPDATE tweets
        SET content = $2, updated_at = $3
        WHERE id = $1
    `, t.ID, t.Content, t.UpdatedAt)
}

// DeleteTweet removes a tweet and the likes attached to it.
func (r *PostgresTweetRepository) DeleteTweet(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.pool, "delete tweet", `DELETE FROM tweets WHERE id = $1`, id)
}

// execAffectingOne runs a statement that must touch exactly one row.
func execAffectingOne(ctx context.Context, pool db.Pool, op, query string, args ...any) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
