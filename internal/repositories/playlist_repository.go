package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vinaypatel8092/VideoTube/internal/db"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for playlists.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

// CreatePlaylist stores an empty playlist.
func (r *PostgresPlaylistRepository) CreatePlaylist(ctx context.Context, p models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, p.ID, p.OwnerID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		switch pgCode(err) {
		case codeForeignKeyViolation:
			return ErrNotFound
		case codeUniqueViolation:
			return ErrConflict
		}
		return fmt.Errorf("insert playlist: %w", err)
	}

	return nil
}

// FindPlaylist loads a playlist with its video identifiers in insertion order.
func (r *PostgresPlaylistRepository) FindPlaylist(ctx context.Context, id string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var p models.Playlist
	err = conn.QueryRow(ctx, `
        SELECT id, owner_id, name, description, created_at, updated_at
        FROM playlists
        WHERE id = $1
    `, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT video_id
        FROM playlist_videos
        WHERE playlist_id = $1
        ORDER BY added_at, id
    `, id)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	p.Videos = []string{}
	for rows.Next() {
		var videoID string
		if err := rows.Scan(&videoID); err != nil {
			return models.Playlist{}, fmt.Errorf("scan playlist video: %w", err)
		}
		p.Videos = append(p.Videos, videoID)
	}
	if err := rows.Err(); err != nil {
		return models.Playlist{}, fmt.Errorf("iterate playlist videos: %w", err)
	}

	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// UpdatePlaylist persists the name and description of a playlist.
func (r *PostgresPlaylistRepository) UpdatePlaylist(ctx context.Context, p models.Playlist) error {
	return execAffectingOne(ctx, r.pool, "update playlist", `
        UPDATE playlists
        SET name = $2, description = $3, updated_at = $4
        WHERE id = $1
    `, p.ID, p.Name, p.Description, p.UpdatedAt)
}

// DeletePlaylist removes a playlist and its entries.
func (r *PostgresPlaylistRepository) DeletePlaylist(ctx context.Context, id string) error {
	return execAffectingOne(ctx, r.pool, "delete playlist", `DELETE FROM playlists WHERE id = $1`, id)
}

// AddPlaylistVideo appends a video. An existing entry yields ErrConflict and a
// missing video or playlist yields ErrNotFound.
func (r *PostgresPlaylistRepository) AddPlaylistVideo(ctx context.Context, entryID, playlistID, videoID string, at time.Time) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
            INSERT INTO playlist_videos (id, playlist_id, video_id, added_at)
            VALUES ($1, $2, $3, $4)
        `, entryID, playlistID, videoID, at)
		if err != nil {
			switch pgCode(err) {
			case codeUniqueViolation:
				return ErrConflict
			case codeForeignKeyViolation:
				return ErrNotFound
			}
			return fmt.Errorf("insert playlist video: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE playlists SET updated_at = $2 WHERE id = $1`, playlistID, at); err != nil {
			return fmt.Errorf("touch playlist: %w", err)
		}
		return nil
	})
}

// RemovePlaylistVideo deletes an entry and reports whether it existed.
func (r *PostgresPlaylistRepository) RemovePlaylistVideo(ctx context.Context, playlistID, videoID string, at time.Time) (bool, error) {
	var removed bool
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
            DELETE FROM playlist_videos
            WHERE playlist_id = $1 AND video_id = $2
        `, playlistID, videoID)
		if err != nil {
			return fmt.Errorf("delete playlist video: %w", err)
		}
		removed = tag.RowsAffected() > 0
		if !removed {
			return nil
		}

		if _, err := tx.Exec(ctx, `UPDATE playlists SET updated_at = $2 WHERE id = $1`, playlistID, at); err != nil {
			return fmt.Errorf("touch playlist: %w", err)
		}
		return nil
	})
	return removed, err
}
