package repositories

import (
	"context"
	"fmt"
)

// SetRefreshToken overwrites the single active refresh token of a user.
// An empty token clears the session.
func (r *PostgresUserRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET refresh_token = NULLIF($2, '')
        WHERE id = $1
    `, userID, token)
	if err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// RotateRefreshToken swaps current for next only while current is still the
// stored token, so two concurrent refreshes with the same token cannot both win.
func (r *PostgresUserRepository) RotateRefreshToken(ctx context.Context, userID, current, next string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET refresh_token = $3
        WHERE id = $1 AND refresh_token = $2
    `, userID, current, next)
	if err != nil {
		return false, fmt.Errorf("rotate refresh token: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
