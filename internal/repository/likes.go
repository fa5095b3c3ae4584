package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ToggleLike flips the user's like on a poll and returns the new state
// and the poll's total like count.
func (r *Repository) ToggleLike(ctx context.Context, pollID, userID int64) (isLiked bool, totalLikes int64, err error) {
	var exists bool
	err = r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM polls WHERE id = $1)
	`, pollID).Scan(&exists)
	if err != nil {
		return false, 0, fmt.Errorf("failed to query poll: %w", err)
	}
	if !exists {
		return false, 0, ErrNotFound
	}

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM likes WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to remove like: %w", err)
	}

	if tag.RowsAffected() == 0 {
		_, err = r.pool.Exec(ctx, `
			INSERT INTO likes (user_id, poll_id) VALUES ($1, $2)
			ON CONFLICT (poll_id, user_id) DO NOTHING
		`, userID, pollID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return false, 0, fmt.Errorf("failed to add like: %w", err)
		}
		isLiked = true
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM likes WHERE poll_id = $1
	`, pollID).Scan(&totalLikes)
	if err != nil {
		return false, 0, fmt.Errorf("failed to count likes: %w", err)
	}

	return isLiked, totalLikes, nil
}
