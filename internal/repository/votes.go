package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"
)

// CastVote records one vote per user per poll. A revote moves the
// user's vote to the new option. Concurrent votes are serialized by the
// unique (poll_id, user_id) constraint.
func (r *Repository) CastVote(ctx context.Context, pollID, optionID, userID int64) (*domain.Vote, error) {
	var isActive bool
	err := r.pool.QueryRow(ctx, `
		SELECT is_active FROM polls WHERE id = $1
	`, pollID).Scan(&isActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidVote
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}
	if !isActive {
		return nil, ErrInvalidVote
	}

	var belongs bool
	err = r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM poll_options WHERE id = $1 AND poll_id = $2)
	`, optionID, pollID).Scan(&belongs)
	if err != nil {
		return nil, fmt.Errorf("failed to query option: %w", err)
	}
	if !belongs {
		return nil, ErrInvalidVote
	}

	vote := domain.Vote{UserID: userID, PollID: pollID, OptionID: optionID}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO votes (user_id, poll_id, option_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (poll_id, user_id) DO UPDATE SET option_id = EXCLUDED.option_id
		RETURNING id, created_at
	`, userID, pollID, optionID).Scan(&vote.ID, &vote.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}

	return &vote, nil
}
