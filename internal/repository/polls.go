package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"
)

type PollFilter struct {
	Page      int
	PageSize  int
	CreatorID *int64
	IsActive  *bool
}

type PollUpdateParams struct {
	Title       *string
	Description *string
	IsActive    *bool
}

// CreatePoll inserts the poll and its options in one transaction and
// returns the full record as seen by the creator.
func (r *Repository) CreatePoll(ctx context.Context, creatorID int64, title, description string, options []string) (*domain.PollRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var pollID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO polls (title, description, creator_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, title, description, creatorID).Scan(&pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert poll: %w", err)
	}

	for position, text := range options {
		_, err = tx.Exec(ctx, `
			INSERT INTO poll_options (poll_id, text, position)
			VALUES ($1, $2, $3)
		`, pollID, text, position)
		if err != nil {
			return nil, fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit poll: %w", err)
	}

	return r.GetPoll(ctx, pollID, &creatorID)
}

// GetPoll loads the full poll record. The user_* fields are populated
// relative to viewerID when present.
func (r *Repository) GetPoll(ctx context.Context, pollID int64, viewerID *int64) (*domain.PollRecord, error) {
	var record domain.PollRecord
	err := r.pool.QueryRow(ctx, `
		SELECT p.id, p.title, p.description, p.creator_id, u.username, p.created_at, p.is_active
		FROM polls p
		JOIN users u ON u.id = p.creator_id
		WHERE p.id = $1
	`, pollID).Scan(
		&record.ID, &record.Title, &record.Description, &record.CreatorID,
		&record.CreatorUsername, &record.CreatedAt, &record.IsActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query poll: %w", err)
	}

	if err := r.loadPollExtras(ctx, &record, viewerID); err != nil {
		return nil, err
	}

	return &record, nil
}

// ListPolls returns one page of polls, newest first.
func (r *Repository) ListPolls(ctx context.Context, filter PollFilter, viewerID *int64) (*domain.PollPage, error) {
	where := `WHERE ($1::bigint IS NULL OR p.creator_id = $1)
		AND ($2::boolean IS NULL OR p.is_active = $2)`

	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM polls p `+where,
		filter.CreatorID, filter.IsActive,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count polls: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.title, p.description, p.creator_id, u.username, p.created_at, p.is_active
		FROM polls p
		JOIN users u ON u.id = p.creator_id
		`+where+`
		ORDER BY p.created_at DESC
		OFFSET $3 LIMIT $4
	`, filter.CreatorID, filter.IsActive, (filter.Page-1)*filter.PageSize, filter.PageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query polls: %w", err)
	}
	defer rows.Close()

	records := make([]domain.PollRecord, 0, filter.PageSize)
	for rows.Next() {
		var record domain.PollRecord
		err := rows.Scan(
			&record.ID, &record.Title, &record.Description, &record.CreatorID,
			&record.CreatorUsername, &record.CreatedAt, &record.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read polls: %w", err)
	}

	for i := range records {
		if err := r.loadPollExtras(ctx, &records[i], viewerID); err != nil {
			return nil, err
		}
	}

	return &domain.PollPage{
		Polls:      records,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
	}, nil
}

// UpdatePoll applies a partial update. Nil fields are left unchanged.
func (r *Repository) UpdatePoll(ctx context.Context, pollID int64, params PollUpdateParams) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE polls
		SET title = COALESCE($2, title),
		    description = COALESCE($3, description),
		    is_active = COALESCE($4, is_active)
		WHERE id = $1
	`, pollID, params.Title, params.Description, params.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePoll removes the poll; options, votes and likes cascade.
func (r *Repository) DeletePoll(ctx context.Context, pollID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM polls WHERE id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("failed to delete poll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) loadPollExtras(ctx context.Context, record *domain.PollRecord, viewerID *int64) error {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.text, o.position, COUNT(v.id)
		FROM poll_options o
		LEFT JOIN votes v ON v.option_id = o.id
		WHERE o.poll_id = $1
		GROUP BY o.id, o.text, o.position
		ORDER BY o.position
	`, record.ID)
	if err != nil {
		return fmt.Errorf("failed to query options: %w", err)
	}
	defer rows.Close()

	record.Options = record.Options[:0]
	record.TotalVotes = 0
	for rows.Next() {
		var option domain.PollOption
		if err := rows.Scan(&option.ID, &option.Text, &option.Position, &option.VoteCount); err != nil {
			return fmt.Errorf("failed to scan option: %w", err)
		}
		record.TotalVotes += option.VoteCount
		record.Options = append(record.Options, option)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read options: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM likes WHERE poll_id = $1
	`, record.ID).Scan(&record.TotalLikes)
	if err != nil {
		return fmt.Errorf("failed to count likes: %w", err)
	}

	if viewerID == nil {
		return nil
	}

	var optionID int64
	err = r.pool.QueryRow(ctx, `
		SELECT option_id FROM votes WHERE poll_id = $1 AND user_id = $2
	`, record.ID, *viewerID).Scan(&optionID)
	switch {
	case err == nil:
		record.UserVoted = true
		record.UserVoteOption = &optionID
	case errors.Is(err, pgx.ErrNoRows):
		// Viewer has not voted.
	default:
		return fmt.Errorf("failed to query viewer vote: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM likes WHERE poll_id = $1 AND user_id = $2)
	`, record.ID, *viewerID).Scan(&record.UserLiked)
	if err != nil {
		return fmt.Errorf("failed to query viewer like: %w", err)
	}

	return nil
}
