package handler

import (
	"context"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/repository"
)

// UserStore is the slice of the persistence layer the auth endpoints
// need.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPassword string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// PollStore is the slice of the persistence layer the poll endpoints
// need.
type PollStore interface {
	CreatePoll(ctx context.Context, creatorID int64, title, description string, options []string) (*domain.PollRecord, error)
	GetPoll(ctx context.Context, pollID int64, viewerID *int64) (*domain.PollRecord, error)
	ListPolls(ctx context.Context, filter repository.PollFilter, viewerID *int64) (*domain.PollPage, error)
	UpdatePoll(ctx context.Context, pollID int64, params repository.PollUpdateParams) error
	DeletePoll(ctx context.Context, pollID int64) error
	CastVote(ctx context.Context, pollID, optionID, userID int64) (*domain.Vote, error)
	ToggleLike(ctx context.Context, pollID, userID int64) (isLiked bool, totalLikes int64, err error)
}

// Notifier is the hub boundary. Handlers call it only after their
// database write has committed.
type Notifier interface {
	NotifyVoteUpdate(ctx context.Context, pollID int64, update domain.VoteUpdate)
	NotifyLikeUpdate(ctx context.Context, pollID int64, update domain.LikeUpdate)
	NotifyPollCreated(ctx context.Context, record domain.PollRecord)
	NotifyPollUpdated(ctx context.Context, pollID int64, record domain.PollRecord)
	NotifyPollDeleted(ctx context.Context, pollID int64)
}
