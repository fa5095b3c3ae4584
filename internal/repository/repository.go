package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")
	// ErrInvalidVote covers a missing poll, an inactive poll, and an
	// option that does not belong to the poll.
	ErrInvalidVote = errors.New("invalid poll or option, or poll is inactive")
)

// Repository is the Postgres persistence layer. Every state-changing
// operation commits before the caller broadcasts anything, so the hub
// only ever announces durable state.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}
