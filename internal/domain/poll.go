package domain

import "time"

type Poll struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatorID   int64     `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
}

type PollOption struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Position  int    `json:"position"`
	VoteCount int64  `json:"vote_count"`
}

// PollRecord is the full poll as served to clients and carried in
// poll_created/poll_update events. The user_* fields are relative to
// the requesting user and zero-valued for anonymous requests.
type PollRecord struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	CreatorID       int64        `json:"creator_id"`
	CreatorUsername string       `json:"creator_username"`
	CreatedAt       time.Time    `json:"created_at"`
	IsActive        bool         `json:"is_active"`
	Options         []PollOption `json:"options"`
	TotalVotes      int64        `json:"total_votes"`
	TotalLikes      int64        `json:"total_likes"`
	UserVoted       bool         `json:"user_voted"`
	UserLiked       bool         `json:"user_liked"`
	UserVoteOption  *int64       `json:"user_vote_option_id"`
}

type PollPage struct {
	Polls      []PollRecord `json:"polls"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

type Vote struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PollID    int64     `json:"poll_id"`
	OptionID  int64     `json:"option_id"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteUpdate is the payload of a vote_update event.
type VoteUpdate struct {
	TotalVotes       int64        `json:"total_votes"`
	Options          []PollOption `json:"options"`
	UserID           int64        `json:"user_id"`
	UserVoteOptionID int64        `json:"user_vote_option_id"`
}

// LikeUpdate is the payload of a like_update event.
type LikeUpdate struct {
	TotalLikes int64 `json:"total_likes"`
	IsLiked    bool  `json:"is_liked"`
	UserID     int64 `json:"user_id"`
}
