package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/repository"
)

type VoteHandler struct {
	polls    PollStore
	notifier Notifier
	logger   logger.Logger
}

func NewVoteHandler(polls PollStore, notifier Notifier, log logger.Logger) *VoteHandler {
	return &VoteHandler{
		polls:    polls,
		notifier: notifier,
		logger:   log.WithField("handler", "vote"),
	}
}

type VoteRequest struct {
	OptionID int64 `json:"option_id" binding:"required"`
}

// Vote records the caller's vote. Voting again moves the vote to the
// new option. Subscribers of the poll receive the fresh tallies.
func (h *VoteHandler) Vote(c *gin.Context) {
	pollID, ok := pollIDParam(c)
	if !ok {
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	user := currentUser(c)
	vote, err := h.polls.CastVote(c.Request.Context(), pollID, req.OptionID, user.ID)
	if errors.Is(err, repository.ErrInvalidVote) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if err != nil {
		h.logger.Errorf("failed to cast vote: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	record, err := h.polls.GetPoll(c.Request.Context(), pollID, &user.ID)
	if err != nil {
		h.logger.Errorf("failed to reload poll: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	h.notifier.NotifyVoteUpdate(c.Request.Context(), pollID, domain.VoteUpdate{
		TotalVotes:       record.TotalVotes,
		Options:          record.Options,
		UserID:           user.ID,
		UserVoteOptionID: vote.OptionID,
	})

	c.JSON(http.StatusOK, vote)
}

// Like toggles the caller's like on a poll and tells subscribers the
// new count.
func (h *VoteHandler) Like(c *gin.Context) {
	pollID, ok := pollIDParam(c)
	if !ok {
		return
	}

	user := currentUser(c)
	isLiked, totalLikes, err := h.polls.ToggleLike(c.Request.Context(), pollID, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "poll not found"})
		return
	}
	if err != nil {
		h.logger.Errorf("failed to toggle like: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	h.notifier.NotifyLikeUpdate(c.Request.Context(), pollID, domain.LikeUpdate{
		TotalLikes: totalLikes,
		IsLiked:    isLiked,
		UserID:     user.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"poll_id":     pollID,
		"is_liked":    isLiked,
		"total_likes": totalLikes,
	})
}
