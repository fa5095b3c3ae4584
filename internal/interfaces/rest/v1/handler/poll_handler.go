package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type PollHandler struct {
	polls    PollStore
	notifier Notifier
	logger   logger.Logger
}

func NewPollHandler(polls PollStore, notifier Notifier, log logger.Logger) *PollHandler {
	return &PollHandler{
		polls:    polls,
		notifier: notifier,
		logger:   log.WithField("handler", "poll"),
	}
}

type CreatePollRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Options     []string `json:"options" binding:"required"`
}

func (r *CreatePollRequest) validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if len(r.Title) < 3 || len(r.Title) > 200 {
		return errors.New("title must be 3 to 200 characters")
	}
	if len(r.Description) > 1000 {
		return errors.New("description must be at most 1000 characters")
	}
	if len(r.Options) < 2 || len(r.Options) > 10 {
		return errors.New("polls need 2 to 10 options")
	}

	seen := make(map[string]struct{}, len(r.Options))
	for i, option := range r.Options {
		option = strings.TrimSpace(option)
		if option == "" || len(option) > 200 {
			return errors.New("options must be 1 to 200 characters")
		}
		key := strings.ToLower(option)
		if _, dup := seen[key]; dup {
			return errors.New("options must be unique")
		}
		seen[key] = struct{}{}
		r.Options[i] = option
	}
	return nil
}

type UpdatePollRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (r *UpdatePollRequest) validate() error {
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		if len(trimmed) < 3 || len(trimmed) > 200 {
			return errors.New("title must be 3 to 200 characters")
		}
		r.Title = &trimmed
	}
	if r.Description != nil && len(*r.Description) > 1000 {
		return errors.New("description must be at most 1000 characters")
	}
	return nil
}

// Create makes a new poll and announces it to every connected client.
func (h *PollHandler) Create(c *gin.Context) {
	var req CreatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user := currentUser(c)
	record, err := h.polls.CreatePoll(c.Request.Context(), user.ID, req.Title, req.Description, req.Options)
	if err != nil {
		h.logger.Errorf("failed to create poll: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	h.logger.Infof("poll %d created by user %d", record.ID, user.ID)
	h.notifier.NotifyPollCreated(c.Request.Context(), neutralView(record))

	c.JSON(http.StatusCreated, record)
}

// List returns one page of polls. Without explicit filters only active
// polls are listed.
func (h *PollHandler) List(c *gin.Context) {
	filter, err := parsePollFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	page, err := h.polls.ListPolls(c.Request.Context(), filter, currentUserID(c))
	if err != nil {
		h.logger.Errorf("failed to list polls: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// Get returns one poll with viewer-relative vote and like state.
func (h *PollHandler) Get(c *gin.Context) {
	pollID, ok := pollIDParam(c)
	if !ok {
		return
	}

	record, err := h.polls.GetPoll(c.Request.Context(), pollID, currentUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "poll not found"})
		return
	}
	if err != nil {
		h.logger.Errorf("failed to load poll: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Update lets the creator change title, description or active state,
// then announces the new state to every connected client.
func (h *PollHandler) Update(c *gin.Context) {
	pollID, ok := pollIDParam(c)
	if !ok {
		return
	}

	var req UpdatePollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	if !h.requireCreator(c, pollID) {
		return
	}

	params := repository.PollUpdateParams{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if err := h.polls.UpdatePoll(c.Request.Context(), pollID, params); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "poll not found"})
			return
		}
		h.logger.Errorf("failed to update poll: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	record, err := h.polls.GetPoll(c.Request.Context(), pollID, currentUserID(c))
	if err != nil {
		h.logger.Errorf("failed to reload poll: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	h.notifier.NotifyPollUpdated(c.Request.Context(), pollID, neutralView(record))

	c.JSON(http.StatusOK, record)
}

// Delete removes the creator's poll and announces the deletion.
func (h *PollHandler) Delete(c *gin.Context) {
	pollID, ok := pollIDParam(c)
	if !ok {
		return
	}

	if !h.requireCreator(c, pollID) {
		return
	}

	if err := h.polls.DeletePoll(c.Request.Context(), pollID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "poll not found"})
			return
		}
		h.logger.Errorf("failed to delete poll: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	h.notifier.NotifyPollDeleted(c.Request.Context(), pollID)

	c.Status(http.StatusNoContent)
}

// requireCreator loads the poll and rejects the request when the
// caller did not create it.
func (h *PollHandler) requireCreator(c *gin.Context, pollID int64) bool {
	record, err := h.polls.GetPoll(c.Request.Context(), pollID, nil)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "poll not found"})
		return false
	}
	if err != nil {
		h.logger.Errorf("failed to load poll: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return false
	}

	if record.CreatorID != currentUser(c).ID {
		c.JSON(http.StatusForbidden, gin.H{"detail": "only the poll creator may do this"})
		return false
	}
	return true
}

func pollIDParam(c *gin.Context) (int64, bool) {
	pollID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || pollID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "poll id must be a positive integer"})
		return 0, false
	}
	return pollID, true
}

func parsePollFilter(c *gin.Context) (repository.PollFilter, error) {
	filter := repository.PollFilter{Page: 1, PageSize: defaultPageSize}

	if v := c.Query("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, errors.New("page must be a positive integer")
		}
		filter.Page = page
	}
	if v := c.Query("page_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 || size > maxPageSize {
			return filter, errors.New("page_size must be between 1 and 100")
		}
		filter.PageSize = size
	}
	if v := c.Query("creator_id"); v != "" {
		creatorID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errors.New("creator_id must be an integer")
		}
		filter.CreatorID = &creatorID
	}
	if v, ok := c.GetQuery("is_active"); ok {
		isActive, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("is_active must be a boolean")
		}
		filter.IsActive = &isActive
	} else if filter.CreatorID == nil {
		active := true
		filter.IsActive = &active
	}

	return filter, nil
}

// neutralView strips the viewer-relative fields so a record built for
// one user can be broadcast to everyone.
func neutralView(record *domain.PollRecord) domain.PollRecord {
	view := *record
	view.UserVoted = false
	view.UserLiked = false
	view.UserVoteOption = nil
	return view
}
