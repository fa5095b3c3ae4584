package handler

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/auth"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/repository"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type AuthHandler struct {
	users  UserStore
	auth   *auth.Service
	logger logger.Logger
}

func NewAuthHandler(users UserStore, authSvc *auth.Service, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		auth:   authSvc,
		logger: log.WithField("handler", "auth"),
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r *RegisterRequest) validate() error {
	if len(r.Username) < 3 || len(r.Username) > 50 {
		return errors.New("username must be 3 to 50 characters")
	}
	if !usernamePattern.MatchString(r.Username) {
		return errors.New("username may only contain letters, digits, underscore and hyphen")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and signs the new user in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	hashed, err := h.auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Errorf("failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Username, req.Email, hashed)
	switch {
	case errors.Is(err, repository.ErrUsernameTaken), errors.Is(err, repository.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	case err != nil:
		h.logger.Errorf("failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	h.logger.Infof("user %s registered", user.Username)
	h.issueToken(c, http.StatusCreated, user)
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	user, err := h.users.GetUserByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "incorrect username or password"})
		return
	}
	if err != nil {
		h.logger.Errorf("failed to load user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	if !h.auth.CheckPassword(user.HashedPassword, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "incorrect username or password"})
		return
	}

	h.issueToken(c, http.StatusOK, user)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *AuthHandler) issueToken(c *gin.Context, status int, user *domain.User) {
	token, err := h.auth.IssueToken(user.ID)
	if err != nil {
		h.logger.Errorf("failed to issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	c.JSON(status, domain.Token{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}
