package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/auth"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/repository"
)

type fakeUserStore struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[int64]*domain.User)}
}

func (s *fakeUserStore) CreateUser(_ context.Context, username, email, hashedPassword string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return nil, repository.ErrUsernameTaken
		}
		if user.Email == email {
			return nil, repository.ErrEmailTaken
		}
	}

	s.nextID++
	user := &domain.User{
		ID:             s.nextID,
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func newAuthRouter(store *fakeUserStore) (*gin.Engine, *auth.Service) {
	authSvc := auth.NewService("0123456789abcdef0123456789abcdef", time.Hour)
	authHandler := NewAuthHandler(store, authSvc, logger.NewNop())

	router := gin.New()
	group := router.Group("/api/auth")
	group.POST("/register", authHandler.Register)
	group.POST("/login", authHandler.Login)
	group.GET("/me", RequireAuth(authSvc, store), authHandler.Me)
	return router, authSvc
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeUserStore()
	router, _ := newAuthRouter(store)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var token domain.Token
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
	require.NotNil(t, token.User)
	assert.Equal(t, "alice", token.User.Username)

	// Password hashes never leave the server.
	assert.NotContains(t, w.Body.String(), "password")

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"username": "alice",
		"password": "supersecret",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{"short username", gin.H{"username": "ab", "email": "a@b.com", "password": "supersecret"}},
		{"bad username chars", gin.H{"username": "not ok!", "email": "a@b.com", "password": "supersecret"}},
		{"short password", gin.H{"username": "alice", "email": "a@b.com", "password": "short"}},
		{"bad email", gin.H{"username": "alice", "email": "nope", "password": "supersecret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newAuthRouter(newFakeUserStore())

			w := doJSON(t, router, http.MethodPost, "/api/auth/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := newFakeUserStore()
	router, _ := newAuthRouter(store)

	body := gin.H{"username": "alice", "email": "alice@example.com", "password": "supersecret"}
	w := doJSON(t, router, http.MethodPost, "/api/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code)

	body["email"] = "other@example.com"
	w = doJSON(t, router, http.MethodPost, "/api/auth/register", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "username")
}

func TestLoginWrongPassword(t *testing.T) {
	store := newFakeUserStore()
	router, _ := newAuthRouter(store)

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"username": "alice",
		"password": "wrongwrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// An unknown username gets the same answer as a bad password.
	w = doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"username": "mallory",
		"password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	store := newFakeUserStore()
	router, authSvc := newAuthRouter(store)

	w := doJSON(t, router, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	user, err := store.CreateUser(context.Background(), "alice", "alice@example.com", "irrelevant")
	require.NoError(t, err)
	token, err := authSvc.IssueToken(user.ID)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var me domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, user.ID, me.ID)
}

func TestOptionalAuthResolvesUser(t *testing.T) {
	store := newFakeUserStore()
	authSvc := auth.NewService("0123456789abcdef0123456789abcdef", time.Hour)
	user, err := store.CreateUser(context.Background(), "alice", "alice@example.com", "irrelevant")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/whoami", OptionalAuth(authSvc, store), func(c *gin.Context) {
		if id := currentUserID(c); id != nil {
			c.JSON(http.StatusOK, gin.H{"user_id": *id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": nil})
	})

	// Anonymous requests pass through.
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")

	// A garbage token is treated as anonymous, not rejected.
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer junk")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "null")

	token, err := authSvc.IssueToken(user.ID)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1")
}
