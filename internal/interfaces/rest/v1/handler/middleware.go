package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"
)

const userContextKey = "current_user"

// TokenParser verifies a bearer token and returns the user id it was
// issued for.
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// RequireAuth rejects requests without a valid bearer token and puts
// the authenticated user into the gin context.
func RequireAuth(parser TokenParser, users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticate(c, parser, users)
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "could not validate credentials",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth resolves the user when a valid token is present and
// lets the request through either way. Poll reads use it to fill the
// viewer-relative fields.
func OptionalAuth(parser TokenParser, users UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := authenticate(c, parser, users); ok {
			c.Set(userContextKey, user)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, parser TokenParser, users UserStore) (*domain.User, bool) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, false
	}

	userID, err := parser.ParseToken(token)
	if err != nil {
		return nil, false
	}

	user, err := users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil, false
	}

	return user, true
}

// currentUser returns the authenticated user, or nil on routes behind
// OptionalAuth when no token was sent.
func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

// currentUserID is a convenience for the viewer-relative repository
// queries.
func currentUserID(c *gin.Context) *int64 {
	user := currentUser(c)
	if user == nil {
		return nil
	}
	return &user.ID
}
