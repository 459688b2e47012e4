package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/errs"
	"github.com/vidshare/backend/internal/models"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// SessionResolver maps a bearer token to the user it was issued for.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware requires a valid bearer token and loads the caller.
func AuthMiddleware(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, err)
			return
		}

		user, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errs.Unauthorized("Not authorized, no token")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errs.Unauthorized("Not authorized, malformed token")
	}
	return strings.TrimSpace(token), nil
}

// UserID returns the authenticated caller's id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// CurrentUser returns the user loaded by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

// abortWithError answers with the status and message mapped from err.
func abortWithError(c *gin.Context, err error) {
	status, message, _ := errs.Describe(err)
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
