package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Fazeel2019/Upskill-sub000/internal/models"
	"github.com/Fazeel2019/Upskill-sub000/internal/service"
)

const (
	identityKey    = "identity"
	currentUserKey = "current_user"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Identity, models.User, error)
	Touch(ctx context.Context, sessionID, ip, userAgent string)
}

// Auth resolves the bearer token into the request identity. EventSource
// clients cannot set headers, so GET requests may pass access_token instead.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		id, user, err := authn.Authenticate(c.Request.Context(), tokenStr)
		switch {
		case err == nil:
		case errors.Is(err, service.ErrUserSuspended):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
			return
		case errors.Is(err, service.ErrSessionRevoked):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_not_found"})
			return
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		authn.Touch(c.Request.Context(), id.SessionID, c.ClientIP(), c.GetHeader("User-Agent"))

		c.Set(identityKey, id)
		c.Set(currentUserKey, user)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if c.Request.Method == http.MethodGet {
		return c.Query("access_token")
	}
	return ""
}

func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// SetIdentity is used by tests that bypass token auth.
func SetIdentity(c *gin.Context, id models.Identity) {
	c.Set(identityKey, id)
}
