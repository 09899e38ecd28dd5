package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserIDKey is the gin context key holding the logged in user's id.
const UserIDKey = "user_id"

// SessionReader resolves the user id carried by the request's session.
type SessionReader interface {
	Get(c *gin.Context) (uuid.UUID, bool)
}

// LoadSession stores the session's user id in the context when the request
// carries a valid session. It never rejects a request.
func LoadSession(sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := sessions.Get(c); ok {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

// RequireSession runs onMissing and aborts when LoadSession found no user.
func RequireSession(onMissing gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUserID(c); !ok {
			onMissing(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the user id set by LoadSession.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := v.(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
