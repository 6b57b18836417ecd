package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// identityGate resolves the caller to a stable user id. Identity is decided
// upstream (the gateway puts the resolved id in X-User-ID); this middleware
// only provisions the user row and rejects requests with no identity. The
// rest of the service trusts the resolved id unconditionally.
func (s *Server) identityGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "identity required"})
			return
		}

		user, err := s.users.GetOrCreate(c.Request.Context(), uint(id))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// currentUserID returns the identity resolved by the gate.
func currentUserID(c *gin.Context) uint {
	return c.MustGet(userIDKey).(uint)
}
