package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wolfnote/30-day-trading-tracker/internal/session"
)

const sessionKey = "session"

// authRequired validates the Bearer token and attaches the caller's
// session to the request context.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			fail(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := s.tokens.Verify(token)
		if err != nil {
			fail(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		sess := s.sessions.GetOrCreate(claims.SessionID, claims.Username)
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
