package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wolfnote/30-day-trading-tracker/internal/auth"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	SessionID string    `json:"session_id"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "username and password are required")
		return
	}

	if !s.verifier.Verify(req.Username, req.Password) {
		s.logger.Warn("login rejected", zap.String("username", req.Username))
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sess := s.sessions.Create(req.Username)
	token, expiresAt, err := s.tokens.Sign(auth.Claims{
		Username:  req.Username,
		SessionID: sess.ID,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	ok(c, loginResponse{Token: token, ExpiresAt: expiresAt, SessionID: sess.ID})
}

type themeRequest struct {
	DarkMode bool `json:"dark_mode"`
}

func (s *Server) setTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid theme payload")
		return
	}
	sess := currentSession(c)
	if sess == nil {
		fail(c, http.StatusUnauthorized, "no session")
		return
	}
	sess.SetDarkMode(req.DarkMode)
	ok(c, gin.H{"dark_mode": req.DarkMode})
}
