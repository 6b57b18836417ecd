package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskpoints/internal/apperr"
)

type linkChatRequest struct {
	ChatID *int64 `json:"chatId"`
}

// handleMe returns the caller's identity row, including the score accumulated
// from completed tasks.
func (s *Server) handleMe(c *gin.Context) {
	user, err := s.users.FindByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// handleLinkChat links (or with null, unlinks) the chat reminders are
// delivered to.
func (s *Server) handleLinkChat(c *gin.Context) {
	var req linkChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperr.Invalid("body", "malformed JSON"))
		return
	}

	user, err := s.users.LinkChat(c.Request.Context(), currentUserID(c), req.ChatID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
