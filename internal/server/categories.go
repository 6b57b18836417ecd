package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskpoints/internal/apperr"
)

type categoryRequest struct {
	Name *string `json:"name"`
}

func (s *Server) handleListCategories(c *gin.Context) {
	categories, err := s.categories.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperr.Invalid("body", "malformed JSON"))
		return
	}
	if req.Name == nil {
		s.respondError(c, apperr.Invalid("name", "is required"))
		return
	}

	category, err := s.categories.Create(c.Request.Context(), currentUserID(c), *req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (s *Server) handleRenameCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperr.Invalid("body", "malformed JSON"))
		return
	}
	if req.Name == nil {
		s.respondError(c, apperr.Invalid("name", "is required"))
		return
	}

	category, err := s.categories.Rename(c.Request.Context(), currentUserID(c), id, *req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.categories.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
