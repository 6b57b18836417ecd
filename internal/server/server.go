package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskpoints/internal/apperr"
	"taskpoints/internal/repository"
	"taskpoints/internal/service"
)

// Server provides the HTTP handlers for the task API.
type Server struct {
	engine     *gin.Engine
	tasks      *service.TaskService
	categories *service.CategoryService
	users      *repository.UserRepository
	logger     *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(tasks *service.TaskService, categories *service.CategoryService, users *repository.UserRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine:     router,
		tasks:      tasks,
		categories: categories,
		users:      users,
		logger:     logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		authed := api.Group("", s.identityGate())
		{
			authed.GET("/me", s.handleMe)
			authed.PUT("/me", s.handleLinkChat)

			categories := authed.Group("/categories")
			{
				categories.GET("", s.handleListCategories)
				categories.POST("", s.handleCreateCategory)
				categories.PUT(":id", s.handleRenameCategory)
				categories.DELETE(":id", s.handleDeleteCategory)
			}

			tasks := authed.Group("/tasks")
			{
				tasks.GET("", s.handleListTasks)
				tasks.POST("", s.handleCreateTask)
				tasks.PUT(":id", s.handleUpdateTask)
				tasks.DELETE(":id", s.handleDeleteTask)
			}
		}
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to uint with error handling.
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps the error taxonomy onto status codes. Ownership failures
// surface exactly like missing rows.
func (s *Server) respondError(c *gin.Context, err error) {
	var validation *apperr.ValidationError
	var conflict *apperr.ConflictError
	var txErr *apperr.TransactionError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "field": validation.Field})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Error()})
	case errors.As(err, &txErr):
		s.logger.Error("transaction failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "could not commit, retry"})
	default:
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
