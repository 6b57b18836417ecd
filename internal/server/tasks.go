package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskpoints/internal/apperr"
	"taskpoints/internal/model"
	"taskpoints/internal/service"
)

type taskCreateRequest struct {
	Title        *string    `json:"title"`
	Points       *int64     `json:"points"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"dueDate"`
	ReminderTime *time.Time `json:"reminderTime"`
	CategoryID   *uint      `json:"categoryId"`
	ParentID     *uint      `json:"parentId"`
}

type taskUpdateRequest struct {
	Title        *string    `json:"title"`
	Completed    *bool      `json:"completed"`
	Points       *int64     `json:"points"`
	Priority     *string    `json:"priority"`
	DueDate      *time.Time `json:"dueDate"`
	ReminderTime *time.Time `json:"reminderTime"`
	CategoryID   *uint      `json:"categoryId"`
}

// handleListTasks returns the caller's top-level tasks with nested
// categories and sub-tasks, newest first.
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.tasks.ListTasks(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperr.Invalid("body", "malformed JSON"))
		return
	}
	if req.Title == nil {
		s.respondError(c, apperr.Invalid("title", "is required"))
		return
	}
	if req.Points == nil {
		s.respondError(c, apperr.Invalid("points", "is required"))
		return
	}

	input := service.TaskInput{
		Title:        *req.Title,
		Points:       *req.Points,
		DueDate:      req.DueDate,
		ReminderTime: req.ReminderTime,
		CategoryID:   req.CategoryID,
		ParentID:     req.ParentID,
	}
	if req.Priority != nil {
		input.Priority = model.Priority(*req.Priority)
	}

	task, err := s.tasks.CreateTask(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req taskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperr.Invalid("body", "malformed JSON"))
		return
	}

	patch := service.TaskPatch{
		Title:        req.Title,
		Completed:    req.Completed,
		Points:       req.Points,
		DueDate:      req.DueDate,
		ReminderTime: req.ReminderTime,
		CategoryID:   req.CategoryID,
	}
	if req.Priority != nil {
		p := model.Priority(*req.Priority)
		patch.Priority = &p
	}

	task, err := s.tasks.UpdateTask(c.Request.Context(), currentUserID(c), id, patch)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.tasks.DeleteTask(c.Request.Context(), currentUserID(c), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
