package service

import (
	"context"
	"time"

	"taskpoints/internal/apperr"
	"taskpoints/internal/model"
	"taskpoints/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title        string
	Points       int64
	Priority     model.Priority
	DueDate      *time.Time
	ReminderTime *time.Time
	CategoryID   *uint
	ParentID     *uint
}

// TaskPatch is a partial update: nil fields are left untouched. A zero
// CategoryID clears the category reference; a zero DueDate or ReminderTime
// clears the date. ParentID is fixed at creation and cannot be patched.
type TaskPatch struct {
	Title        *string
	Completed    *bool
	Priority     *model.Priority
	Points       *int64
	DueDate      *time.Time
	ReminderTime *time.Time
	CategoryID   *uint
}

// TaskService wraps task-related business logic: validation, ownership-scoped
// lookups, and routing completion edges through the credit transaction.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

func (s *TaskService) CreateTask(ctx context.Context, authorID uint, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, apperr.Invalid("title", "is required")
	}
	if input.Points < 0 {
		return nil, apperr.Invalid("points", "must not be negative")
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if _, ok := model.ValidPriorities[priority]; !ok {
		return nil, apperr.Invalid("priority", "must be low, medium or high")
	}

	// References must resolve to rows the author owns; a foreign category or
	// parent is rejected here, not filtered later.
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, authorID, *input.CategoryID); err != nil {
			return nil, apperr.Invalid("categoryId", "unknown category")
		}
	}
	if input.ParentID != nil {
		if _, err := s.taskRepo.FindByID(ctx, authorID, *input.ParentID); err != nil {
			return nil, apperr.Invalid("parentId", "unknown parent task")
		}
	}

	task := model.Task{
		AuthorID:     authorID,
		ParentID:     input.ParentID,
		CategoryID:   input.CategoryID,
		Title:        input.Title,
		Priority:     priority,
		DueDate:      input.DueDate,
		ReminderTime: input.ReminderTime,
		Points:       input.Points,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return s.taskRepo.FindByID(ctx, authorID, task.ID)
}

// ListTasks returns the author's top-level tasks, newest first, each carrying
// its category and direct sub-tasks.
func (s *TaskService) ListTasks(ctx context.Context, authorID uint) ([]model.Task, error) {
	return s.taskRepo.ListTopLevel(ctx, authorID)
}

func (s *TaskService) GetTask(ctx context.Context, authorID, taskID uint) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, authorID, taskID)
}

// UpdateTask applies a partial update. A patch carrying completed=true goes
// through the credit transaction, which decides inside the transaction
// whether this is the task's first completion; everything else, including
// completed=false, is a plain field write.
func (s *TaskService) UpdateTask(ctx context.Context, authorID, taskID uint, patch TaskPatch) (*model.Task, error) {
	updates, err := s.buildUpdates(ctx, authorID, patch)
	if err != nil {
		return nil, err
	}

	if patch.Completed != nil && *patch.Completed {
		delete(updates, "completed")
		return s.taskRepo.CompleteAndCredit(ctx, authorID, taskID, updates)
	}

	if len(updates) == 0 {
		return s.taskRepo.FindByID(ctx, authorID, taskID)
	}
	return s.taskRepo.Update(ctx, authorID, taskID, updates)
}

func (s *TaskService) DeleteTask(ctx context.Context, authorID, taskID uint) error {
	return s.taskRepo.Delete(ctx, authorID, taskID)
}

func (s *TaskService) buildUpdates(ctx context.Context, authorID uint, patch TaskPatch) (map[string]any, error) {
	updates := map[string]any{}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, apperr.Invalid("title", "must not be empty")
		}
		updates["title"] = *patch.Title
	}
	if patch.Points != nil {
		if *patch.Points < 0 {
			return nil, apperr.Invalid("points", "must not be negative")
		}
		updates["points"] = *patch.Points
	}
	if patch.Priority != nil {
		if _, ok := model.ValidPriorities[*patch.Priority]; !ok {
			return nil, apperr.Invalid("priority", "must be low, medium or high")
		}
		updates["priority"] = *patch.Priority
	}
	if patch.DueDate != nil {
		if patch.DueDate.IsZero() {
			updates["due_date"] = nil
		} else {
			updates["due_date"] = *patch.DueDate
		}
	}
	if patch.ReminderTime != nil {
		if patch.ReminderTime.IsZero() {
			updates["reminder_time"] = nil
		} else {
			updates["reminder_time"] = *patch.ReminderTime
			updates["reminder_sent_at"] = nil
		}
	}
	if patch.CategoryID != nil {
		if *patch.CategoryID == 0 {
			updates["category_id"] = nil
		} else {
			if _, err := s.categoryRepo.FindByID(ctx, authorID, *patch.CategoryID); err != nil {
				return nil, apperr.Invalid("categoryId", "unknown category")
			}
			updates["category_id"] = *patch.CategoryID
		}
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}

	return updates, nil
}
