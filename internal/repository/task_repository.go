package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskpoints/internal/apperr"
	"taskpoints/internal/model"
)

// TaskRepository handles CRUD for tasks and owns the credit transaction.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListTopLevel returns the user's root tasks, newest first, with category and
// direct sub-tasks (and their categories) attached.
func (r *TaskRepository) ListTopLevel(ctx context.Context, authorID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND parent_id IS NULL", authorID).
		Order("created_at DESC").
		Preload("Category").
		Preload("SubTasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("SubTasks.Category").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for i := range tasks {
		if tasks[i].SubTasks == nil {
			tasks[i].SubTasks = []model.Task{}
		}
		for j := range tasks[i].SubTasks {
			if tasks[i].SubTasks[j].SubTasks == nil {
				tasks[i].SubTasks[j].SubTasks = []model.Task{}
			}
		}
	}
	return tasks, nil
}

// FindByID fetches an owned task with its category and sub-tasks. A task
// that exists but belongs to someone else is reported as absent.
func (r *TaskRepository) FindByID(ctx context.Context, authorID, taskID uint) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", taskID, authorID).
		Preload("Category").
		Preload("SubTasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Preload("SubTasks.Category").
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	if task.SubTasks == nil {
		task.SubTasks = []model.Task{}
	}
	for i := range task.SubTasks {
		if task.SubTasks[i].SubTasks == nil {
			task.SubTasks[i].SubTasks = []model.Task{}
		}
	}
	return &task, nil
}

// Update applies a plain field write with no scoring side effect.
func (r *TaskRepository) Update(ctx context.Context, authorID, taskID uint, updates map[string]any) (*model.Task, error) {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND author_id = ?", taskID, authorID).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.FindByID(ctx, authorID, taskID)
}

// CompleteAndCredit marks a task completed and credits its points to the
// owner inside one transaction. The gate is a conditional update on
// (completed = false AND scored_at IS NULL): only one of N racing requests
// matches the row, credits, and stamps scored_at; the rest fall through to a
// plain update. The points credited are the ones stored before this request,
// read inside the same transaction.
func (r *TaskRepository) CompleteAndCredit(ctx context.Context, authorID, taskID uint, updates map[string]any) (*model.Task, error) {
	txErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Task
		err := tx.Where("id = ? AND author_id = ?", taskID, authorID).First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("find task: %w", err)
		}

		creditSet := make(map[string]any, len(updates)+2)
		for k, v := range updates {
			creditSet[k] = v
		}
		creditSet["completed"] = true
		creditSet["scored_at"] = time.Now().UTC()

		gate := tx.Model(&model.Task{}).
			Where("id = ? AND author_id = ? AND completed = ? AND scored_at IS NULL", taskID, authorID, false).
			Updates(creditSet)
		if gate.Error != nil {
			return fmt.Errorf("complete task: %w", gate.Error)
		}

		if gate.RowsAffected == 0 {
			// Already completed, or already credited once in its lifetime:
			// plain write, no score change.
			plain := make(map[string]any, len(updates)+1)
			for k, v := range updates {
				plain[k] = v
			}
			plain["completed"] = true
			if err := tx.Model(&model.Task{}).
				Where("id = ? AND author_id = ?", taskID, authorID).
				Updates(plain).Error; err != nil {
				return fmt.Errorf("update task: %w", err)
			}
			return nil
		}

		owner := tx.Model(&model.User{}).
			Where("id = ?", authorID).
			UpdateColumn("total_score", gorm.Expr("total_score + ?", current.Points))
		if owner.Error != nil {
			return fmt.Errorf("credit score: %w", owner.Error)
		}
		if owner.RowsAffected != 1 {
			return errors.New("owner row missing")
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, apperr.ErrNotFound) {
			return nil, txErr
		}
		return nil, &apperr.TransactionError{Err: txErr}
	}
	return r.FindByID(ctx, authorID, taskID)
}

// Delete removes an owned task together with its whole sub-task subtree.
// Credited points are not reversed.
func (r *TaskRepository) Delete(ctx context.Context, authorID, taskID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root model.Task
		err := tx.Where("id = ? AND author_id = ?", taskID, authorID).First(&root).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("find task: %w", err)
		}

		ids := []uint{root.ID}
		frontier := []uint{root.ID}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&model.Task{}).
				Where("parent_id IN ?", frontier).
				Pluck("id", &children).Error; err != nil {
				return fmt.Errorf("collect sub-tasks: %w", err)
			}
			ids = append(ids, children...)
			frontier = children
		}

		if err := tx.Where("id IN ?", ids).Delete(&model.Task{}).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		return nil
	})
}

// ListDueReminders returns open tasks whose reminder time has passed and has
// not been delivered yet.
func (r *TaskRepository) ListDueReminders(ctx context.Context, now time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("completed = ? AND reminder_time IS NOT NULL AND reminder_time <= ? AND reminder_sent_at IS NULL", false, now).
		Order("reminder_time ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return tasks, nil
}

// MarkReminded stamps the delivery time so a reminder fires once.
func (r *TaskRepository) MarkReminded(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id IN ?", ids).
		Update("reminder_sent_at", at).Error; err != nil {
		return fmt.Errorf("mark reminded: %w", err)
	}
	return nil
}
