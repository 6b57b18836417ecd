package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"taskpoints/internal/model"
	"taskpoints/internal/notify"
	"taskpoints/internal/repository"
)

// ReminderService delivers reminders for tasks whose reminder time has
// passed. Each reminder fires once; delivery is recorded on the task.
type ReminderService struct {
	taskRepo *repository.TaskRepository
	userRepo *repository.UserRepository
	notifier notify.Notifier
	logger   *slog.Logger
}

func NewReminderService(taskRepo *repository.TaskRepository, userRepo *repository.UserRepository, notifier notify.Notifier, logger *slog.Logger) *ReminderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderService{taskRepo: taskRepo, userRepo: userRepo, notifier: notifier, logger: logger}
}

// SweepDue finds all undelivered due reminders, sends one message per user,
// and marks the covered tasks as reminded. A user whose delivery fails keeps
// their tasks unmarked, so the next sweep retries them.
func (s *ReminderService) SweepDue(ctx context.Context, now time.Time) error {
	tasks, err := s.taskRepo.ListDueReminders(ctx, now)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		return nil
	}

	byAuthor := make(map[uint][]model.Task)
	for _, task := range tasks {
		byAuthor[task.AuthorID] = append(byAuthor[task.AuthorID], task)
	}

	for authorID, due := range byAuthor {
		user, err := s.userRepo.FindByID(ctx, authorID)
		if err != nil {
			s.logger.Error("reminder: load user", slog.Uint64("user", uint64(authorID)), slog.String("error", err.Error()))
			continue
		}

		if err := s.notifier.Notify(ctx, user, buildReminderMessage(due, now)); err != nil {
			s.logger.Error("reminder: deliver", slog.Uint64("user", uint64(authorID)), slog.String("error", err.Error()))
			continue
		}

		ids := make([]uint, 0, len(due))
		for _, task := range due {
			ids = append(ids, task.ID)
		}
		if err := s.taskRepo.MarkReminded(ctx, ids, now); err != nil {
			s.logger.Error("reminder: mark sent", slog.Uint64("user", uint64(authorID)), slog.String("error", err.Error()))
		}
	}
	return nil
}

func buildReminderMessage(tasks []model.Task, now time.Time) string {
	var builder strings.Builder
	builder.WriteString("<b>Reminders</b>\n")

	for _, task := range tasks {
		title := html.EscapeString(strings.TrimSpace(task.Title))
		builder.WriteString(fmt.Sprintf("• %s", title))
		if task.DueDate != nil {
			d := task.DueDate.In(now.Location())
			if now.After(d) {
				builder.WriteString(fmt.Sprintf(" — due %s, <b>overdue</b>", d.Format("2006-01-02")))
			} else {
				builder.WriteString(fmt.Sprintf(" — due %s", d.Format("2006-01-02")))
			}
		}
		if task.Points > 0 {
			builder.WriteString(fmt.Sprintf(" (%d pts)", task.Points))
		}
		builder.WriteByte('\n')
	}

	return strings.TrimSpace(builder.String())
}
