package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpoints/internal/model"
	"taskpoints/internal/service"
)

type recordingNotifier struct {
	sent map[uint][]string
	fail bool
}

func (n *recordingNotifier) Notify(_ context.Context, user *model.User, text string) error {
	if n.fail {
		return errors.New("unreachable")
	}
	if n.sent == nil {
		n.sent = map[uint][]string{}
	}
	n.sent[user.ID] = append(n.sent[user.ID], text)
	return nil
}

func TestReminderSweepDeliversOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 1)

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	_, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "call dentist", Points: 2, ReminderTime: &past})
	require.NoError(t, err)
	_, err = f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "not yet", ReminderTime: &future})
	require.NoError(t, err)
	_, err = f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "no reminder"})
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc := service.NewReminderService(f.taskRepo, f.users, notifier, nil)

	require.NoError(t, svc.SweepDue(ctx, time.Now()))
	require.Len(t, notifier.sent[user.ID], 1)
	assert.Contains(t, notifier.sent[user.ID][0], "call dentist")
	assert.NotContains(t, notifier.sent[user.ID][0], "not yet")

	// The second sweep finds nothing: delivery was recorded.
	require.NoError(t, svc.SweepDue(ctx, time.Now()))
	assert.Len(t, notifier.sent[user.ID], 1)
}

func TestReminderSweepSkipsCompletedTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 1)

	past := time.Now().Add(-time.Hour)
	task, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "already done", ReminderTime: &past})
	require.NoError(t, err)
	_, err = f.tasks.UpdateTask(ctx, user.ID, task.ID, service.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc := service.NewReminderService(f.taskRepo, f.users, notifier, nil)

	require.NoError(t, svc.SweepDue(ctx, time.Now()))
	assert.Empty(t, notifier.sent)
}

func TestReminderSweepRetriesAfterDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 1)

	past := time.Now().Add(-time.Hour)
	_, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "flaky channel", ReminderTime: &past})
	require.NoError(t, err)

	notifier := &recordingNotifier{fail: true}
	svc := service.NewReminderService(f.taskRepo, f.users, notifier, nil)

	// Failed delivery leaves the task unmarked for the next sweep.
	require.NoError(t, svc.SweepDue(ctx, time.Now()))
	assert.Empty(t, notifier.sent)

	notifier.fail = false
	require.NoError(t, svc.SweepDue(ctx, time.Now()))
	require.Len(t, notifier.sent[user.ID], 1)
}
