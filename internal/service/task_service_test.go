package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpoints/internal/apperr"
	"taskpoints/internal/model"
	"taskpoints/internal/repository"
	"taskpoints/internal/service"
	"taskpoints/internal/testutil"
)

type fixture struct {
	tasks      *service.TaskService
	categories *service.CategoryService
	users      *repository.UserRepository
	taskRepo   *repository.TaskRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	return &fixture{
		tasks:      service.NewTaskService(taskRepo, categoryRepo),
		categories: service.NewCategoryService(categoryRepo),
		users:      repository.NewUserRepository(db),
		taskRepo:   taskRepo,
	}
}

func (f *fixture) user(t *testing.T, id uint) *model.User {
	t.Helper()
	user, err := f.users.GetOrCreate(context.Background(), id)
	require.NoError(t, err)
	return user
}

func ptr[T any](v T) *T { return &v }

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	_, err := f.tasks.CreateTask(ctx, 1, service.TaskInput{Points: 5})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "title", validation.Field)

	_, err = f.tasks.CreateTask(ctx, 1, service.TaskInput{Title: "x", Points: -1})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "points", validation.Field)

	_, err = f.tasks.CreateTask(ctx, 1, service.TaskInput{Title: "x", Priority: "urgent"})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "priority", validation.Field)

	_, err = f.tasks.CreateTask(ctx, 1, service.TaskInput{Title: "x", CategoryID: ptr(uint(99))})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "categoryId", validation.Field)

	_, err = f.tasks.CreateTask(ctx, 1, service.TaskInput{Title: "x", ParentID: ptr(uint(99))})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "parentId", validation.Field)
}

func TestCreateTaskDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	task, err := f.tasks.CreateTask(ctx, 1, service.TaskInput{Title: "buy milk", Points: 10})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", task.Title)
	assert.False(t, task.Completed)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, int64(10), task.Points)
	assert.Equal(t, uint(1), task.AuthorID)
	assert.Nil(t, task.Category)
	assert.NotNil(t, task.SubTasks)
	assert.Empty(t, task.SubTasks)
}

func TestListTasksNesting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	work, err := f.categories.Create(ctx, 1, "work")
	require.NoError(t, err)

	parent, err := f.tasks.CreateTask(ctx, 1, service.TaskInput{Title: "release", Points: 3})
	require.NoError(t, err)
	child, err := f.tasks.CreateTask(ctx, 1, service.TaskInput{
		Title:      "write changelog",
		Points:     1,
		ParentID:   ptr(parent.ID),
		CategoryID: ptr(work.ID),
	})
	require.NoError(t, err)
	later, err := f.tasks.CreateTask(ctx, 1, service.TaskInput{Title: "errands", Points: 0})
	require.NoError(t, err)

	list, err := f.tasks.ListTasks(ctx, 1)
	require.NoError(t, err)

	// Sub-tasks never appear at the top level; newest root first.
	require.Len(t, list, 2)
	assert.Equal(t, later.ID, list[0].ID)
	assert.Equal(t, parent.ID, list[1].ID)

	require.Len(t, list[1].SubTasks, 1)
	assert.Equal(t, child.ID, list[1].SubTasks[0].ID)
	require.NotNil(t, list[1].SubTasks[0].Category)
	assert.Equal(t, "work", list[1].SubTasks[0].Category.Name)
	assert.Empty(t, list[0].SubTasks)

	// Single-task reads shape nested children the same way: the child's
	// sub-task list is empty, not absent.
	got, err := f.tasks.GetTask(ctx, 1, parent.ID)
	require.NoError(t, err)
	require.Len(t, got.SubTasks, 1)
	assert.NotNil(t, got.SubTasks[0].SubTasks)
}

func TestUpdateTaskPartialSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)

	due := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	task, err := f.tasks.CreateTask(ctx, 1, service.TaskInput{Title: "plan trip", Points: 4, DueDate: &due})
	require.NoError(t, err)

	// Only the patched field changes.
	updated, err := f.tasks.UpdateTask(ctx, 1, task.ID, service.TaskPatch{Priority: ptr(model.PriorityHigh)})
	require.NoError(t, err)
	assert.Equal(t, "plan trip", updated.Title)
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	require.NotNil(t, updated.DueDate)

	// Zero date clears it.
	updated, err = f.tasks.UpdateTask(ctx, 1, task.ID, service.TaskPatch{DueDate: &time.Time{}})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)

	_, err = f.tasks.UpdateTask(ctx, 1, task.ID, service.TaskPatch{Title: ptr("")})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateTaskCategoryAssignAndClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)
	f.user(t, 2)

	mine, err := f.categories.Create(ctx, 1, "home")
	require.NoError(t, err)
	theirs, err := f.categories.Create(ctx, 2, "home")
	require.NoError(t, err)

	task, err := f.tasks.CreateTask(ctx, 1, service.TaskInput{Title: "vacuum", Points: 1})
	require.NoError(t, err)

	updated, err := f.tasks.UpdateTask(ctx, 1, task.ID, service.TaskPatch{CategoryID: ptr(mine.ID)})
	require.NoError(t, err)
	require.NotNil(t, updated.Category)
	assert.Equal(t, mine.ID, updated.Category.ID)

	// Another user's category is rejected at write time.
	_, err = f.tasks.UpdateTask(ctx, 1, task.ID, service.TaskPatch{CategoryID: ptr(theirs.ID)})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "categoryId", validation.Field)

	// Zero clears the reference.
	updated, err = f.tasks.UpdateTask(ctx, 1, task.ID, service.TaskPatch{CategoryID: ptr(uint(0))})
	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)
	assert.Nil(t, updated.Category)
}

func TestOwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, 1)
	f.user(t, 2)

	task, err := f.tasks.CreateTask(ctx, 1, service.TaskInput{Title: "secret", Points: 1})
	require.NoError(t, err)

	// Foreign and absent tasks are indistinguishable.
	_, err = f.tasks.GetTask(ctx, 2, task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.tasks.UpdateTask(ctx, 2, task.ID, service.TaskPatch{Title: ptr("stolen")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	err = f.tasks.DeleteTask(ctx, 2, task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.tasks.GetTask(ctx, 2, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// A sub-task cannot hang off a foreign tree.
	_, err = f.tasks.CreateTask(ctx, 2, service.TaskInput{Title: "leech", ParentID: ptr(task.ID)})
	var validation *apperr.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "parentId", validation.Field)
}

func TestCompletionCreditsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 1)

	task, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "buy milk", Points: 10})
	require.NoError(t, err)

	updated, err := f.tasks.UpdateTask(ctx, user.ID, task.ID, service.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	after, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), after.TotalScore)

	// Re-completing an already completed task is a no-op for the score.
	_, err = f.tasks.UpdateTask(ctx, user.ID, task.ID, service.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)
	after, err = f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), after.TotalScore)
}

func TestUncompleteNeverDebitsOrRecredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 1)

	task, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "workout", Points: 7})
	require.NoError(t, err)

	_, err = f.tasks.UpdateTask(ctx, user.ID, task.ID, service.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)

	// Once earned, always kept: un-completing does not debit.
	updated, err := f.tasks.UpdateTask(ctx, user.ID, task.ID, service.TaskPatch{Completed: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.Completed)

	after, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), after.TotalScore)

	// ... and re-completing does not credit a second time.
	_, err = f.tasks.UpdateTask(ctx, user.ID, task.ID, service.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)
	after, err = f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), after.TotalScore)
}

func TestPointsEditDoesNotRetroactivelyChangeCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 1)

	task, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "read book", Points: 5})
	require.NoError(t, err)

	// A patch that both completes and edits points credits the stored value.
	updated, err := f.tasks.UpdateTask(ctx, user.ID, task.ID, service.TaskPatch{
		Completed: ptr(true),
		Points:    ptr(int64(100)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), updated.Points)

	after, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), after.TotalScore)
}

func TestConcurrentCompletionCreditsAtMostOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 1)

	task, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "race me", Points: 10})
	require.NoError(t, err)

	const racers = 8
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.tasks.UpdateTask(ctx, user.ID, task.ID, service.TaskPatch{Completed: ptr(true)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	after, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), after.TotalScore, "exactly one racer credits")
}

func TestDeleteTaskCascadesToSubtree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 1)

	root, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "project", Points: 0})
	require.NoError(t, err)
	child, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "phase", ParentID: ptr(root.ID)})
	require.NoError(t, err)
	grandchild, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "step", ParentID: ptr(child.ID)})
	require.NoError(t, err)

	require.NoError(t, f.tasks.DeleteTask(ctx, user.ID, root.ID))

	for _, id := range []uint{root.ID, child.ID, grandchild.ID} {
		_, err := f.tasks.GetTask(ctx, user.ID, id)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	}
}

func TestDeleteCompletedTaskKeepsCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, 1)

	task, err := f.tasks.CreateTask(ctx, user.ID, service.TaskInput{Title: "done deal", Points: 6})
	require.NoError(t, err)
	_, err = f.tasks.UpdateTask(ctx, user.ID, task.ID, service.TaskPatch{Completed: ptr(true)})
	require.NoError(t, err)

	require.NoError(t, f.tasks.DeleteTask(ctx, user.ID, task.ID))

	after, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(6), after.TotalScore)
}
