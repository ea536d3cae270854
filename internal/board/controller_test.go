package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hylla/taskifyx/internal/domain"
)

type notice struct {
	kind    NoticeKind
	message string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (r *recordingNotifier) Notify(kind NoticeKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{kind: kind, message: message})
}

func (r *recordingNotifier) last() notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return notice{}
	}
	return r.notices[len(r.notices)-1]
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

type fakeAPI struct {
	mu        sync.Mutex
	tasks     []domain.Task
	listErr   error
	createErr error
	updateErr error
	deleteErr error
	nextID    int
	updates   []domain.Task
	deletes   []string
	// updateReply overrides the task returned by UpdateTask when set.
	updateReply func(domain.Task) domain.Task
	// block, when non-nil, holds UpdateTask until closed.
	block chan struct{}
}

func (f *fakeAPI) ListTasks(context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Task(nil), f.tasks...), nil
}

func (f *fakeAPI) CreateTask(_ context.Context, draft domain.TaskDraft) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Task{}, f.createErr
	}
	f.nextID++
	status := draft.Status
	if status == "" {
		status = domain.StatusTodo
	}
	task := domain.Task{ID: fmt.Sprintf("srv-%d", f.nextID), Title: draft.Title, Description: draft.Description, Status: status}
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeAPI) UpdateTask(_ context.Context, task domain.Task) (domain.Task, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, task)
	if f.updateErr != nil {
		return domain.Task{}, f.updateErr
	}
	if f.updateReply != nil {
		return f.updateReply(task), nil
	}
	return task, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func taskIDs(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

func seeded(t *testing.T, api *fakeAPI, opts ...Option) (*Controller, *recordingNotifier) {
	t.Helper()
	notes := &recordingNotifier{}
	c := New(api, append([]Option{WithNotifier(notes)}, opts...)...)
	require.NoError(t, c.Load(context.Background()))
	return c, notes
}

func drag(from domain.Status, fromIndex int, to domain.Status, toIndex int) domain.DragResult {
	return domain.DragResult{
		Source:      domain.Position{Column: from, Index: fromIndex},
		Destination: &domain.Position{Column: to, Index: toIndex},
	}
}

func TestLoadReplacesTasksInServerOrder(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo},
		{ID: "2", Title: "b", Status: domain.StatusDone},
	}}
	c, notes := seeded(t, api)

	assert.Equal(t, []string{"1", "2"}, taskIDs(c.Tasks()))
	assert.False(t, c.Busy())
	assert.Zero(t, notes.count(), "successful load is silent")

	cols := c.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, []string{"1"}, taskIDs(cols[0].Tasks))
	assert.Empty(t, cols[1].Tasks)
	assert.Equal(t, []string{"2"}, taskIDs(cols[2].Tasks))
}

func TestLoadEmptyList(t *testing.T) {
	c, _ := seeded(t, &fakeAPI{})
	assert.NotNil(t, c.Tasks())
	assert.Empty(t, c.Tasks())
}

func TestLoadFailuresKeepTasks(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{{ID: "1", Title: "a", Status: domain.StatusTodo}}}
	c, notes := seeded(t, api)

	api.listErr = fmt.Errorf("decode: %w", ErrMalformedPayload)
	err := c.Load(context.Background())
	require.ErrorIs(t, err, ErrMalformedPayload)
	assert.Equal(t, notice{NoticeError, "Invalid task data!"}, notes.last())
	assert.Equal(t, []string{"1"}, taskIDs(c.Tasks()))

	api.listErr = errors.New("connection refused")
	require.Error(t, c.Load(context.Background()))
	assert.Equal(t, notice{NoticeError, "Failed to fetch tasks!"}, notes.last())
	assert.Equal(t, []string{"1"}, taskIDs(c.Tasks()))
	assert.False(t, c.Busy())
}

func TestCreateAppendsServerTaskAndClosesForm(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{{ID: "1", Title: "a", Status: domain.StatusDone}}}
	c, notes := seeded(t, api)
	c.OpenForm(nil)

	task, err := c.Create(context.Background(), domain.TaskDraft{Title: "new", Status: domain.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", task.ID)
	assert.Equal(t, []string{"1", "srv-1"}, taskIDs(c.Tasks()))
	assert.Equal(t, notice{NoticeSuccess, "Task added successfully!"}, notes.last())
	assert.False(t, c.Form().Open)
}

func TestCreateFailureKeepsFormOpen(t *testing.T) {
	api := &fakeAPI{createErr: errors.New("500")}
	c, notes := seeded(t, api)
	c.OpenForm(nil)

	_, err := c.Create(context.Background(), domain.TaskDraft{Title: "new"})
	require.Error(t, err)
	assert.Empty(t, c.Tasks())
	assert.Equal(t, notice{NoticeError, "Error adding task!"}, notes.last())
	assert.True(t, c.Form().Open)
	assert.False(t, c.Busy())
}

func TestUpdateReplacesBySentID(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo},
		{ID: "2", Title: "b", Status: domain.StatusTodo},
	}}
	api.updateReply = func(task domain.Task) domain.Task {
		task.Title = task.Title + " (saved)"
		return task
	}
	c, notes := seeded(t, api)
	current, ok := c.Task("2")
	require.True(t, ok)
	c.OpenForm(&current)
	require.NotNil(t, c.Form().Editing)

	current.Title = "renamed"
	updated, err := c.Update(context.Background(), current)
	require.NoError(t, err)
	assert.Equal(t, "renamed (saved)", updated.Title)

	got, ok := c.Task("2")
	require.True(t, ok)
	assert.Equal(t, "renamed (saved)", got.Title)
	assert.Equal(t, []string{"1", "2"}, taskIDs(c.Tasks()))
	assert.Equal(t, notice{NoticeSuccess, "Task updated successfully!"}, notes.last())
	assert.Equal(t, FormState{}, c.Form())
}

func TestUpdateFailureLeavesTaskUnchanged(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{{ID: "1", Title: "a", Status: domain.StatusTodo}}}
	c, notes := seeded(t, api)
	api.updateErr = errors.New("boom")

	_, err := c.Update(context.Background(), domain.Task{ID: "1", Title: "b", Status: domain.StatusTodo})
	require.Error(t, err)
	got, _ := c.Task("1")
	assert.Equal(t, "a", got.Title)
	assert.Equal(t, notice{NoticeError, "Error updating task!"}, notes.last())
}

func TestDeleteRemovesOnlyAfterSuccess(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo},
		{ID: "2", Title: "b", Status: domain.StatusTodo},
	}}
	c, notes := seeded(t, api)

	api.deleteErr = errors.New("nope")
	require.Error(t, c.Delete(context.Background(), "1"))
	assert.Equal(t, []string{"1", "2"}, taskIDs(c.Tasks()))
	assert.Equal(t, notice{NoticeError, "Error deleting task!"}, notes.last())

	api.deleteErr = nil
	require.NoError(t, c.Delete(context.Background(), "1"))
	assert.Equal(t, []string{"2"}, taskIDs(c.Tasks()))
	assert.Equal(t, []string{"1"}, api.deletes)
	assert.Equal(t, notice{NoticeSuccess, "Task deleted successfully!"}, notes.last())
}

func TestReorderMovesAcrossColumnsAndPersists(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo},
		{ID: "2", Title: "b", Status: domain.StatusDone},
	}}
	api.updateReply = func(task domain.Task) domain.Task {
		task.Title = "server says otherwise"
		return task
	}
	c, notes := seeded(t, api)

	require.NoError(t, c.Reorder(context.Background(), drag(domain.StatusTodo, 0, domain.StatusDone, 1)))
	assert.Equal(t, []string{"2", "1"}, taskIDs(c.Tasks()))
	moved, _ := c.Task("1")
	assert.Equal(t, domain.StatusDone, moved.Status)
	assert.Equal(t, "a", moved.Title, "reorder response is not applied")

	require.Len(t, api.updates, 1)
	assert.Equal(t, "1", api.updates[0].ID)
	assert.Equal(t, domain.StatusDone, api.updates[0].Status)
	assert.Equal(t, notice{NoticeSuccess, "Task status updated!"}, notes.last())
}

func TestReorderNoopsDoNothing(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{{ID: "1", Title: "a", Status: domain.StatusTodo}}}
	c, notes := seeded(t, api)

	require.NoError(t, c.Reorder(context.Background(), domain.DragResult{Source: domain.Position{Column: domain.StatusTodo}}))
	require.NoError(t, c.Reorder(context.Background(), drag(domain.StatusTodo, 0, domain.StatusTodo, 0)))
	assert.Empty(t, api.updates)
	assert.Zero(t, notes.count())
}

func TestReorderFailureKeepsOptimisticMoveByDefault(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo},
		{ID: "2", Title: "b", Status: domain.StatusDone},
	}}
	c, notes := seeded(t, api)
	api.updateErr = errors.New("offline")

	require.Error(t, c.Reorder(context.Background(), drag(domain.StatusTodo, 0, domain.StatusDone, 1)))
	moved, _ := c.Task("1")
	assert.Equal(t, domain.StatusDone, moved.Status)
	assert.Equal(t, []string{"2", "1"}, taskIDs(c.Tasks()))
	assert.Equal(t, notice{NoticeError, "Error updating task status!"}, notes.last())
}

func TestReorderFailureRevertPolicy(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo},
		{ID: "2", Title: "b", Status: domain.StatusDone},
	}}
	c, _ := seeded(t, api, WithReorderFailurePolicy(ReorderRevert))
	api.updateErr = errors.New("offline")

	require.Error(t, c.Reorder(context.Background(), drag(domain.StatusTodo, 0, domain.StatusDone, 1)))
	assert.Equal(t, []string{"1", "2"}, taskIDs(c.Tasks()))
	reverted, _ := c.Task("1")
	assert.Equal(t, domain.StatusTodo, reverted.Status)
}

func TestReorderFailureReloadPolicy(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo},
		{ID: "2", Title: "b", Status: domain.StatusDone},
	}}
	c, _ := seeded(t, api, WithReorderFailurePolicy(ReorderReload))
	api.updateErr = errors.New("offline")

	require.Error(t, c.Reorder(context.Background(), drag(domain.StatusDone, 0, domain.StatusTodo, 0)))
	assert.Equal(t, []string{"1", "2"}, taskIDs(c.Tasks()))
	reloaded, _ := c.Task("2")
	assert.Equal(t, domain.StatusDone, reloaded.Status)
}

func TestReorderFailureReloadPolicyReportsReloadError(t *testing.T) {
	api := &fakeAPI{tasks: []domain.Task{
		{ID: "1", Title: "a", Status: domain.StatusTodo},
		{ID: "2", Title: "b", Status: domain.StatusDone},
	}}
	c, notes := seeded(t, api, WithReorderFailurePolicy(ReorderReload))
	updateErr := errors.New("offline")
	listErr := errors.New("still offline")
	api.updateErr = updateErr
	api.listErr = listErr

	err := c.Reorder(context.Background(), drag(domain.StatusTodo, 0, domain.StatusDone, 1))
	require.ErrorIs(t, err, updateErr)
	require.ErrorIs(t, err, listErr)
	assert.Equal(t, []string{"2", "1"}, taskIDs(c.Tasks()))
	assert.Equal(t, notice{NoticeError, "Failed to fetch tasks!"}, notes.last())
	assert.False(t, c.Busy())
}

func TestStageReorderAppliesBeforePersistAndCountsBusy(t *testing.T) {
	api := &fakeAPI{
		tasks: []domain.Task{{ID: "1", Title: "a", Status: domain.StatusTodo}},
		block: make(chan struct{}),
	}
	c, _ := seeded(t, api)

	pending, ok := c.StageReorder(drag(domain.StatusTodo, 0, domain.StatusInProgress, 0))
	require.True(t, ok)
	assert.Equal(t, domain.StatusInProgress, pending.Task().Status)
	staged, _ := c.Task("1")
	assert.Equal(t, domain.StatusInProgress, staged.Status, "move is visible before persistence")
	assert.False(t, c.Busy())

	done := make(chan error, 1)
	go func() { done <- pending.Persist(context.Background()) }()
	require.Eventually(t, c.Busy, time.Second, 5*time.Millisecond)
	close(api.block)
	require.NoError(t, <-done)
	assert.False(t, c.Busy())

	require.NoError(t, pending.Persist(context.Background()))
	assert.Len(t, api.updates, 1, "persist runs once")
}

func TestStageReorderRejectsBadSource(t *testing.T) {
	c, _ := seeded(t, &fakeAPI{})
	_, ok := c.StageReorder(drag(domain.StatusTodo, 3, domain.StatusDone, 0))
	assert.False(t, ok)
}

func TestFormState(t *testing.T) {
	c := New(&fakeAPI{})
	assert.Equal(t, FormState{}, c.Form())

	c.OpenForm(nil)
	assert.True(t, c.Form().Open)
	assert.Nil(t, c.Form().Editing)

	target := domain.Task{ID: "1", Title: "x"}
	c.OpenForm(&target)
	target.Title = "mutated"
	form := c.Form()
	require.NotNil(t, form.Editing)
	assert.Equal(t, "x", form.Editing.Title)

	c.CloseForm()
	assert.Equal(t, FormState{}, c.Form())
}

func TestParseReorderFailurePolicy(t *testing.T) {
	for raw, want := range map[string]ReorderFailurePolicy{
		"":        ReorderKeep,
		"keep":    ReorderKeep,
		" Revert": ReorderRevert,
		"RELOAD":  ReorderReload,
	} {
		got, err := ParseReorderFailurePolicy(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseReorderFailurePolicy("undo")
	assert.Error(t, err)
}
