// Package board holds the client-side task board state and keeps it in sync
// with a remote Task API.
package board

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/hylla/taskifyx/internal/domain"
)

const (
	msgLoadMalformed = "Invalid task data!"
	msgLoadFailed    = "Failed to fetch tasks!"
	msgCreated       = "Task added successfully!"
	msgCreateFailed  = "Error adding task!"
	msgUpdated       = "Task updated successfully!"
	msgUpdateFailed  = "Error updating task!"
	msgDeleted       = "Task deleted successfully!"
	msgDeleteFailed  = "Error deleting task!"
	msgReordered     = "Task status updated!"
	msgReorderFailed = "Error updating task status!"
)

// FormState is the add/edit form visibility and its edit target. A nil
// Editing means the form creates a new task.
type FormState struct {
	Open    bool
	Editing *domain.Task
}

// Controller owns the ordered task list and mirrors it against a TaskAPI.
// Every operation reports its outcome through the Notifier; failures are
// logged and returned but never leave the controller unusable.
type Controller struct {
	api           TaskAPI
	notifier      Notifier
	logger        Logger
	reorderPolicy ReorderFailurePolicy

	mu       sync.Mutex
	tasks    []domain.Task
	form     FormState
	inFlight int
}

// New constructs a controller with an empty task list.
func New(api TaskAPI, opts ...Option) *Controller {
	c := &Controller{
		api:           api,
		notifier:      NotifierFunc(func(NoticeKind, string) {}),
		logger:        nopLogger{},
		reorderPolicy: ReorderKeep,
		tasks:         []domain.Task{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Load replaces the task list with the API's current list.
func (c *Controller) Load(ctx context.Context) error {
	defer c.begin()()

	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			c.logger.Error("task list payload malformed", "err", err)
			c.notifier.Notify(NoticeError, msgLoadMalformed)
			return err
		}
		c.logger.Error("fetch tasks failed", "err", err)
		c.notifier.Notify(NoticeError, msgLoadFailed)
		return err
	}

	c.mu.Lock()
	c.tasks = append(make([]domain.Task, 0, len(tasks)), tasks...)
	c.mu.Unlock()
	c.logger.Debug("tasks loaded", "count", len(tasks))
	return nil
}

// Create sends a draft to the API and appends the created task.
func (c *Controller) Create(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	defer c.begin()()

	task, err := c.api.CreateTask(ctx, draft)
	if err != nil {
		c.logger.Error("create task failed", "title", draft.Title, "err", err)
		c.notifier.Notify(NoticeError, msgCreateFailed)
		return domain.Task{}, err
	}

	c.mu.Lock()
	c.tasks = append(c.tasks, task)
	c.form = FormState{}
	c.mu.Unlock()
	c.notifier.Notify(NoticeSuccess, msgCreated)
	return task, nil
}

// Update sends the full task to the API and replaces the entry with the same
// id by the server's copy.
func (c *Controller) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	defer c.begin()()

	updated, err := c.api.UpdateTask(ctx, task)
	if err != nil {
		c.logger.Error("update task failed", "task_id", task.ID, "err", err)
		c.notifier.Notify(NoticeError, msgUpdateFailed)
		return domain.Task{}, err
	}

	c.mu.Lock()
	if idx := domain.IndexOfTask(c.tasks, task.ID); idx >= 0 {
		c.tasks[idx] = updated
	}
	c.form = FormState{}
	c.mu.Unlock()
	c.notifier.Notify(NoticeSuccess, msgUpdated)
	return updated, nil
}

// Delete removes the task from the API, then from the local list.
func (c *Controller) Delete(ctx context.Context, id string) error {
	defer c.begin()()

	if err := c.api.DeleteTask(ctx, id); err != nil {
		c.logger.Error("delete task failed", "task_id", id, "err", err)
		c.notifier.Notify(NoticeError, msgDeleteFailed)
		return err
	}

	c.mu.Lock()
	c.tasks = slices.DeleteFunc(c.tasks, func(t domain.Task) bool { return t.ID == id })
	c.mu.Unlock()
	c.notifier.Notify(NoticeSuccess, msgDeleted)
	return nil
}

// Reorder applies a drag result locally and persists the moved task. A drag
// without a destination, or onto its own position, does nothing.
func (c *Controller) Reorder(ctx context.Context, drag domain.DragResult) error {
	pending, ok := c.StageReorder(drag)
	if !ok {
		return nil
	}
	return pending.Persist(ctx)
}

// StageReorder applies a drag result to the local list without touching the
// API. It reports false when the drag is a no-op or does not resolve to a task.
func (c *Controller) StageReorder(drag domain.DragResult) (*PendingReorder, bool) {
	if !drag.Moves() {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	from := domain.ListIndex(c.tasks, drag.Source.Column, drag.Source.Index)
	next, moved, err := domain.ApplyDrag(c.tasks, drag)
	if err != nil {
		c.logger.Warn("ignored drag", "source", drag.Source, "destination", *drag.Destination, "err", err)
		return nil, false
	}
	previous := c.tasks[from]
	c.tasks = next
	return &PendingReorder{
		c:         c,
		moved:     moved,
		previous:  previous,
		fromIndex: from,
	}, true
}

// PendingReorder is a locally applied move waiting to be persisted.
type PendingReorder struct {
	c         *Controller
	moved     domain.Task
	previous  domain.Task
	fromIndex int
	once      sync.Once
	err       error
}

// Task returns the moved task with its new status.
func (p *PendingReorder) Task() domain.Task {
	return p.moved
}

// Persist sends the moved task to the API. The server's response body is not
// applied on success. Repeated calls return the first result.
func (p *PendingReorder) Persist(ctx context.Context) error {
	p.once.Do(func() {
		p.err = p.persist(ctx)
	})
	return p.err
}

func (p *PendingReorder) persist(ctx context.Context) error {
	c := p.c
	end := c.begin()
	_, err := c.api.UpdateTask(ctx, p.moved)
	end()
	if err == nil {
		c.notifier.Notify(NoticeSuccess, msgReordered)
		return nil
	}

	c.logger.Error("persist task move failed", "task_id", p.moved.ID, "status", string(p.moved.Status), "policy", string(c.reorderPolicy), "err", err)
	c.notifier.Notify(NoticeError, msgReorderFailed)
	switch c.reorderPolicy {
	case ReorderRevert:
		c.revert(p)
	case ReorderReload:
		if loadErr := c.Load(ctx); loadErr != nil {
			c.logger.Warn("reload after failed move also failed", "task_id", p.moved.ID, "err", loadErr)
			return errors.Join(err, loadErr)
		}
	}
	return err
}

// revert moves the task back to its previous status and list index.
func (c *Controller) revert(p *PendingReorder) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := domain.IndexOfTask(c.tasks, p.moved.ID)
	if idx < 0 {
		return
	}
	c.tasks = slices.Delete(c.tasks, idx, idx+1)
	at := min(p.fromIndex, len(c.tasks))
	c.tasks = slices.Insert(c.tasks, at, p.previous)
}

// Tasks returns a copy of the ordered task list.
func (c *Controller) Tasks() []domain.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.tasks)
}

// Columns partitions the current list into the board columns.
func (c *Controller) Columns() []domain.Column {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Partition(c.tasks)
}

// Task looks up one task by id.
func (c *Controller) Task(id string) (domain.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := domain.IndexOfTask(c.tasks, id)
	if idx < 0 {
		return domain.Task{}, false
	}
	return c.tasks[idx], true
}

// Busy reports whether any API operation is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// OpenForm shows the task form; a non-nil edit target switches it to edit mode.
func (c *Controller) OpenForm(edit *domain.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = FormState{Open: true}
	if edit != nil {
		target := *edit
		c.form.Editing = &target
	}
}

// CloseForm hides the form and clears the edit target.
func (c *Controller) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = FormState{}
}

// Form returns the current form state.
func (c *Controller) Form() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	form := c.form
	if form.Editing != nil {
		target := *form.Editing
		form.Editing = &target
	}
	return form
}

// begin marks one operation in flight and returns the matching release.
func (c *Controller) begin() func() {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}
}
