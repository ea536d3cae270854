package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/taskifyx/internal/app"
	"github.com/hylla/taskifyx/internal/domain"
)

// maxTaskEventsLimit caps one activity read.
const maxTaskEventsLimit = 200

// AppServiceAdapter maps transport contracts onto app.Service task APIs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter builds one common adapter over an app.Service instance.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// ListTasks lists every task in server order.
func (a *AppServiceAdapter) ListTasks(ctx context.Context) ([]Task, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	tasks, err := a.service.ListTasks(ctx)
	if err != nil {
		return nil, mapAppError("list tasks", err)
	}
	return TasksFromDomain(tasks), nil
}

// GetTask returns one task by id.
func (a *AppServiceAdapter) GetTask(ctx context.Context, taskID string) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	task, err := a.service.GetTask(ctx, taskID)
	if err != nil {
		return Task{}, mapAppError("get task", err)
	}
	return TaskFromDomain(task), nil
}

// CreateTask validates one draft and creates the task.
func (a *AppServiceAdapter) CreateTask(ctx context.Context, in CreateTaskRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return Task{}, err
	}
	task, err := a.service.CreateTask(ctx, app.CreateTaskInput{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
	})
	if err != nil {
		return Task{}, mapAppError("create task", err)
	}
	return TaskFromDomain(task), nil
}

// UpdateTask replaces the editable fields of the task at taskID.
func (a *AppServiceAdapter) UpdateTask(ctx context.Context, taskID string, in UpdateTaskRequest) (Task, error) {
	if err := a.ready(); err != nil {
		return Task{}, err
	}
	taskID = strings.TrimSpace(taskID)
	if bodyID := strings.TrimSpace(in.ID); bodyID != "" && bodyID != taskID {
		return Task{}, fmt.Errorf("body id %q does not match path id %q: %w", bodyID, taskID, ErrInvalidRequest)
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return Task{}, err
	}
	task, err := a.service.UpdateTask(ctx, app.UpdateTaskInput{
		TaskID:      taskID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
	})
	if err != nil {
		return Task{}, mapAppError("update task", err)
	}
	return TaskFromDomain(task), nil
}

// DeleteTask deletes one task by id.
func (a *AppServiceAdapter) DeleteTask(ctx context.Context, taskID string) error {
	if err := a.ready(); err != nil {
		return err
	}
	if err := a.service.DeleteTask(ctx, taskID); err != nil {
		return mapAppError("delete task", err)
	}
	return nil
}

// ListTaskEvents lists recent activity entries, newest first.
func (a *AppServiceAdapter) ListTaskEvents(ctx context.Context, in ListTaskEventsRequest) ([]TaskEvent, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if in.Limit < 0 {
		return nil, fmt.Errorf("limit must be >= 0: %w", ErrInvalidRequest)
	}
	limit := min(in.Limit, maxTaskEventsLimit)
	events, err := a.service.ListTaskEvents(ctx, in.TaskID, limit)
	if err != nil {
		return nil, mapAppError("list task events", err)
	}
	out := make([]TaskEvent, 0, len(events))
	for _, event := range events {
		out = append(out, TaskEvent{
			TaskID:     event.TaskID,
			Operation:  string(event.Operation),
			Status:     string(event.Status),
			Title:      event.Title,
			OccurredAt: event.OccurredAt,
		})
	}
	return out, nil
}

// ready reports whether the adapter has a backing service.
func (a *AppServiceAdapter) ready() error {
	if a == nil || a.service == nil {
		return errors.New("app service adapter is not configured")
	}
	return nil
}

// normalizeStatus accepts the board labels and their slugs; empty means unset.
func normalizeStatus(raw string) (domain.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return "", fmt.Errorf("status %q: %w", raw, errors.Join(ErrInvalidRequest, err))
	}
	return status, nil
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, app.ErrInvalidTaskID):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
