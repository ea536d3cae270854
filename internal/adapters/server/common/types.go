// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/hylla/taskifyx/internal/domain"
)

// ErrInvalidRequest reports malformed or rejected task input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// Task is the wire shape of one task. The identifier is serialized as `_id`.
type Task struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskFromDomain maps one domain task onto its wire shape.
func TaskFromDomain(t domain.Task) Task {
	return Task{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TasksFromDomain maps a task list onto wire shapes and never returns nil.
func TasksFromDomain(tasks []domain.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskFromDomain(t))
	}
	return out
}

// TaskEvent is the wire shape of one activity ledger entry.
type TaskEvent struct {
	TaskID     string    `json:"taskId"`
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurredAt"`
}

// CreateTaskRequest carries a task draft. It has no id; the server assigns one.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// UpdateTaskRequest carries the full task as sent by clients on PUT. Server-owned
// fields are accepted and ignored; a body id that disagrees with the path is rejected.
type UpdateTaskRequest struct {
	ID          string     `json:"_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// ListTaskEventsRequest filters activity ledger reads.
type ListTaskEventsRequest struct {
	TaskID string
	Limit  int
}

// TaskService defines the task operations exposed by every server transport.
type TaskService interface {
	ListTasks(context.Context) ([]Task, error)
	GetTask(context.Context, string) (Task, error)
	CreateTask(context.Context, CreateTaskRequest) (Task, error)
	UpdateTask(context.Context, string, UpdateTaskRequest) (Task, error)
	DeleteTask(context.Context, string) error
	ListTaskEvents(context.Context, ListTaskEventsRequest) ([]TaskEvent, error)
}
