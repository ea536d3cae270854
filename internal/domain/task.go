package domain

import (
	"strings"
	"time"
)

type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskDraft carries the client-editable fields of a task that has no id yet.
type TaskDraft struct {
	Title       string
	Description string
	Status      Status
}

type TaskInput struct {
	ID          string
	Title       string
	Description string
	Status      Status
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !in.Status.Known() {
		return Task{}, ErrInvalidStatus
	}

	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

func (t *Task) UpdateDetails(title, description string, status Status, now time.Time) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return ErrInvalidTitle
	}
	if status == "" {
		status = t.Status
	}
	if !status.Known() {
		return ErrInvalidStatus
	}
	t.Title = title
	t.Description = description
	t.Status = status
	t.UpdatedAt = now.UTC()
	return nil
}

// Draft returns the editable fields of t.
func (t Task) Draft() TaskDraft {
	return TaskDraft{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
	}
}

// IndexOfTask returns the position of the task with id in tasks, or -1.
func IndexOfTask(tasks []Task, id string) int {
	for i, task := range tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}
