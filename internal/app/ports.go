package app

import (
	"context"

	"github.com/hylla/taskifyx/internal/domain"
)

// Repository represents repository data used by this package.
type Repository interface {
	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, string) (domain.Task, error)
	ListTasks(context.Context) ([]domain.Task, error)
	DeleteTask(context.Context, string) error
	ListTaskEvents(context.Context, string, int) ([]domain.ChangeEvent, error)
}
