package app

import (
	"context"
	"strings"
	"time"

	"github.com/hylla/taskifyx/internal/domain"
)

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service owns the server-side task lifecycle behind the REST and MCP transports.
type Service struct {
	repo  Repository
	idGen IDGenerator
	clock Clock
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:  repo,
		idGen: idGen,
		clock: clock,
	}
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      domain.Status
}

// UpdateTaskInput holds input values for update task operations. An empty
// Status keeps the stored status.
type UpdateTaskInput struct {
	TaskID      string
	Title       string
	Description string
	Status      domain.Status
}

// CreateTask validates and stores a new task with a generated id.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	task, err := domain.NewTask(domain.TaskInput{
		ID:          s.idGen(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// UpdateTask replaces the editable fields of one task.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (domain.Task, error) {
	in.TaskID = strings.TrimSpace(in.TaskID)
	if in.TaskID == "" {
		return domain.Task{}, ErrInvalidTaskID
	}
	task, err := s.repo.GetTask(ctx, in.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.UpdateDetails(in.Title, in.Description, in.Status, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes task.
func (s *Service) DeleteTask(ctx context.Context, taskID string) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return ErrInvalidTaskID
	}
	return s.repo.DeleteTask(ctx, taskID)
}

// GetTask returns task.
func (s *Service) GetTask(ctx context.Context, taskID string) (domain.Task, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return domain.Task{}, ErrInvalidTaskID
	}
	return s.repo.GetTask(ctx, taskID)
}

// ListTasks lists tasks in creation order.
func (s *Service) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// ListTaskEvents lists recent activity, newest first. An empty taskID covers every task.
func (s *Service) ListTaskEvents(ctx context.Context, taskID string, limit int) ([]domain.ChangeEvent, error) {
	return s.repo.ListTaskEvents(ctx, strings.TrimSpace(taskID), limit)
}
