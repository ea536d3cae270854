package board

import (
	"context"
	"errors"

	"github.com/hylla/taskifyx/internal/domain"
)

// ErrMalformedPayload reports a Task API response whose shape is not what the
// operation expects, such as a list response that is not an array.
var ErrMalformedPayload = errors.New("malformed task payload")

// TaskAPI is the remote task collection the board mirrors.
type TaskAPI interface {
	ListTasks(context.Context) ([]domain.Task, error)
	CreateTask(context.Context, domain.TaskDraft) (domain.Task, error)
	UpdateTask(context.Context, domain.Task) (domain.Task, error)
	DeleteTask(context.Context, string) error
}

// NoticeKind classifies one user-facing notification.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notifier shows transient notifications to the user.
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind NoticeKind, message string)

func (f NotifierFunc) Notify(kind NoticeKind, message string) {
	f(kind, message)
}

// Logger receives diagnostic events.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
