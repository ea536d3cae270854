package domain

import (
	"slices"
	"strings"
)

// Status names the board column a task belongs to.
type Status string

const (
	StatusTodo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

var boardStatuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Statuses returns the board statuses in column order.
func Statuses() []Status {
	return slices.Clone(boardStatuses)
}

// Known reports whether s is one of the board statuses.
func (s Status) Known() bool {
	return slices.Contains(boardStatuses, s)
}

// ParseStatus resolves user input to a board status. Besides the exact
// labels it accepts case-insensitive slugs such as "todo", "in-progress", and "done".
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	if s := Status(raw); s.Known() {
		return s, nil
	}
	switch slug(raw) {
	case "todo":
		return StatusTodo, nil
	case "inprogress", "doing", "wip":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	}
	return "", ErrInvalidStatus
}

// ColumnIndex returns the position of s among the board columns, or -1.
func ColumnIndex(s Status) int {
	return slices.Index(boardStatuses, s)
}

// Column is one board column: a status and the tasks that carry it, in list order.
type Column struct {
	Status Status
	Tasks  []Task
}

// Partition splits tasks into the three board columns. Tasks with an
// unrecognized status land in no column.
func Partition(tasks []Task) []Column {
	out := make([]Column, 0, len(boardStatuses))
	for _, status := range boardStatuses {
		out = append(out, Column{Status: status, Tasks: TasksWithStatus(tasks, status)})
	}
	return out
}

// TasksWithStatus filters tasks by exact status equality, keeping list order.
func TasksWithStatus(tasks []Task, status Status) []Task {
	out := make([]Task, 0)
	for _, task := range tasks {
		if task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

// ListIndex maps a column-relative index to an index into the unified task list.
// It returns -1 when the column has no task at that index.
func ListIndex(tasks []Task, status Status, columnIndex int) int {
	if columnIndex < 0 {
		return -1
	}
	seen := 0
	for i, task := range tasks {
		if task.Status != status {
			continue
		}
		if seen == columnIndex {
			return i
		}
		seen++
	}
	return -1
}

func slug(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
