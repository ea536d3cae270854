package domain

import "time"

// ChangeOperation names the kind of mutation recorded for a task.
type ChangeOperation string

const (
	ChangeOperationCreate ChangeOperation = "create"
	ChangeOperationUpdate ChangeOperation = "update"
	ChangeOperationMove   ChangeOperation = "move"
	ChangeOperationDelete ChangeOperation = "delete"
)

// ChangeEvent is one entry of the task activity ledger.
type ChangeEvent struct {
	TaskID     string
	Operation  ChangeOperation
	Status     Status
	Title      string
	OccurredAt time.Time
}

// ClassifyChange returns move when an update changed the task's column.
func ClassifyChange(prev, next Task) ChangeOperation {
	if prev.Status != next.Status {
		return ChangeOperationMove
	}
	return ChangeOperationUpdate
}
