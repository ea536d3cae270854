package domain

import "slices"

// Position is a drop location: a column and an index relative to that column.
type Position struct {
	Column Status
	Index  int
}

// DragResult describes one completed drag gesture. Destination is nil when the
// task was dropped outside every column.
type DragResult struct {
	Source      Position
	Destination *Position
}

// Moves reports whether the gesture changes anything.
func (d DragResult) Moves() bool {
	if d.Destination == nil {
		return false
	}
	return *d.Destination != d.Source
}

// ApplyDrag returns a copy of tasks with the dragged task moved to the
// destination column and index. The moved task is returned with its new status.
// The destination index is interpreted against the list with the task already
// removed; an index past the end of the destination column appends after its
// last task, and an empty destination column appends to the end of the list.
func ApplyDrag(tasks []Task, drag DragResult) ([]Task, Task, error) {
	if !drag.Moves() {
		return nil, Task{}, ErrInvalidPosition
	}
	dest := *drag.Destination
	if !dest.Column.Known() || dest.Index < 0 {
		return nil, Task{}, ErrInvalidPosition
	}
	from := ListIndex(tasks, drag.Source.Column, drag.Source.Index)
	if from < 0 {
		return nil, Task{}, ErrInvalidPosition
	}

	out := slices.Clone(tasks)
	moved := out[from]
	out = slices.Delete(out, from, from+1)
	moved.Status = dest.Column

	to := ListIndex(out, dest.Column, dest.Index)
	if to < 0 {
		to = len(out)
		if last := lastIndexWithStatus(out, dest.Column); last >= 0 {
			to = last + 1
		}
	}
	out = slices.Insert(out, to, moved)
	return out, moved, nil
}

func lastIndexWithStatus(tasks []Task, status Status) int {
	for i := len(tasks) - 1; i >= 0; i-- {
		if tasks[i].Status == status {
			return i
		}
	}
	return -1
}

// PositionOf returns the column-relative position of the task with id.
func PositionOf(tasks []Task, id string) (Position, bool) {
	idx := IndexOfTask(tasks, id)
	if idx < 0 {
		return Position{}, false
	}
	status := tasks[idx].Status
	index := 0
	for _, task := range tasks[:idx] {
		if task.Status == status {
			index++
		}
	}
	return Position{Column: status, Index: index}, true
}
