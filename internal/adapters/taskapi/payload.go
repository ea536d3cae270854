package taskapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/taskifyx/internal/board"
	"github.com/hylla/taskifyx/internal/domain"
)

// wireTask is a task as the API returns it. Identifiers may arrive as `_id`
// or `id`, encoded as either a string or a number.
type wireTask struct {
	UnderscoreID json.RawMessage `json:"_id"`
	ID           json.RawMessage `json:"id"`
	Title        json.RawMessage `json:"title"`
	Description  json.RawMessage `json:"description"`
	Status       json.RawMessage `json:"status"`
	CreatedAt    json.RawMessage `json:"createdAt"`
	UpdatedAt    json.RawMessage `json:"updatedAt"`
}

// taskBody is the request body for create and update calls.
type taskBody struct {
	ID          string     `json:"_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func draftBody(draft domain.TaskDraft) taskBody {
	return taskBody{
		Title:       draft.Title,
		Description: draft.Description,
		Status:      string(draft.Status),
	}
}

func fullBody(task domain.Task) taskBody {
	body := taskBody{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
	}
	if !task.CreatedAt.IsZero() {
		created := task.CreatedAt
		body.CreatedAt = &created
	}
	if !task.UpdatedAt.IsZero() {
		updated := task.UpdatedAt
		body.UpdatedAt = &updated
	}
	return body
}

func (w wireTask) toDomain() (domain.Task, error) {
	id, err := decodeID(w.UnderscoreID)
	if err != nil {
		return domain.Task{}, err
	}
	if id == "" {
		if id, err = decodeID(w.ID); err != nil {
			return domain.Task{}, err
		}
	}
	if id == "" {
		return domain.Task{}, fmt.Errorf("%w: task without id", board.ErrMalformedPayload)
	}

	task := domain.Task{
		ID:          id,
		Title:       decodeText(w.Title),
		Description: decodeText(w.Description),
		Status:      domain.Status(decodeText(w.Status)),
	}
	task.CreatedAt = parseTime(decodeText(w.CreatedAt))
	task.UpdatedAt = parseTime(decodeText(w.UpdatedAt))
	return task, nil
}

// decodeID accepts a JSON string or number and renders it as a string.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%w: task id: %v", board.ErrMalformedPayload, err)
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%w: task id: %v", board.ErrMalformedPayload, err)
	}
	return n.String(), nil
}

// decodeText returns a JSON string's value. Null, absent, and non-string
// values read as empty.
func decodeText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// parseTime reads an RFC3339 timestamp; anything unparseable becomes zero.
func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// decodeTask validates and decodes a single task document.
func decodeTask(s *schemas, data []byte) (domain.Task, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return domain.Task{}, err
	}
	if err := validate(s.task, doc); err != nil {
		return domain.Task{}, err
	}
	var w wireTask
	if err := json.Unmarshal(data, &w); err != nil {
		return domain.Task{}, fmt.Errorf("%w: %v", board.ErrMalformedPayload, err)
	}
	return w.toDomain()
}

// decodeTaskList validates and decodes a task array, preserving order.
func decodeTaskList(s *schemas, data []byte) ([]domain.Task, error) {
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	if err := validate(s.taskList, doc); err != nil {
		return nil, err
	}
	var ws []wireTask
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("%w: %v", board.ErrMalformedPayload, err)
	}
	out := make([]domain.Task, 0, len(ws))
	for _, w := range ws {
		task, err := w.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}

func decodeDocument(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty body", board.ErrMalformedPayload)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", board.ErrMalformedPayload, err)
	}
	return doc, nil
}
