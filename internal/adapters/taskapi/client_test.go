package taskapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hylla/taskifyx/internal/board"
	"github.com/hylla/taskifyx/internal/domain"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) add(req recordedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *recorder) {
	t.Helper()
	seen := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.EscapedPath()}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.Body)
		}
		seen.add(rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL + "/api/"})
	require.NoError(t, err)
	return client, seen
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestListTasksDecodesUnderscoreAndNumericIDs(t *testing.T) {
	client, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `[
			{"_id":"a1","title":"first","description":"d","status":"To Do","createdAt":"2026-02-21T12:00:00Z"},
			{"id":7,"title":"second","description":null,"status":"Done"}
		]`)
	})

	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "a1", tasks[0].ID)
	assert.Equal(t, domain.StatusTodo, tasks[0].Status)
	assert.Equal(t, time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC), tasks[0].CreatedAt)
	assert.Equal(t, "7", tasks[1].ID)
	assert.Empty(t, tasks[1].Description)

	require.Len(t, seen.all(), 1)
	assert.Equal(t, http.MethodGet, seen.all()[0].Method)
	assert.Equal(t, "/api/tasks", seen.all()[0].Path)
}

func TestListTasksKeepsTasksWithUnreadableFields(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `[
			{"_id":"a1","title":"keep me","status":"To Do"},
			{"_id":"a2","status":null},
			{"_id":"a3","title":null,"status":"Done","description":42,"createdAt":7}
		]`)
	})

	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, domain.Status(""), tasks[1].Status)
	assert.Empty(t, tasks[2].Title)
	assert.Empty(t, tasks[2].Description)
	assert.Equal(t, domain.StatusDone, tasks[2].Status)
	assert.True(t, tasks[2].CreatedAt.IsZero())

	var notices []string
	ctrl := board.New(client, board.WithNotifier(board.NotifierFunc(func(kind board.NoticeKind, msg string) {
		notices = append(notices, msg)
	})))
	require.NoError(t, ctrl.Load(context.Background()))
	assert.Empty(t, notices)
	assert.Len(t, ctrl.Tasks(), 3)

	var shown []string
	for _, col := range ctrl.Columns() {
		for _, task := range col.Tasks {
			shown = append(shown, task.ID)
		}
	}
	assert.Equal(t, []string{"a1", "a3"}, shown)
}

func TestListTasksRejectsNonArray(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"tasks":[]}`)
	})

	_, err := client.ListTasks(context.Background())
	require.ErrorIs(t, err, board.ErrMalformedPayload)
}

func TestListTasksRejectsTaskWithoutID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `[{"title":"orphan","status":"To Do"}]`)
	})

	_, err := client.ListTasks(context.Background())
	require.ErrorIs(t, err, board.ErrMalformedPayload)
}

func TestListTasksRejectsInvalidJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `[{`)
	})

	_, err := client.ListTasks(context.Background())
	require.ErrorIs(t, err, board.ErrMalformedPayload)
}

func TestCreateTaskPostsDraft(t *testing.T) {
	client, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusCreated, `{"_id":"n1","title":"write","description":"","status":"In Progress"}`)
	})

	task, err := client.CreateTask(context.Background(), domain.TaskDraft{Title: "write", Status: domain.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, "n1", task.ID)
	assert.Equal(t, domain.StatusInProgress, task.Status)

	req := seen.all()[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/tasks", req.Path)
	assert.Equal(t, map[string]any{"title": "write", "description": "", "status": "In Progress"}, req.Body)
}

func TestUpdateTaskPutsFullTask(t *testing.T) {
	client, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"_id":"a b","title":"renamed","status":"Done"}`)
	})

	updated, err := client.UpdateTask(context.Background(), domain.Task{ID: "a b", Title: "renamed", Status: domain.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	req := seen.all()[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/tasks/a%20b", req.Path)
	assert.Equal(t, "a b", req.Body["_id"])
	assert.NotContains(t, req.Body, "createdAt")
}

func TestUpdateTaskRequiresID(t *testing.T) {
	client, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{}`)
	})

	_, err := client.UpdateTask(context.Background(), domain.Task{Title: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidID)
	assert.Empty(t, seen.all())
}

func TestDeleteTaskIgnoresBody(t *testing.T) {
	client, seen := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteTask(context.Background(), "a1"))
	assert.Equal(t, http.MethodDelete, seen.all()[0].Method)
	assert.Equal(t, "/api/tasks/a1", seen.all()[0].Path)
}

func TestNonSuccessStatusReturnsStatusError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusInternalServerError, `{"error":{"code":"internal"}}`)
	})

	err := client.DeleteTask(context.Background(), "a1")
	require.ErrorIs(t, err, ErrRequestFailed)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Contains(t, statusErr.Error(), "internal")
	assert.NotErrorIs(t, err, board.ErrMalformedPayload)
}

func TestNewValidatesConfig(t *testing.T) {
	client, err := New(Config{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())

	_, err = New(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "http://example.com", Timeout: -time.Second})
	assert.Error(t, err)
}
