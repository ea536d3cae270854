// Package taskapi is the HTTP client for the remote Task API.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hylla/taskifyx/internal/board"
	"github.com/hylla/taskifyx/internal/domain"
)

// DefaultBaseURL is the Task API root used when none is configured.
const DefaultBaseURL = "http://127.0.0.1:5000/api"

// maxErrorBody caps how much of a failing response is kept in StatusError.
const maxErrorBody = 512

// maxResponseBody caps how much of any response is read.
const maxResponseBody = 8 << 20

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout bounds each request. Zero disables the client-side timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the Task API over JSON/HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	schemas *schemas
}

var _ board.TaskAPI = (*Client)(nil)

// New constructs a client for the given base URL.
func New(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse task api base url %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("task api base url %q must use http or https", raw)
	}
	if cfg.Timeout < 0 {
		return nil, errors.New("task api timeout must be >= 0")
	}
	s, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{base: base, http: client, schemas: s}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ListTasks fetches all tasks in server order.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	data, err := c.do(ctx, http.MethodGet, c.tasksURL(""), nil)
	if err != nil {
		return nil, err
	}
	return decodeTaskList(c.schemas, data)
}

// CreateTask posts a draft and returns the created task with its id.
func (c *Client) CreateTask(ctx context.Context, draft domain.TaskDraft) (domain.Task, error) {
	data, err := c.do(ctx, http.MethodPost, c.tasksURL(""), draftBody(draft))
	if err != nil {
		return domain.Task{}, err
	}
	return decodeTask(c.schemas, data)
}

// UpdateTask sends the whole task and returns the server's copy.
func (c *Client) UpdateTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	if strings.TrimSpace(task.ID) == "" {
		return domain.Task{}, domain.ErrInvalidID
	}
	data, err := c.do(ctx, http.MethodPut, c.tasksURL(task.ID), fullBody(task))
	if err != nil {
		return domain.Task{}, err
	}
	return decodeTask(c.schemas, data)
}

// DeleteTask removes one task. Any response body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrInvalidID
	}
	_, err := c.do(ctx, http.MethodDelete, c.tasksURL(id), nil)
	return err
}

func (c *Client) tasksURL(id string) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/tasks"
	if id != "" {
		u.Path += "/" + id
		u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/tasks/" + url.PathEscape(id)
	}
	return u.String()
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, target string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, target, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := string(data)
		if len(excerpt) > maxErrorBody {
			excerpt = excerpt[:maxErrorBody]
		}
		return nil, &StatusError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: excerpt}
	}
	return data, nil
}
