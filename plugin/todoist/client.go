// Package todoist is a minimal client for the Todoist REST API covering the
// calls the bot makes: create a task, delete a task, list projects.
package todoist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/hrygo/haircutbot/server/timezone"
)

const (
	// DefaultBaseURL is the Todoist REST API root.
	DefaultBaseURL = "https://api.todoist.com/rest/v2"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 30 * time.Second

	// PriorityUrgent is the Todoist API value shown as "p1" in the apps.
	PriorityUrgent = 4
	// DescriptionFromBot is used when the user left no comment.
	DescriptionFromBot = "добавлено через бот"
)

var (
	// ErrMissingToken is returned when the client has no API token.
	ErrMissingToken = errors.New("todoist API token is not configured")
	// ErrMissingTaskID is returned when a task ID is blank.
	ErrMissingTaskID = errors.New("task ID is empty")
)

// APIError is a non-2xx response from Todoist.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("todoist API returned status %d: %s", e.StatusCode, e.Body)
}

// TaskRequest is the body of POST /tasks.
type TaskRequest struct {
	Content      string `json:"content"`
	Description  string `json:"description"`
	DueDatetime  string `json:"due_datetime"`
	Duration     int    `json:"duration"`
	DurationUnit string `json:"duration_unit"`
	Priority     int    `json:"priority"`
}

// NewTaskRequest builds a task starting at start (as wall time in its own
// location) lasting d. A blank description becomes DescriptionFromBot.
func NewTaskRequest(title, description string, start time.Time, d time.Duration) TaskRequest {
	if strings.TrimSpace(description) == "" {
		description = DescriptionFromBot
	}
	return TaskRequest{
		Content:      title,
		Description:  description,
		DueDatetime:  timezone.FormatDue(start, nil),
		Duration:     int(d / time.Minute),
		DurationUnit: "minute",
		Priority:     PriorityUrgent,
	}
}

// Due is the due block of a task.
type Due struct {
	Date     string `json:"date"`
	Datetime string `json:"datetime,omitempty"`
	String   string `json:"string,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Task is a Todoist task as returned by the API.
type Task struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Due         *Due   `json:"due,omitempty"`
	URL         string `json:"url,omitempty"`
}

// TaskClient is the part of the client the appointment service needs.
type TaskClient interface {
	CreateTask(ctx context.Context, req TaskRequest) (*Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Client talks to the Todoist REST API with a single token.
type Client struct {
	token   string
	client  *resty.Client
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client. A timeout set on
// hc is kept unless WithTimeout is given too.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = resty.NewWithClient(hc)
	}
}

// WithTimeout overrides DefaultTimeout regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger enables debug logging of every response.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		token:  strings.TrimSpace(token),
		client: resty.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	switch {
	case c.timeout > 0:
		c.client.SetTimeout(c.timeout)
	case c.client.GetClient().Timeout == 0:
		c.client.SetTimeout(DefaultTimeout)
	}

	c.client.
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
			c.logger.Debug("todoist response",
				slog.String("method", res.Request.Method),
				slog.String("url", res.Request.URL),
				slog.Int("status", res.StatusCode()),
				slog.Duration("elapsed", res.Time()),
			)
			return nil
		})
	if c.token != "" {
		c.client.SetAuthToken(c.token)
	}
	return c
}

// CreateTask creates a task and returns it with its ID.
func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (*Task, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	res, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/tasks")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create todoist task")
	}
	if res.IsError() {
		return nil, &APIError{StatusCode: res.StatusCode(), Body: res.String()}
	}

	var task Task
	if err := json.Unmarshal(res.Body(), &task); err != nil {
		return nil, errors.Wrap(err, "failed to decode todoist task")
	}
	if task.ID == "" {
		return nil, errors.New("todoist returned a task without ID")
	}
	return &task, nil
}

// DeleteTask deletes the task with id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if c.token == "" {
		return ErrMissingToken
	}
	if strings.TrimSpace(id) == "" {
		return ErrMissingTaskID
	}

	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/tasks/{id}")
	if err != nil {
		return errors.Wrapf(err, "failed to delete todoist task %s", id)
	}
	if res.IsError() {
		return &APIError{StatusCode: res.StatusCode(), Body: res.String()}
	}
	return nil
}

// TestConnection checks the token by listing projects.
func (c *Client) TestConnection(ctx context.Context) error {
	if c.token == "" {
		return ErrMissingToken
	}

	res, err := c.client.R().
		SetContext(ctx).
		Get("/projects")
	if err != nil {
		return errors.Wrap(err, "failed to reach todoist")
	}
	if res.IsError() {
		return &APIError{StatusCode: res.StatusCode(), Body: res.String()}
	}
	return nil
}

// Ensure Client implements TaskClient
var _ TaskClient = (*Client)(nil)
