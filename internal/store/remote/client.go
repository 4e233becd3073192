package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"daily-tasks/internal/model"
	"daily-tasks/internal/store"
)

const maxResponseBytes = 4 << 20

const (
	actionAddTask        = "addTask"
	actionUpdateTask     = "updateTask"
	actionDeleteTask     = "deleteTask"
	actionClearOneTime   = "clearOneTimeTasks"
	actionResetRecurring = "resetRecurringTasks"
)

// Client talks to a spreadsheet-backed web app. Reads are a plain GET that
// returns the task array; writes are POSTs carrying an "action" field and
// answered with {"success": bool, "message": string}.
type Client struct {
	endpoint string
	client   *http.Client
}

var _ store.TaskStore = (*Client)(nil)

type request struct {
	Action                string           `json:"action"`
	Task                  *model.Task      `json:"task,omitempty"`
	TaskID                string           `json:"taskId,omitempty"`
	Updates               *model.TaskPatch `json:"updates,omitempty"`
	NewRecurringInstances *[]model.Task    `json:"newRecurringInstances,omitempty"`
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// New creates a client for the given endpoint. A zero timeout means no limit.
func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchAll(ctx context.Context) ([]model.Task, error) {
	const op = "fetch tasks"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, store.Transport(op, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, store.Transport(op, "", err)
	}

	var tasks []model.Task
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &tasks); err != nil {
			return nil, store.Transport(op, "", fmt.Errorf("decode tasks: %w", err))
		}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

func (c *Client) Add(ctx context.Context, task model.Task) error {
	return c.send(ctx, request{Action: actionAddTask, Task: &task})
}

func (c *Client) Update(ctx context.Context, id string, patch model.TaskPatch) error {
	return c.send(ctx, request{Action: actionUpdateTask, TaskID: id, Updates: &patch})
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.send(ctx, request{Action: actionDeleteTask, TaskID: id})
}

func (c *Client) ClearOneTime(ctx context.Context) error {
	return c.send(ctx, request{Action: actionClearOneTime})
}

func (c *Client) ResetRecurring(ctx context.Context, instances []model.Task) error {
	if instances == nil {
		instances = []model.Task{}
	}
	return c.send(ctx, request{Action: actionResetRecurring, NewRecurringInstances: &instances})
}

func (c *Client) send(ctx context.Context, payload request) error {
	op := payload.Action

	data, err := json.Marshal(payload)
	if err != nil {
		return store.Transport(op, "", fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return store.Transport(op, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return store.Transport(op, "", err)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return store.Transport(op, "", fmt.Errorf("decode response: %w", err))
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "API request failed"
		}
		return store.Transport(op, msg, nil)
	}
	return nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}
	return body, nil
}
