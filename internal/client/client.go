// Package client provides a typed HTTP client for the taskflow API and a
// reducer-style cache of the server state it observes.
package client

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

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/model"
)

// ErrUnauthorized is returned when the server rejects the session's
// credential. Callers should tear the session down and re-authenticate.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the taskflow API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a client for the given address or URL.
func NewClient(addr string) *Client {
	baseURL := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{baseURL: baseURL, client: &http.Client{}}
}

// SetToken attaches a bearer token to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Register creates an account and returns the new user with a session
// token.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var response api.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Login authenticates by email or username and returns the user with a
// session token.
func (c *Client) Login(ctx context.Context, identifier, password string) (*api.AuthResponse, error) {
	var response api.AuthResponse
	req := api.LoginRequest{Identifier: identifier, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// AllTasks returns one page of the admin task listing.
func (c *Client) AllTasks(ctx context.Context, page int) (*api.TaskPageResponse, error) {
	var response api.TaskPageResponse
	path := fmt.Sprintf("/tasks?page=%d", page)
	if err := c.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CreateTask creates a task owned by the current user.
func (c *Client) CreateTask(ctx context.Context, req api.CreateTaskRequest) (*api.TaskView, error) {
	var response api.TaskView
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CreatedTasks returns the tasks the current user created.
func (c *Client) CreatedTasks(ctx context.Context) ([]api.TaskView, error) {
	var response []api.TaskView
	if err := c.do(ctx, http.MethodGet, "/tasks/created", nil, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// AssignedTasks returns the tasks the current user is assigned to.
func (c *Client) AssignedTasks(ctx context.Context) ([]api.TaskView, error) {
	var response []api.TaskView
	if err := c.do(ctx, http.MethodGet, "/tasks/assigned", nil, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// UpdateTask applies a full update to a task the current user created.
func (c *Client) UpdateTask(ctx context.Context, taskID string, req api.UpdateTaskRequest) (*api.TaskView, error) {
	var response api.TaskView
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(taskID), req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// UpdateStatus changes the status of a task the current user is
// assigned to.
func (c *Client) UpdateStatus(ctx context.Context, taskID, status string) (*api.TaskView, error) {
	var response api.TaskView
	req := api.UpdateStatusRequest{Status: status}
	if err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(taskID), req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteTask deletes a task the current user created.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	var response api.MessageResponse
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(taskID), nil, &response)
}

// Notifications returns the current user's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	var response []model.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications", nil, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// MarkRead marks one of the current user's notifications as read.
func (c *Client) MarkRead(ctx context.Context, notificationID string) (*model.Notification, error) {
	var response model.Notification
	path := "/notifications/" + url.PathEscape(notificationID)
	if err := c.do(ctx, http.MethodPatch, path, struct{}{}, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// MarkAllRead marks all of the current user's notifications as read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	var response api.MessageResponse
	return c.do(ctx, http.MethodPost, "/notifications/read", struct{}{}, &response)
}

// SearchUsers matches users by name, username, or email substring.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]model.UserSummary, error) {
	var response api.UsersResponse
	path := "/users/search?query=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Users, nil
}

// do issues one request and decodes the JSON response into out. Non-2xx
// responses become an *APIError; a 401 additionally matches
// ErrUnauthorized via errors.Is.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := readErrorMessage(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: message}
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, message)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func readErrorMessage(body io.Reader) string {
	var payload api.MessageResponse
	if err := json.NewDecoder(body).Decode(&payload); err != nil || payload.Message == "" {
		return "unknown error"
	}
	return payload.Message
}
