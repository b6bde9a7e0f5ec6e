package api

import (
	"time"

	"github.com/nhle/taskflow/internal/model"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login. Identifier matches a
// user's email (case-insensitive) or username.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// AuthResponse is returned by both register and login.
type AuthResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     time.Time `json:"due_date"`
	AssignedTo  []string  `json:"assigned_to"`
}

// UpdateTaskRequest is the body of PUT /tasks/{id}. Absent fields are
// left unchanged; assigned_to, when present, replaces the whole set.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  *[]string  `json:"assigned_to,omitempty"`
}

// UpdateStatusRequest is the body of PATCH /tasks/{id}.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TaskView is a task with its creator and assignees resolved to user
// summaries. The API never returns bare user IDs inside a task.
type TaskView struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      string              `json:"status"`
	Priority    string              `json:"priority"`
	DueDate     time.Time           `json:"due_date"`
	CreatedBy   model.UserSummary   `json:"created_by"`
	AssignedTo  []model.UserSummary `json:"assigned_to"`
	CreatedAt   time.Time           `json:"created_at"`
}

// TaskPageResponse is one page of the admin task listing.
type TaskPageResponse struct {
	Tasks      []TaskView `json:"tasks"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
}

// UsersResponse wraps user search results.
type UsersResponse struct {
	Users []model.UserSummary `json:"users"`
}

// MessageResponse carries a confirmation or error message.
type MessageResponse struct {
	Message string `json:"message"`
}
