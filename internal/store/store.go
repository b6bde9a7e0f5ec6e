package store

import (
	"context"
	"errors"

	"github.com/nhle/taskflow/internal/model"
)

// Sentinel errors returned by Store implementations. Callers distinguish
// them with errors.Is.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a unique
	// constraint (username or email already taken).
	ErrDuplicate = errors.New("duplicate unique field")
)

// TaskPage is one page of an admin task listing along with the total
// number of tasks across all pages.
type TaskPage struct {
	Tasks []model.Task
	Total int
}

// Store defines the persistence interface for users, tasks, and
// notifications.
type Store interface {
	// === Users ===

	CreateUser(ctx context.Context, user model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// GetUserByIdentifier looks a user up by email (case-insensitive)
	// or username (exact).
	GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]model.User, error)
	// SearchUsers matches query as a case-insensitive substring of
	// full name, username, or email. An empty query matches nothing.
	SearchUsers(ctx context.Context, query string) ([]model.User, error)

	// === Tasks ===

	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	// UpdateTask rewrites the task's mutable fields and replaces its
	// assignee set. CreatedBy and CreatedAt are never touched.
	UpdateTask(ctx context.Context, task model.Task) error
	// DeleteTask removes the task and every notification referencing it.
	DeleteTask(ctx context.Context, id string) error
	GetTasksCreatedBy(ctx context.Context, userID string) ([]model.Task, error)
	GetTasksAssignedTo(ctx context.Context, userID string) ([]model.Task, error)
	// GetAllTasks returns one page of all tasks, newest first.
	GetAllTasks(ctx context.Context, limit, offset int) (*TaskPage, error)

	// === Notifications ===

	CreateNotifications(ctx context.Context, ns []model.Notification) error
	GetNotificationByID(ctx context.Context, id string) (*model.Notification, error)
	// GetNotificationsForUser returns the user's notifications,
	// newest first.
	GetNotificationsForUser(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) error
}
