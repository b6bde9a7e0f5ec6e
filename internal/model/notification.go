package model

import "time"

// NotificationType identifies what kind of event produced a notification.
type NotificationType string

const (
	NotificationTaskAssigned NotificationType = "task_assigned"
	NotificationTaskUpdated  NotificationType = "task_updated"
)

// Notification is an in-app alert targeted at a single user about
// activity on a task.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id" db:"id"`

	// Type identifies the event that produced this notification.
	Type NotificationType `json:"type" db:"type"`

	// TaskID links this notification to the originating task.
	TaskID string `json:"task_id" db:"task_id"`

	// UserID is the user this notification is addressed to.
	UserID string `json:"user_id" db:"user_id"`

	// Message is the human-readable notification text.
	Message string `json:"message" db:"message"`

	// Read indicates whether the target user has seen this notification.
	Read bool `json:"read" db:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
