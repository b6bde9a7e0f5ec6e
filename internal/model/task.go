package model

import "time"

// Status values a task moves through. The order is conventional, not
// enforced: an assignee may set any status at any time.
const (
	StatusToDo      = "To Do"
	StatusInProcess = "In Process"
	StatusCompleted = "Completed"
)

// Priority levels for a task.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// ValidStatus reports whether s is one of the three task statuses.
func ValidStatus(s string) bool {
	return s == StatusToDo || s == StatusInProcess || s == StatusCompleted
}

// ValidPriority reports whether p is one of the three task priorities.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Task is a unit of work created by one user and assigned to others.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title"`

	// Description is the full body text.
	Description string `json:"description"`

	// Status is one of the Status* constants.
	Status string `json:"status"`

	// Priority is one of the Priority* constants.
	Priority string `json:"priority"`

	// DueDate is when the task is expected to be completed.
	DueDate time.Time `json:"due_date"`

	// CreatedBy is the ID of the user who created the task.
	// It never changes after creation.
	CreatedBy string `json:"created_by"`

	// AssignedTo holds the IDs of the users assigned to the task.
	AssignedTo []string `json:"assigned_to"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
}

// IsAssignee reports whether userID is in the task's assignee set.
func (t Task) IsAssignee(userID string) bool {
	for _, id := range t.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}
