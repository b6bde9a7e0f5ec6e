// Package policy enforces who may mutate tasks and notifications, and
// computes the notification fan-out each mutation produces.
//
// The rules, in brief: a task's creator may edit, reprioritize, and delete
// it; an assignee may only change its status; notifications belong to their
// target user. Assignment fan-out notifies only users newly added to a
// task's assignee set.
package policy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
)

// Service applies the authorization and fan-out rules on top of a Store.
type Service struct {
	store store.Store
}

// NewService creates a policy service over the given store.
func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// CreateTaskInput holds the fields for a new task. Status and Priority
// default to "To Do" and "Medium" when empty.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     time.Time
	AssignedTo  []string
}

// UpdateTaskInput holds the fields for a full task update. Nil fields are
// left unchanged. AssignedTo, when set, replaces the whole assignee set.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	AssignedTo  *[]string
}

// CreateTask creates a task owned by the requester and fans out one
// task_assigned notification per listed assignee.
func (p *Service) CreateTask(ctx context.Context, requester model.User, input CreateTaskInput) (*model.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if input.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", ErrValidation)
	}
	if input.Status != "" && !model.ValidStatus(input.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, input.Status)
	}
	if input.Priority != "" && !model.ValidPriority(input.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, input.Priority)
	}

	task, err := p.store.CreateTask(ctx, model.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		CreatedBy:   requester.ID,
		AssignedTo:  input.AssignedTo,
	})
	if err != nil {
		return nil, err
	}

	ns := assignmentFanout(task.ID, task.AssignedTo,
		fmt.Sprintf("You have been assigned a new task: %s", task.Title))
	if err := p.store.CreateNotifications(ctx, ns); err != nil {
		return nil, fmt.Errorf("notifying assignees: %w", err)
	}

	return task, nil
}

// UpdateTask applies a full update to a task. Only the creator may do
// this. When the assignee set grows, each newly added assignee receives a
// task_assigned notification; assignees already on the task receive none.
func (p *Service) UpdateTask(ctx context.Context, requester model.User, taskID string, input UpdateTaskInput) (*model.Task, error) {
	task, err := p.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.CreatedBy != requester.ID {
		return nil, fmt.Errorf("updating task %s: %w", taskID, ErrNotAuthorized)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !model.ValidStatus(*input.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *input.Status)
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !model.ValidPriority(*input.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrValidation, *input.Priority)
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = *input.DueDate
	}

	var added []string
	if input.AssignedTo != nil {
		added = newAssignees(task.AssignedTo, *input.AssignedTo)
		task.AssignedTo = *input.AssignedTo
	}

	if err := p.store.UpdateTask(ctx, *task); err != nil {
		return nil, translateStoreErr(err)
	}

	if len(added) > 0 {
		ns := assignmentFanout(task.ID, added,
			fmt.Sprintf("You have been assigned to the task: %s", task.Title))
		if err := p.store.CreateNotifications(ctx, ns); err != nil {
			return nil, fmt.Errorf("notifying new assignees: %w", err)
		}
	}

	return p.getTask(ctx, taskID)
}

// UpdateStatus changes only a task's status. Any current assignee may do
// this, whether or not they created the task; nobody else may, including
// the creator if they are not assigned. No notification is produced.
func (p *Service) UpdateStatus(ctx context.Context, requester model.User, taskID, status string) (*model.Task, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	task, err := p.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsAssignee(requester.ID) {
		return nil, fmt.Errorf("updating status of task %s: %w", taskID, ErrNotAuthorized)
	}

	task.Status = status
	if err := p.store.UpdateTask(ctx, *task); err != nil {
		return nil, translateStoreErr(err)
	}

	return p.getTask(ctx, taskID)
}

// DeleteTask removes a task and all notifications referencing it. Only
// the creator may delete.
func (p *Service) DeleteTask(ctx context.Context, requester model.User, taskID string) error {
	task, err := p.getTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.CreatedBy != requester.ID {
		return fmt.Errorf("deleting task %s: %w", taskID, ErrNotAuthorized)
	}

	if err := p.store.DeleteTask(ctx, taskID); err != nil {
		return translateStoreErr(err)
	}
	return nil
}

// ListCreated returns the tasks the requester created, newest first.
func (p *Service) ListCreated(ctx context.Context, requester model.User) ([]model.Task, error) {
	return p.store.GetTasksCreatedBy(ctx, requester.ID)
}

// ListAssigned returns the tasks the requester is assigned to, newest first.
func (p *Service) ListAssigned(ctx context.Context, requester model.User) ([]model.Task, error) {
	return p.store.GetTasksAssignedTo(ctx, requester.ID)
}

// ListAll returns one page of every task in the system, newest first.
// Only admins may call it.
func (p *Service) ListAll(ctx context.Context, requester model.User, page, pageSize int) (*store.TaskPage, error) {
	if requester.Role != model.RoleAdmin {
		return nil, fmt.Errorf("listing all tasks: %w", ErrNotAuthorized)
	}
	if page < 1 {
		page = 1
	}
	return p.store.GetAllTasks(ctx, pageSize, (page-1)*pageSize)
}

// ListNotifications returns the requester's notifications, newest first.
func (p *Service) ListNotifications(ctx context.Context, requester model.User) ([]model.Notification, error) {
	return p.store.GetNotificationsForUser(ctx, requester.ID)
}

// MarkNotificationRead marks one notification as read. Only its target
// user may do so; marking an already-read notification succeeds again.
func (p *Service) MarkNotificationRead(ctx context.Context, requester model.User, id string) (*model.Notification, error) {
	n, err := p.store.GetNotificationByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	if n.UserID != requester.ID {
		return nil, fmt.Errorf("marking notification %s: %w", id, ErrNotAuthorized)
	}

	updated, err := p.store.MarkNotificationRead(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return updated, nil
}

// MarkAllNotificationsRead marks all of the requester's unread
// notifications as read.
func (p *Service) MarkAllNotificationsRead(ctx context.Context, requester model.User) error {
	return p.store.MarkAllNotificationsRead(ctx, requester.ID)
}

// SearchUsers matches users by name, username, or email substring.
func (p *Service) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	return p.store.SearchUsers(ctx, query)
}

func (p *Service) getTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := p.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return task, nil
}

// newAssignees returns the IDs present in next but not in prev.
func newAssignees(prev, next []string) []string {
	existing := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		existing[id] = struct{}{}
	}

	var added []string
	seen := make(map[string]struct{}, len(next))
	for _, id := range next {
		if _, ok := existing[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		added = append(added, id)
	}
	return added
}

// assignmentFanout builds one task_assigned notification per user ID.
func assignmentFanout(taskID string, userIDs []string, message string) []model.Notification {
	ns := make([]model.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		ns = append(ns, model.Notification{
			Type:    model.NotificationTaskAssigned,
			TaskID:  taskID,
			UserID:  userID,
			Message: message,
		})
	}
	return ns
}

// translateStoreErr maps the store's not-found sentinel onto the policy's.
func translateStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
