package client

import (
	"sort"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/model"
)

// State is the client's mirror of the server's view for the current
// user: their tasks, the admin listing if they fetched one, and their
// notifications. States are values; Apply never mutates its input.
type State struct {
	// User is the authenticated user, zero when logged out.
	User model.User

	// Tasks is the merged created+assigned population, deduplicated
	// by ID and ordered newest first.
	Tasks []api.TaskView

	// AllTasks is the last fetched page of the admin listing.
	AllTasks   []api.TaskView
	Total      int
	Page       int
	TotalPages int

	// Notifications for the current user, newest first.
	Notifications []model.Notification
}

// Change is a server response or session event folded into the State.
type Change interface {
	isChange()
}

// SessionStarted records a successful login or registration.
type SessionStarted struct{ User model.User }

// SessionCleared wipes everything; applied on logout or a 401.
type SessionCleared struct{}

// TasksFetched replaces the task population with fresh created and
// assigned listings.
type TasksFetched struct {
	Created  []api.TaskView
	Assigned []api.TaskView
}

// AllTasksFetched replaces the admin listing page.
type AllTasksFetched struct{ Page api.TaskPageResponse }

// TaskCreated adds a newly created task to the population.
type TaskCreated struct{ Task api.TaskView }

// TaskUpdated replaces a task in the population with the server's copy.
type TaskUpdated struct{ Task api.TaskView }

// TaskDeleted drops a task and its notifications from the State.
type TaskDeleted struct{ ID string }

// NotificationsFetched replaces the notification list.
type NotificationsFetched struct{ Notifications []model.Notification }

// NotificationRead replaces one notification with the server's copy.
type NotificationRead struct{ Notification model.Notification }

// AllNotificationsRead marks every cached notification as read.
type AllNotificationsRead struct{}

func (SessionStarted) isChange()       {}
func (SessionCleared) isChange()       {}
func (TasksFetched) isChange()         {}
func (AllTasksFetched) isChange()      {}
func (TaskCreated) isChange()          {}
func (TaskUpdated) isChange()          {}
func (TaskDeleted) isChange()          {}
func (NotificationsFetched) isChange() {}
func (NotificationRead) isChange()     {}
func (AllNotificationsRead) isChange() {}

// Apply folds one change into the state and returns the next state.
func Apply(prev State, change Change) State {
	next := prev
	next.Tasks = append([]api.TaskView(nil), prev.Tasks...)
	next.AllTasks = append([]api.TaskView(nil), prev.AllTasks...)
	next.Notifications = append([]model.Notification(nil), prev.Notifications...)

	switch c := change.(type) {
	case SessionStarted:
		next = State{User: c.User}

	case SessionCleared:
		next = State{}

	case TasksFetched:
		next.Tasks = mergeTasks(c.Created, c.Assigned)

	case AllTasksFetched:
		next.AllTasks = append([]api.TaskView(nil), c.Page.Tasks...)
		next.Total = c.Page.Total
		next.Page = c.Page.Page
		next.TotalPages = c.Page.TotalPages

	case TaskCreated:
		next.Tasks = append([]api.TaskView{c.Task}, next.Tasks...)

	case TaskUpdated:
		for i := range next.Tasks {
			if next.Tasks[i].ID == c.Task.ID {
				next.Tasks[i] = c.Task
			}
		}
		for i := range next.AllTasks {
			if next.AllTasks[i].ID == c.Task.ID {
				next.AllTasks[i] = c.Task
			}
		}

	case TaskDeleted:
		next.Tasks = dropTask(next.Tasks, c.ID)
		next.AllTasks = dropTask(next.AllTasks, c.ID)
		kept := next.Notifications[:0]
		for _, n := range next.Notifications {
			if n.TaskID != c.ID {
				kept = append(kept, n)
			}
		}
		next.Notifications = kept

	case NotificationsFetched:
		next.Notifications = append([]model.Notification(nil), c.Notifications...)

	case NotificationRead:
		for i := range next.Notifications {
			if next.Notifications[i].ID == c.Notification.ID {
				next.Notifications[i] = c.Notification
			}
		}

	case AllNotificationsRead:
		for i := range next.Notifications {
			next.Notifications[i].Read = true
		}
	}

	return next
}

// CreatedTasks returns the cached tasks created by the current user.
func (s State) CreatedTasks() []api.TaskView {
	var out []api.TaskView
	for _, t := range s.Tasks {
		if t.CreatedBy.ID == s.User.ID {
			out = append(out, t)
		}
	}
	return out
}

// AssignedTasks returns the cached tasks assigned to the current user.
func (s State) AssignedTasks() []api.TaskView {
	var out []api.TaskView
	for _, t := range s.Tasks {
		for _, a := range t.AssignedTo {
			if a.ID == s.User.ID {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// UnreadCount returns how many cached notifications are unread.
func (s State) UnreadCount() int {
	count := 0
	for _, n := range s.Notifications {
		if !n.Read {
			count++
		}
	}
	return count
}

// mergeTasks combines two listings, deduplicating by ID and ordering
// newest first.
func mergeTasks(a, b []api.TaskView) []api.TaskView {
	seen := make(map[string]struct{}, len(a)+len(b))
	var merged []api.TaskView
	for _, t := range append(append([]api.TaskView(nil), a...), b...) {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		merged = append(merged, t)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}

func dropTask(tasks []api.TaskView, id string) []api.TaskView {
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return kept
}
