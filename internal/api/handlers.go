package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/policy"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload RegisterRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(payload.FullName) == "" ||
		strings.TrimSpace(payload.Username) == "" ||
		strings.TrimSpace(payload.Email) == "" ||
		payload.Password == "" {
		s.writeError(w, r, fmt.Errorf("%w: full name, username, email, and password are required", policy.ErrValidation))
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.store.CreateUser(r.Context(), model.User{
		FullName:     payload.FullName,
		Username:     payload.Username,
		Email:        payload.Email,
		PasswordHash: hash,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{User: *user, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload LoginRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.store.GetUserByIdentifier(r.Context(), payload.Identifier)
	if err != nil || !auth.CheckPassword(user.PasswordHash, payload.Password) {
		// Unknown identifier and wrong password are reported
		// identically.
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: *user, Token: token})
}

func (s *Server) handleListAllTasks(w http.ResponseWriter, r *http.Request, user model.User) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, r, fmt.Errorf("%w: bad page %q", policy.ErrValidation, raw))
			return
		}
		page = parsed
	}

	result, err := s.policy.ListAll(r.Context(), user, page, s.pageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	views, err := s.taskViews(r.Context(), result.Tasks)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	totalPages := (result.Total + s.pageSize - 1) / s.pageSize
	writeJSON(w, http.StatusOK, TaskPageResponse{
		Tasks:      views,
		Total:      result.Total,
		Page:       page,
		TotalPages: totalPages,
	})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, user model.User) {
	var payload CreateTaskRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.policy.CreateTask(r.Context(), user, policy.CreateTaskInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
		Priority:    payload.Priority,
		DueDate:     payload.DueDate,
		AssignedTo:  payload.AssignedTo,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.taskView(r.Context(), *task)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListCreated(w http.ResponseWriter, r *http.Request, user model.User) {
	tasks, err := s.policy.ListCreated(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTaskList(w, r, tasks)
}

func (s *Server) handleListAssigned(w http.ResponseWriter, r *http.Request, user model.User) {
	tasks, err := s.policy.ListAssigned(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeTaskList(w, r, tasks)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, user model.User) {
	var payload UpdateTaskRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.policy.UpdateTask(r.Context(), user, r.PathValue("id"), policy.UpdateTaskInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
		Priority:    payload.Priority,
		DueDate:     payload.DueDate,
		AssignedTo:  payload.AssignedTo,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.taskView(r.Context(), *task)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request, user model.User) {
	var payload UpdateStatusRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	task, err := s.policy.UpdateStatus(r.Context(), user, r.PathValue("id"), payload.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	view, err := s.taskView(r.Context(), *task)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, user model.User) {
	if err := s.policy.DeleteTask(r.Context(), user, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "task deleted")
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request, user model.User) {
	ns, err := s.policy.ListNotifications(r.Context(), user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ns == nil {
		ns = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, ns)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request, user model.User) {
	n, err := s.policy.MarkNotificationRead(r.Context(), user, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request, user model.User) {
	if err := s.policy.MarkAllNotificationsRead(r.Context(), user); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "all notifications marked as read")
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request, user model.User) {
	users, err := s.policy.SearchUsers(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summaries := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, u.Summary())
	}
	writeJSON(w, http.StatusOK, UsersResponse{Users: summaries})
}

func (s *Server) writeTaskList(w http.ResponseWriter, r *http.Request, tasks []model.Task) {
	views, err := s.taskViews(r.Context(), tasks)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// taskViews resolves creator and assignee IDs to user summaries for a
// batch of tasks with a single user lookup.
func (s *Server) taskViews(ctx context.Context, tasks []model.Task) ([]TaskView, error) {
	idSet := make(map[string]struct{})
	for _, t := range tasks {
		idSet[t.CreatedBy] = struct{}{}
		for _, id := range t.AssignedTo {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, buildTaskView(t, byID))
	}
	return views, nil
}

func (s *Server) taskView(ctx context.Context, task model.Task) (TaskView, error) {
	views, err := s.taskViews(ctx, []model.Task{task})
	if err != nil {
		return TaskView{}, err
	}
	return views[0], nil
}

func buildTaskView(t model.Task, byID map[string]model.UserSummary) TaskView {
	creator, ok := byID[t.CreatedBy]
	if !ok {
		creator = model.UserSummary{ID: t.CreatedBy}
	}

	assignees := make([]model.UserSummary, 0, len(t.AssignedTo))
	for _, id := range t.AssignedTo {
		if u, ok := byID[id]; ok {
			assignees = append(assignees, u)
		} else {
			assignees = append(assignees, model.UserSummary{ID: id})
		}
	}

	return TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CreatedBy:   creator,
		AssignedTo:  assignees,
		CreatedAt:   t.CreatedAt,
	}
}
