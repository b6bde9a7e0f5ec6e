package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nhle/taskflow/internal/api"
	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
	"github.com/nhle/taskflow/tests/testutil"
)

type env struct {
	store  store.Store
	server *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := testutil.NewTestStore(t)
	srv := api.NewServer(api.Options{
		Store:    s,
		Tokens:   auth.NewTokenIssuer("test-secret", time.Hour),
		PageSize: 2,
		Logger:   log.New(io.Discard, "", 0),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &env{store: s, server: ts}
}

// do sends a JSON request and decodes the JSON response into out, which
// may be nil.
func (e *env) do(t *testing.T, method, path, token string, body, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response of %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// register creates an account through the API and returns its auth
// response.
func (e *env) register(t *testing.T, username string) api.AuthResponse {
	t.Helper()
	var resp api.AuthResponse
	status := e.do(t, http.MethodPost, "/auth/register", "", api.RegisterRequest{
		FullName: "Test " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "s3cret",
	}, &resp)
	if status != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, status)
	}
	return resp
}

// registerAdmin creates an admin directly in the store and logs in
// through the API. Registration never grants the admin role.
func (e *env) registerAdmin(t *testing.T, username string) api.AuthResponse {
	t.Helper()
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if _, err := e.store.CreateUser(context.Background(), model.User{
		FullName:     "Admin " + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}); err != nil {
		t.Fatalf("create admin: %v", err)
	}

	var resp api.AuthResponse
	status := e.do(t, http.MethodPost, "/auth/login", "", api.LoginRequest{
		Identifier: username,
		Password:   "s3cret",
	}, &resp)
	if status != http.StatusOK {
		t.Fatalf("login admin: status %d", status)
	}
	return resp
}

func (e *env) createTask(t *testing.T, token, title string, assignees ...string) api.TaskView {
	t.Helper()
	var view api.TaskView
	status := e.do(t, http.MethodPost, "/tasks", token, api.CreateTaskRequest{
		Title:       title,
		Description: "desc",
		DueDate:     time.Now().Add(48 * time.Hour),
		AssignedTo:  assignees,
	}, &view)
	if status != http.StatusCreated {
		t.Fatalf("create task: status %d", status)
	}
	return view
}

func TestRegisterAndLoginFlow(t *testing.T) {
	e := newEnv(t)

	reg := e.register(t, "ada")
	if reg.Token == "" {
		t.Fatalf("expected a token from register")
	}
	if reg.User.Role != model.RoleUser {
		t.Fatalf("expected role user, got %q", reg.User.Role)
	}

	// Login works with username or case-insensitive email.
	for _, identifier := range []string{"ada", "ADA@example.com"} {
		var resp api.AuthResponse
		status := e.do(t, http.MethodPost, "/auth/login", "", api.LoginRequest{
			Identifier: identifier,
			Password:   "s3cret",
		}, &resp)
		if status != http.StatusOK {
			t.Fatalf("login with %q: status %d", identifier, status)
		}
		if resp.User.ID != reg.User.ID {
			t.Fatalf("login resolved wrong user")
		}
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	e := newEnv(t)
	e.register(t, "ada")

	cases := []api.LoginRequest{
		{Identifier: "nobody", Password: "s3cret"},
		{Identifier: "ada", Password: "wrong"},
	}
	var messages []string
	for _, payload := range cases {
		var resp api.MessageResponse
		status := e.do(t, http.MethodPost, "/auth/login", "", payload, &resp)
		if status != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %+v, got %d", payload, status)
		}
		messages = append(messages, resp.Message)
	}
	if messages[0] != messages[1] {
		t.Fatalf("unknown-user and bad-password messages differ: %q vs %q", messages[0], messages[1])
	}
}

func TestDuplicateRegistration(t *testing.T) {
	e := newEnv(t)
	e.register(t, "ada")

	status := e.do(t, http.MethodPost, "/auth/register", "", api.RegisterRequest{
		FullName: "Other",
		Username: "ada",
		Email:    "other@example.com",
		Password: "s3cret",
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate username, got %d", status)
	}
}

func TestAuthenticationIsRequired(t *testing.T) {
	e := newEnv(t)
	e.register(t, "ada")

	paths := []struct{ method, path string }{
		{http.MethodGet, "/tasks"},
		{http.MethodPost, "/tasks"},
		{http.MethodGet, "/tasks/created"},
		{http.MethodGet, "/tasks/assigned"},
		{http.MethodGet, "/notifications"},
		{http.MethodGet, "/users/search?query=a"},
	}
	for _, tokenCase := range []string{"", "garbage"} {
		for _, p := range paths {
			status := e.do(t, p.method, p.path, tokenCase, nil, nil)
			if status != http.StatusUnauthorized {
				t.Fatalf("%s %s with token %q: expected 401, got %d", p.method, p.path, tokenCase, status)
			}
		}
	}
}

func TestCreateTaskResolvesUsers(t *testing.T) {
	e := newEnv(t)
	ada := e.register(t, "ada")
	grace := e.register(t, "grace")

	view := e.createTask(t, ada.Token, "Write docs", grace.User.ID)

	if view.Status != model.StatusToDo || view.Priority != model.PriorityMedium {
		t.Fatalf("expected defaults, got status=%q priority=%q", view.Status, view.Priority)
	}
	if view.CreatedBy.Username != "ada" {
		t.Fatalf("expected resolved creator, got %+v", view.CreatedBy)
	}
	if len(view.AssignedTo) != 1 || view.AssignedTo[0].Username != "grace" {
		t.Fatalf("expected resolved assignee grace, got %+v", view.AssignedTo)
	}

	// The assignee sees a notification for the new task.
	var ns []model.Notification
	if status := e.do(t, http.MethodGet, "/notifications", grace.Token, nil, &ns); status != http.StatusOK {
		t.Fatalf("list notifications: status %d", status)
	}
	if len(ns) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(ns))
	}
	if want := "You have been assigned a new task: Write docs"; ns[0].Message != want {
		t.Fatalf("expected message %q, got %q", want, ns[0].Message)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	e := newEnv(t)
	ada := e.register(t, "ada")

	status := e.do(t, http.MethodPost, "/tasks", ada.Token, api.CreateTaskRequest{
		Description: "no title",
		DueDate:     time.Now(),
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestUpdateTaskAuthorization(t *testing.T) {
	e := newEnv(t)
	ada := e.register(t, "ada")
	grace := e.register(t, "grace")

	task := e.createTask(t, ada.Token, "Write docs", grace.User.ID)

	title := "Renamed"
	// Non-creators get a 403, distinct from a missing task's 404.
	status := e.do(t, http.MethodPut, "/tasks/"+task.ID, grace.Token,
		api.UpdateTaskRequest{Title: &title}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-creator, got %d", status)
	}

	status = e.do(t, http.MethodPut, "/tasks/missing", grace.Token,
		api.UpdateTaskRequest{Title: &title}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for missing task, got %d", status)
	}

	var view api.TaskView
	status = e.do(t, http.MethodPut, "/tasks/"+task.ID, ada.Token,
		api.UpdateTaskRequest{Title: &title}, &view)
	if status != http.StatusOK {
		t.Fatalf("creator update: status %d", status)
	}
	if view.Title != "Renamed" {
		t.Fatalf("expected renamed task, got %q", view.Title)
	}
}

func TestStatusUpdateAuthorization(t *testing.T) {
	e := newEnv(t)
	ada := e.register(t, "ada")
	grace := e.register(t, "grace")

	task := e.createTask(t, ada.Token, "Write docs", grace.User.ID)

	// The creator is not an assignee, so the status-only path rejects
	// them.
	status := e.do(t, http.MethodPatch, "/tasks/"+task.ID, ada.Token,
		api.UpdateStatusRequest{Status: model.StatusCompleted}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-assignee, got %d", status)
	}

	var view api.TaskView
	status = e.do(t, http.MethodPatch, "/tasks/"+task.ID, grace.Token,
		api.UpdateStatusRequest{Status: model.StatusCompleted}, &view)
	if status != http.StatusOK {
		t.Fatalf("assignee status update: status %d", status)
	}
	if view.Status != model.StatusCompleted {
		t.Fatalf("expected %q, got %q", model.StatusCompleted, view.Status)
	}
}

func TestDeleteTask(t *testing.T) {
	e := newEnv(t)
	ada := e.register(t, "ada")
	grace := e.register(t, "grace")

	task := e.createTask(t, ada.Token, "Write docs", grace.User.ID)

	if status := e.do(t, http.MethodDelete, "/tasks/"+task.ID, grace.Token, nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-creator delete, got %d", status)
	}
	if status := e.do(t, http.MethodDelete, "/tasks/"+task.ID, ada.Token, nil, nil); status != http.StatusOK {
		t.Fatalf("creator delete: status %d", status)
	}
	if status := e.do(t, http.MethodDelete, "/tasks/"+task.ID, ada.Token, nil, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", status)
	}

	// The cascade removed the assignment notification.
	var ns []model.Notification
	if status := e.do(t, http.MethodGet, "/notifications", grace.Token, nil, &ns); status != http.StatusOK {
		t.Fatalf("list notifications: status %d", status)
	}
	if len(ns) != 0 {
		t.Fatalf("expected no notifications after delete, got %d", len(ns))
	}
}

func TestScopedTaskListings(t *testing.T) {
	e := newEnv(t)
	ada := e.register(t, "ada")
	grace := e.register(t, "grace")

	mine := e.createTask(t, ada.Token, "Mine", grace.User.ID)
	theirs := e.createTask(t, grace.Token, "Theirs", ada.User.ID)

	var created []api.TaskView
	if status := e.do(t, http.MethodGet, "/tasks/created", ada.Token, nil, &created); status != http.StatusOK {
		t.Fatalf("created listing: status %d", status)
	}
	if len(created) != 1 || created[0].ID != mine.ID {
		t.Fatalf("expected only ada's created task, got %+v", created)
	}

	var assigned []api.TaskView
	if status := e.do(t, http.MethodGet, "/tasks/assigned", ada.Token, nil, &assigned); status != http.StatusOK {
		t.Fatalf("assigned listing: status %d", status)
	}
	if len(assigned) != 1 || assigned[0].ID != theirs.ID {
		t.Fatalf("expected only the task assigned to ada, got %+v", assigned)
	}
}

func TestAdminTaskListing(t *testing.T) {
	e := newEnv(t)
	ada := e.register(t, "ada")
	admin := e.registerAdmin(t, "root")

	for i := 0; i < 3; i++ {
		e.createTask(t, ada.Token, fmt.Sprintf("Task %d", i))
	}

	if status := e.do(t, http.MethodGet, "/tasks", ada.Token, nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", status)
	}

	// Page size is 2 in this harness: 3 tasks make 2 pages.
	var page api.TaskPageResponse
	if status := e.do(t, http.MethodGet, "/tasks?page=2", admin.Token, nil, &page); status != http.StatusOK {
		t.Fatalf("admin listing: status %d", status)
	}
	if page.Total != 3 || page.TotalPages != 2 || page.Page != 2 {
		t.Fatalf("expected total=3 totalPages=2 page=2, got %+v", page)
	}
	if len(page.Tasks) != 1 {
		t.Fatalf("expected 1 task on the last page, got %d", len(page.Tasks))
	}

	if status := e.do(t, http.MethodGet, "/tasks?page=zero", admin.Token, nil, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad page, got %d", status)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	e := newEnv(t)
	ada := e.register(t, "ada")
	grace := e.register(t, "grace")
	linus := e.register(t, "linus")

	e.createTask(t, ada.Token, "One", grace.User.ID)
	e.createTask(t, ada.Token, "Two", grace.User.ID, linus.User.ID)

	var ns []model.Notification
	if status := e.do(t, http.MethodGet, "/notifications", grace.Token, nil, &ns); status != http.StatusOK {
		t.Fatalf("list: status %d", status)
	}
	if len(ns) != 2 {
		t.Fatalf("expected 2 notifications for grace, got %d", len(ns))
	}

	// Only the target user may mark a notification read.
	if status := e.do(t, http.MethodPatch, "/notifications/"+ns[0].ID, linus.Token, nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-target, got %d", status)
	}

	var read model.Notification
	if status := e.do(t, http.MethodPatch, "/notifications/"+ns[0].ID, grace.Token, nil, &read); status != http.StatusOK {
		t.Fatalf("mark read: status %d", status)
	}
	if !read.Read {
		t.Fatalf("expected read=true")
	}

	if status := e.do(t, http.MethodPost, "/notifications/read", grace.Token, nil, nil); status != http.StatusOK {
		t.Fatalf("mark all read: status %d", status)
	}
	if status := e.do(t, http.MethodGet, "/notifications", grace.Token, nil, &ns); status != http.StatusOK {
		t.Fatalf("list after mark all: status %d", status)
	}
	for _, n := range ns {
		if !n.Read {
			t.Fatalf("expected all read, got %+v", n)
		}
	}

	// Linus's notification is untouched.
	if status := e.do(t, http.MethodGet, "/notifications", linus.Token, nil, &ns); status != http.StatusOK {
		t.Fatalf("list for linus: status %d", status)
	}
	if len(ns) != 1 || ns[0].Read {
		t.Fatalf("expected one unread notification for linus, got %+v", ns)
	}
}

func TestUserSearchExcludesPasswordHash(t *testing.T) {
	e := newEnv(t)
	ada := e.register(t, "ada")
	e.register(t, "grace")

	var raw struct {
		Users []map[string]interface{} `json:"users"`
	}
	if status := e.do(t, http.MethodGet, "/users/search?query=grace", ada.Token, nil, &raw); status != http.StatusOK {
		t.Fatalf("search: status %d", status)
	}
	if len(raw.Users) != 1 {
		t.Fatalf("expected 1 match, got %d", len(raw.Users))
	}
	for _, key := range []string{"password", "password_hash"} {
		if _, ok := raw.Users[0][key]; ok {
			t.Fatalf("search result leaks %q", key)
		}
	}

	var resp api.UsersResponse
	if status := e.do(t, http.MethodGet, "/users/search?query=", ada.Token, nil, &resp); status != http.StatusOK {
		t.Fatalf("empty search: status %d", status)
	}
	if len(resp.Users) != 0 {
		t.Fatalf("expected no matches for empty query, got %d", len(resp.Users))
	}
}
