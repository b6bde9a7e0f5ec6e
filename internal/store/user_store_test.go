package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nhle/taskflow/internal/model"
	"github.com/nhle/taskflow/internal/store"
	"github.com/nhle/taskflow/tests/testutil"
)

func createUser(t *testing.T, s store.Store, username, email string) model.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), model.User{
		FullName:     "Test " + username,
		Username:     username,
		Email:        email,
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return *user
}

func TestCreateUserGeneratesIDAndDefaults(t *testing.T) {
	s := testutil.NewTestStore(t)

	user, err := s.CreateUser(context.Background(), model.User{
		FullName:     "Ada Lovelace",
		Username:     "ada",
		Email:        "Ada@Example.COM",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated ID")
	}
	if user.Role != model.RoleUser {
		t.Fatalf("expected default role %q, got %q", model.RoleUser, user.Role)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
}

func TestCreateUserDuplicateUsernameOrEmail(t *testing.T) {
	s := testutil.NewTestStore(t)
	createUser(t, s, "ada", "ada@example.com")

	_, err := s.CreateUser(context.Background(), model.User{
		FullName: "Other", Username: "ada", Email: "other@example.com", PasswordHash: "x",
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for username, got %v", err)
	}

	_, err = s.CreateUser(context.Background(), model.User{
		FullName: "Other", Username: "other", Email: "ada@example.com", PasswordHash: "x",
	})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for email, got %v", err)
	}
}

func TestGetUserByIdentifier(t *testing.T) {
	s := testutil.NewTestStore(t)
	ada := createUser(t, s, "ada", "ada@example.com")

	byUsername, err := s.GetUserByIdentifier(context.Background(), "ada")
	if err != nil {
		t.Fatalf("lookup by username: %v", err)
	}
	if byUsername.ID != ada.ID {
		t.Fatalf("expected %s, got %s", ada.ID, byUsername.ID)
	}

	byEmail, err := s.GetUserByIdentifier(context.Background(), "ADA@example.com")
	if err != nil {
		t.Fatalf("lookup by email: %v", err)
	}
	if byEmail.ID != ada.ID {
		t.Fatalf("expected %s, got %s", ada.ID, byEmail.ID)
	}

	_, err = s.GetUserByIdentifier(context.Background(), "nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchUsers(t *testing.T) {
	s := testutil.NewTestStore(t)
	createUser(t, s, "ada", "ada@example.com")
	createUser(t, s, "grace", "grace@example.com")

	matches, err := s.SearchUsers(context.Background(), "ada")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].Username != "ada" {
		t.Fatalf("expected one match for ada, got %d", len(matches))
	}

	// Matches against full name and email too.
	matches, err = s.SearchUsers(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected two matches for example.com, got %d", len(matches))
	}

	// An empty query matches nobody.
	matches, err = s.SearchUsers(context.Background(), "  ")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches for empty query, got %d", len(matches))
	}
}
