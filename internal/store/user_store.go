package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/taskflow/internal/model"
)

// CreateUser inserts a new user. Generates a UUID if ID is empty and
// lowercases the email. Returns ErrDuplicate if the username or email
// is already taken.
func (s *SQLiteStore) CreateUser(ctx context.Context, user model.User) (*model.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Username = strings.TrimSpace(user.Username)
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, full_name, username, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.FullName, user.Username, user.Email,
		user.PasswordHash, string(user.Role), user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", translateError(err))
	}

	return &user, nil
}

// GetUserByID retrieves a single user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, translateError(err))
	}
	return &user, nil
}

// GetUserByIdentifier retrieves a user by email (case-insensitive) or
// username (exact match).
func (s *SQLiteStore) GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE email = ? OR username = ?",
		strings.ToLower(strings.TrimSpace(identifier)), identifier,
	)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", identifier, translateError(err))
	}
	return &user, nil
}

// GetUsersByIDs retrieves the users with the given IDs. Missing IDs are
// silently skipped; the result order is unspecified.
func (s *SQLiteStore) GetUsersByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT * FROM users WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("building user query: %w", err)
	}

	var users []model.User
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("getting users by ids: %w", err)
	}
	return users, nil
}

// SearchUsers matches query as a case-insensitive substring of full name,
// username, or email. An empty query returns no users.
func (s *SQLiteStore) SearchUsers(ctx context.Context, query string) ([]model.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	q := "%" + query + "%"
	var users []model.User
	err := s.db.SelectContext(ctx, &users, `
		SELECT * FROM users
		WHERE full_name LIKE ? OR username LIKE ? OR email LIKE ?
		ORDER BY username`,
		q, q, q,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	return users, nil
}
