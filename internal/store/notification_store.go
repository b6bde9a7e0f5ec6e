package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/taskflow/internal/model"
)

// CreateNotifications inserts a batch of notification records.
// IDs are generated when empty; the read flag always starts false.
func (s *SQLiteStore) CreateNotifications(ctx context.Context, ns []model.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO notifications (id, type, task_id, user_id, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`)
	if err != nil {
		return fmt.Errorf("preparing notification insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, n := range ns {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = now
		}
		_, err = stmt.ExecContext(ctx,
			n.ID, string(n.Type), n.TaskID, n.UserID, n.Message, n.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("creating notification for user %s: %w", n.UserID, err)
		}
	}

	return tx.Commit()
}

// GetNotificationByID retrieves a single notification by ID.
func (s *SQLiteStore) GetNotificationByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := s.db.GetContext(ctx, &n, "SELECT * FROM notifications WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting notification %s: %w", id, translateError(err))
	}
	return &n, nil
}

// GetNotificationsForUser retrieves all notifications targeted at the
// given user, newest first.
func (s *SQLiteStore) GetNotificationsForUser(ctx context.Context, userID string) ([]model.Notification, error) {
	var ns []model.Notification
	err := s.db.SelectContext(ctx, &ns,
		"SELECT * FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying notifications for user %s: %w", userID, err)
	}
	return ns, nil
}

// MarkNotificationRead sets the read flag on a single notification and
// returns the updated record. Marking an already-read notification is a
// no-op that still succeeds.
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("marking notification %s as read: %w", id, ErrNotFound)
	}

	return s.GetNotificationByID(ctx, id)
}

// MarkAllNotificationsRead sets the read flag on all of the user's
// unread notifications.
func (s *SQLiteStore) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE user_id = ? AND read = 0", userID)
	if err != nil {
		return fmt.Errorf("marking notifications read for user %s: %w", userID, err)
	}
	return nil
}
