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

const taskColumns = "id, title, description, status, priority, due_date, created_by, created_at"

// CreateTask inserts a new task along with its assignee set.
// Generates a UUID if ID is empty; status and priority default to
// "To Do" and "Medium" when unset.
func (s *SQLiteStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = model.StatusToDo
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	task.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, status, priority, due_date, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate.UTC(), task.CreatedBy, task.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", translateError(err))
	}

	if err := replaceAssignees(ctx, tx, task.ID, task.AssignedTo); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing task create: %w", err)
	}
	return &task, nil
}

// GetTaskByID retrieves a single task by ID, including its assignee set.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	row := s.db.QueryRowxContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	task, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, translateError(err))
	}

	assignees, err := s.getAssignees(ctx, id)
	if err != nil {
		return nil, err
	}
	task.AssignedTo = assignees

	return &task, nil
}

// UpdateTask rewrites the task's mutable fields and replaces its assignee
// set. The creator and creation time are never modified.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?
		WHERE id = ?`,
		task.Title, task.Description, task.Status, task.Priority,
		task.DueDate.UTC(), task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, translateError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("updating task %s: %w", task.ID, ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM task_assignees WHERE task_id = ?", task.ID); err != nil {
		return fmt.Errorf("clearing assignees for task %s: %w", task.ID, err)
	}
	if err := replaceAssignees(ctx, tx, task.ID, task.AssignedTo); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteTask removes the task, its assignee rows, and every notification
// referencing it.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM notifications WHERE task_id = ?", id); err != nil {
		return fmt.Errorf("deleting notifications for task %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM task_assignees WHERE task_id = ?", id); err != nil {
		return fmt.Errorf("deleting assignees for task %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting task %s: %w", id, ErrNotFound)
	}

	return tx.Commit()
}

// GetTasksCreatedBy retrieves the tasks created by the given user,
// newest first.
func (s *SQLiteStore) GetTasksCreatedBy(ctx context.Context, userID string) ([]model.Task, error) {
	return s.queryTasks(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE created_by = ? ORDER BY created_at DESC",
		userID)
}

// GetTasksAssignedTo retrieves the tasks the given user is assigned to,
// newest first.
func (s *SQLiteStore) GetTasksAssignedTo(ctx context.Context, userID string) ([]model.Task, error) {
	return s.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE id IN (SELECT task_id FROM task_assignees WHERE user_id = ?)
		ORDER BY created_at DESC`,
		userID)
}

// GetAllTasks returns one page of all tasks, newest first, along with the
// total task count.
func (s *SQLiteStore) GetAllTasks(ctx context.Context, limit, offset int) (*TaskPage, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tasks"); err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}

	query := "SELECT " + taskColumns + " FROM tasks ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}

	tasks, err := s.queryTasks(ctx, query)
	if err != nil {
		return nil, err
	}

	return &TaskPage{Tasks: tasks, Total: total}, nil
}

// queryTasks runs a task query and loads the assignee set for each result.
func (s *SQLiteStore) queryTasks(ctx context.Context, query string, args ...interface{}) ([]model.Task, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		assignees, err := s.getAssignees(ctx, tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].AssignedTo = assignees
	}

	return tasks, nil
}

// getAssignees loads the assignee user IDs for a task.
func (s *SQLiteStore) getAssignees(ctx context.Context, taskID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		"SELECT user_id FROM task_assignees WHERE task_id = ? ORDER BY user_id", taskID)
	if err != nil {
		return nil, fmt.Errorf("loading assignees for task %s: %w", taskID, err)
	}
	return ids, nil
}

// replaceAssignees inserts the assignee rows for a task within tx.
// Duplicate IDs in the input are collapsed.
func replaceAssignees(ctx context.Context, tx *sqlx.Tx, taskID string, userIDs []string) error {
	seen := make(map[string]struct{}, len(userIDs))
	for _, userID := range userIDs {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO task_assignees (task_id, user_id) VALUES (?, ?)",
			taskID, userID,
		); err != nil {
			return fmt.Errorf("assigning task %s to user %s: %w", taskID, userID, err)
		}
	}
	return nil
}

// scanTask scans a task row. It accepts both sqlx.Rows and sqlx.Row.
func scanTask(row interface{ Scan(dest ...interface{}) error }) (model.Task, error) {
	var (
		task      model.Task
		dueDate   time.Time
		createdAt time.Time
	)

	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.Status, &task.Priority,
		&dueDate, &task.CreatedBy, &createdAt,
	)
	if err != nil {
		return model.Task{}, err
	}

	task.DueDate = dueDate
	task.CreatedAt = createdAt

	return task, nil
}
