package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tasktrack/tasktrack/internal/domain"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

type taskRow struct {
	ID        string         `db:"id"`
	Title     string         `db:"title"`
	Status    string         `db:"status"`
	StartDate sql.NullString `db:"start_date"`
	DueDate   sql.NullString `db:"due_date"`
	CreatedBy string         `db:"created_by"`
	BoardID   sql.NullString `db:"board_id"`
	CreatedAt string         `db:"created_at"`
	UpdatedAt string         `db:"updated_at"`
}

func (r taskRow) toDomain() *domain.Task {
	return &domain.Task{
		ID:         r.ID,
		Title:      r.Title,
		Status:     domain.TaskStatus(r.Status),
		StartDate:  parseNullTime(r.StartDate),
		DueDate:    parseNullTime(r.DueDate),
		CreatedBy:  r.CreatedBy,
		AssignedTo: []string{},
		BoardID:    nullString(r.BoardID),
		CreatedAt:  parseTime(r.CreatedAt),
		UpdatedAt:  parseTime(r.UpdatedAt),
	}
}

const taskColumns = `id, title, status, start_date, due_date, created_by, board_id, created_at, updated_at`

// TaskRepository handles task persistence operations.
type TaskRepository struct {
	db sqlx.ExtContext
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db sqlx.ExtContext) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a new task with its assignees.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, status, start_date, due_date, created_by, board_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		task.ID,
		task.Title,
		string(task.Status),
		formatTimePtr(task.StartDate),
		formatTimePtr(task.DueDate),
		task.CreatedBy,
		task.BoardID,
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return r.SetAssignees(ctx, task.ID, task.AssignedTo)
}

// GetByID retrieves a task with its assignees.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var row taskRow
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}

	task := row.toDomain()
	if task.AssignedTo, err = r.ListAssignees(ctx, id); err != nil {
		return nil, err
	}
	return task, nil
}

// Update overwrites the mutable fields of a task.
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, status = ?, start_date = ?, due_date = ?, board_id = ?, updated_at = ?
		WHERE id = ?
	`,
		task.Title,
		string(task.Status),
		formatTimePtr(task.StartDate),
		formatTimePtr(task.DueDate),
		task.BoardID,
		formatTime(task.UpdatedAt),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return r.SetAssignees(ctx, task.ID, task.AssignedTo)
}

// SetAssignees replaces the assignee set of a task.
func (r *TaskRepository) SetAssignees(ctx context.Context, taskID string, userIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM task_assignees WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("clear assignees: %w", err)
	}
	for _, uid := range userIDs {
		if _, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO task_assignees (task_id, user_id) VALUES (?, ?)`, taskID, uid,
		); err != nil {
			return fmt.Errorf("add assignee %s: %w", uid, err)
		}
	}
	return nil
}

// ListAssignees returns the user IDs assigned to a task.
func (r *TaskRepository) ListAssignees(ctx context.Context, taskID string) ([]string, error) {
	ids := []string{}
	err := sqlx.SelectContext(ctx, r.db, &ids,
		`SELECT user_id FROM task_assignees WHERE task_id = ? ORDER BY user_id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	return ids, nil
}

// ProjectID resolves the project of a task through its board. Tasks without a
// board return nil.
func (r *TaskRepository) ProjectID(ctx context.Context, taskID string) (*string, error) {
	var projectID sql.NullString
	err := sqlx.GetContext(ctx, r.db, &projectID, `
		SELECT b.project_id FROM tasks t JOIN boards b ON b.id = t.board_id WHERE t.id = ?
	`, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve project of task %s: %w", taskID, err)
	}
	return nullString(projectID), nil
}
