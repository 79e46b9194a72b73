package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tasktrack/tasktrack/internal/domain"
)

type dependencyRow struct {
	ID                string `db:"id"`
	PredecessorTaskID string `db:"predecessor_task_id"`
	SuccessorTaskID   string `db:"successor_task_id"`
	Type              string `db:"dependency_type"`
	LagTime           int    `db:"lag_time"`
	IsActive          bool   `db:"is_active"`
	CreatedBy         string `db:"created_by"`
	UpdatedBy         string `db:"updated_by"`
	CreatedAt         string `db:"created_at"`
	UpdatedAt         string `db:"updated_at"`

	PredTitle     sql.NullString `db:"pred_title"`
	PredStatus    sql.NullString `db:"pred_status"`
	PredStartDate sql.NullString `db:"pred_start_date"`
	PredDueDate   sql.NullString `db:"pred_due_date"`
	PredCreatedBy sql.NullString `db:"pred_created_by"`
	SuccTitle     sql.NullString `db:"succ_title"`
	SuccStatus    sql.NullString `db:"succ_status"`
	SuccStartDate sql.NullString `db:"succ_start_date"`
	SuccDueDate   sql.NullString `db:"succ_due_date"`
	SuccCreatedBy sql.NullString `db:"succ_created_by"`
	CreatorName   sql.NullString `db:"creator_name"`
	CreatorEmail  sql.NullString `db:"creator_email"`
}

func (r dependencyRow) toDomain() *domain.Dependency {
	dep := &domain.Dependency{
		ID:                r.ID,
		PredecessorTaskID: r.PredecessorTaskID,
		SuccessorTaskID:   r.SuccessorTaskID,
		Type:              domain.DependencyType(r.Type),
		LagTime:           r.LagTime,
		IsActive:          r.IsActive,
		CreatedBy:         r.CreatedBy,
		UpdatedBy:         r.UpdatedBy,
		CreatedAt:         parseTime(r.CreatedAt),
		UpdatedAt:         parseTime(r.UpdatedAt),
	}
	if r.PredTitle.Valid {
		dep.PredecessorTask = &domain.TaskSummary{
			ID:        r.PredecessorTaskID,
			Title:     r.PredTitle.String,
			Status:    domain.TaskStatus(r.PredStatus.String),
			StartDate: parseNullTime(r.PredStartDate),
			DueDate:   parseNullTime(r.PredDueDate),
			CreatedBy: r.PredCreatedBy.String,
		}
	}
	if r.SuccTitle.Valid {
		dep.SuccessorTask = &domain.TaskSummary{
			ID:        r.SuccessorTaskID,
			Title:     r.SuccTitle.String,
			Status:    domain.TaskStatus(r.SuccStatus.String),
			StartDate: parseNullTime(r.SuccStartDate),
			DueDate:   parseNullTime(r.SuccDueDate),
			CreatedBy: r.SuccCreatedBy.String,
		}
	}
	if r.CreatorName.Valid {
		dep.Creator = &domain.UserSummary{
			ID:    r.CreatedBy,
			Name:  r.CreatorName.String,
			Email: r.CreatorEmail.String,
		}
	}
	return dep
}

// selectJoined reads an edge with the projections of both tasks and the creator.
const selectJoined = `
	SELECT d.id, d.predecessor_task_id, d.successor_task_id, d.dependency_type, d.lag_time,
	       d.is_active, d.created_by, d.updated_by, d.created_at, d.updated_at,
	       p.title AS pred_title, p.status AS pred_status, p.start_date AS pred_start_date,
	       p.due_date AS pred_due_date, p.created_by AS pred_created_by,
	       s.title AS succ_title, s.status AS succ_status, s.start_date AS succ_start_date,
	       s.due_date AS succ_due_date, s.created_by AS succ_created_by,
	       u.name AS creator_name, u.email AS creator_email
	FROM task_dependencies d
	LEFT JOIN tasks p ON p.id = d.predecessor_task_id
	LEFT JOIN tasks s ON s.id = d.successor_task_id
	LEFT JOIN users u ON u.id = d.created_by
`

// DependencyRepository handles dependency persistence operations.
type DependencyRepository struct {
	db sqlx.ExtContext
}

// NewDependencyRepository creates a new DependencyRepository.
func NewDependencyRepository(db sqlx.ExtContext) *DependencyRepository {
	return &DependencyRepository{db: db}
}

// Create inserts a new edge.
func (r *DependencyRepository) Create(ctx context.Context, dep *domain.Dependency) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_dependencies (id, predecessor_task_id, successor_task_id, dependency_type, lag_time,
		                               is_active, created_by, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		dep.ID,
		dep.PredecessorTaskID,
		dep.SuccessorTaskID,
		string(dep.Type),
		dep.LagTime,
		dep.IsActive,
		dep.CreatedBy,
		dep.UpdatedBy,
		formatTime(dep.CreatedAt),
		formatTime(dep.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create dependency: %w", err)
	}
	return nil
}

// GetByID retrieves an edge, active or not, joined with its projections.
func (r *DependencyRepository) GetByID(ctx context.Context, id string) (*domain.Dependency, error) {
	var row dependencyRow
	err := sqlx.GetContext(ctx, r.db, &row, selectJoined+` WHERE d.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get dependency %s: %w", id, err)
	}
	return row.toDomain(), nil
}

// FindByTriple returns the edge with the given (predecessor, successor, type),
// active or not.
func (r *DependencyRepository) FindByTriple(ctx context.Context, predecessorID, successorID string, t domain.DependencyType) (*domain.Dependency, error) {
	var row dependencyRow
	err := sqlx.GetContext(ctx, r.db, &row,
		selectJoined+` WHERE d.predecessor_task_id = ? AND d.successor_task_id = ? AND d.dependency_type = ?`,
		predecessorID, successorID, string(t))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find dependency: %w", err)
	}
	return row.toDomain(), nil
}

// Update writes type, lag, active flag and the updater of an edge.
func (r *DependencyRepository) Update(ctx context.Context, dep *domain.Dependency) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE task_dependencies
		SET dependency_type = ?, lag_time = ?, is_active = ?, updated_by = ?, updated_at = ?
		WHERE id = ?
	`,
		string(dep.Type),
		dep.LagTime,
		dep.IsActive,
		dep.UpdatedBy,
		formatTime(dep.UpdatedAt),
		dep.ID,
	)
	if err != nil {
		return fmt.Errorf("update dependency %s: %w", dep.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForTask returns active edges touching the task, newest first.
// DirectionPredecessor lists edges where the task is the successor,
// DirectionSuccessor edges where it is the predecessor.
func (r *DependencyRepository) ListForTask(ctx context.Context, taskID string, direction domain.Direction) ([]*domain.Dependency, error) {
	query := selectJoined + ` WHERE d.is_active = 1 AND `
	args := []interface{}{taskID}
	switch direction {
	case domain.DirectionPredecessor:
		query += `d.successor_task_id = ?`
	case domain.DirectionSuccessor:
		query += `d.predecessor_task_id = ?`
	case domain.DirectionBoth:
		query += `(d.predecessor_task_id = ? OR d.successor_task_id = ?)`
		args = append(args, taskID)
	default:
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
	query += ` ORDER BY d.created_at DESC, d.id`

	return r.selectRows(ctx, query, args...)
}

// ListForProject returns edges touching any task on a board of the project.
func (r *DependencyRepository) ListForProject(ctx context.Context, projectID string, includeInactive bool) ([]*domain.Dependency, error) {
	query := selectJoined + `
		WHERE (d.predecessor_task_id IN (SELECT t.id FROM tasks t JOIN boards b ON b.id = t.board_id WHERE b.project_id = ?)
		    OR d.successor_task_id IN (SELECT t.id FROM tasks t JOIN boards b ON b.id = t.board_id WHERE b.project_id = ?))
	`
	if !includeInactive {
		query += ` AND d.is_active = 1`
	}
	query += ` ORDER BY d.created_at DESC, d.id`

	return r.selectRows(ctx, query, projectID, projectID)
}

// ActiveSuccessorIDs returns the successor task IDs of the task's active
// outgoing edges. It is the adjacency function of cycle detection.
func (r *DependencyRepository) ActiveSuccessorIDs(ctx context.Context, taskID string) ([]string, error) {
	ids := []string{}
	err := sqlx.SelectContext(ctx, r.db, &ids, `
		SELECT DISTINCT successor_task_id FROM task_dependencies
		WHERE predecessor_task_id = ? AND is_active = 1
		ORDER BY successor_task_id
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list successors of %s: %w", taskID, err)
	}
	return ids, nil
}

func (r *DependencyRepository) selectRows(ctx context.Context, query string, args ...interface{}) ([]*domain.Dependency, error) {
	var rows []dependencyRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	deps := make([]*domain.Dependency, 0, len(rows))
	for _, row := range rows {
		deps = append(deps, row.toDomain())
	}
	return deps, nil
}
