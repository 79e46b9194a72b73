package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tasktrack/tasktrack/internal/domain"
)

// BoardRepository handles board persistence operations.
type BoardRepository struct {
	db sqlx.ExtContext
}

// NewBoardRepository creates a new BoardRepository.
func NewBoardRepository(db sqlx.ExtContext) *BoardRepository {
	return &BoardRepository{db: db}
}

// Create creates a board.
func (r *BoardRepository) Create(ctx context.Context, board *domain.Board) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO boards (id, project_id, name, created_at) VALUES (?, ?, ?, ?)`,
		board.ID, board.ProjectID, board.Name, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}
	return nil
}

// GetByID retrieves a board by ID.
func (r *BoardRepository) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	var board domain.Board
	err := sqlx.GetContext(ctx, r.db, &board, `SELECT id, project_id, name FROM boards WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get board %s: %w", id, err)
	}
	return &board, nil
}

// ProjectIDs returns the distinct projects that own at least one board.
func (r *BoardRepository) ProjectIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := sqlx.SelectContext(ctx, r.db, &ids, `SELECT DISTINCT project_id FROM boards ORDER BY project_id`); err != nil {
		return nil, fmt.Errorf("list board projects: %w", err)
	}
	return ids, nil
}
