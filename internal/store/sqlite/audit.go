package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tasktrack/tasktrack/internal/domain"
)

type auditRow struct {
	ID           int64          `db:"id"`
	DependencyID string         `db:"dependency_id"`
	Action       string         `db:"action"`
	Field        sql.NullString `db:"field"`
	OldValue     sql.NullString `db:"old_value"`
	NewValue     sql.NullString `db:"new_value"`
	ChangedAt    string         `db:"changed_at"`
	ChangedBy    string         `db:"changed_by"`
}

// AuditRepository handles audit log persistence operations.
type AuditRepository struct {
	db sqlx.ExtContext
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db sqlx.ExtContext) *AuditRepository {
	return &AuditRepository{db: db}
}

// Log creates an audit log entry.
func (r *AuditRepository) Log(ctx context.Context, entry domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (dependency_id, action, field, old_value, new_value, changed_at, changed_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.DependencyID,
		string(entry.Action),
		entry.Field,
		entry.OldValue,
		entry.NewValue,
		formatTime(entry.ChangedAt),
		entry.ChangedBy,
	)
	if err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// ListByDependencyID returns all audit entries for an edge, newest first.
func (r *AuditRepository) ListByDependencyID(ctx context.Context, dependencyID string) ([]*domain.AuditEntry, error) {
	var rows []auditRow
	err := sqlx.SelectContext(ctx, r.db, &rows, `
		SELECT id, dependency_id, action, field, old_value, new_value, changed_at, changed_by
		FROM audit_log
		WHERE dependency_id = ?
		ORDER BY changed_at DESC, id DESC
	`, dependencyID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	entries := make([]*domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, &domain.AuditEntry{
			ID:           row.ID,
			DependencyID: row.DependencyID,
			Action:       domain.AuditAction(row.Action),
			Field:        nullString(row.Field),
			OldValue:     nullString(row.OldValue),
			NewValue:     nullString(row.NewValue),
			ChangedAt:    parseTime(row.ChangedAt),
			ChangedBy:    row.ChangedBy,
		})
	}
	return entries, nil
}
