package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tasktrack/tasktrack/internal/domain"
)

// PreferenceRepository persists notification preferences. A nil project ID
// addresses the user's global row, stored with project_id ''.
type PreferenceRepository struct {
	db sqlx.ExtContext
}

// NewPreferenceRepository creates a new PreferenceRepository.
func NewPreferenceRepository(db sqlx.ExtContext) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func projectKey(projectID *string) string {
	if projectID == nil {
		return ""
	}
	return *projectID
}

// Get returns the stored row or ErrNotFound.
func (r *PreferenceRepository) Get(ctx context.Context, userID string, projectID *string) (*domain.NotificationPreference, error) {
	var row struct {
		UserID    string `db:"user_id"`
		ProjectID string `db:"project_id"`
		Settings  string `db:"settings"`
		CreatedAt string `db:"created_at"`
		UpdatedAt string `db:"updated_at"`
	}
	err := sqlx.GetContext(ctx, r.db, &row, `
		SELECT user_id, project_id, settings, created_at, updated_at
		FROM dependency_notification_preferences WHERE user_id = ? AND project_id = ?
	`, userID, projectKey(projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	pref := &domain.NotificationPreference{
		UserID:    row.UserID,
		CreatedAt: parseTime(row.CreatedAt),
		UpdatedAt: parseTime(row.UpdatedAt),
	}
	if row.ProjectID != "" {
		pid := row.ProjectID
		pref.ProjectID = &pid
	}
	if err := unmarshalJSON(row.Settings, &pref.Settings); err != nil {
		return nil, err
	}
	return pref, nil
}

// Upsert writes the settings of a preference row.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *domain.NotificationPreference) error {
	settings, err := marshalJSON(pref.Settings)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dependency_notification_preferences (user_id, project_id, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, project_id) DO UPDATE SET settings = excluded.settings, updated_at = excluded.updated_at
	`, pref.UserID, projectKey(pref.ProjectID), settings, formatTime(pref.CreatedAt), formatTime(pref.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert preferences: %w", err)
	}
	return nil
}
