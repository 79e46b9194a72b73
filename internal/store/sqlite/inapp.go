package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tasktrack/tasktrack/internal/domain"
)

// InAppRepository writes the general in-app notification feed.
type InAppRepository struct {
	db sqlx.ExtContext
}

// NewInAppRepository creates a new InAppRepository.
func NewInAppRepository(db sqlx.ExtContext) *InAppRepository {
	return &InAppRepository{db: db}
}

// Create inserts a feed row. sourceID links it to the dependency
// notification that produced it.
func (r *InAppRepository) Create(ctx context.Context, n *domain.InAppNotification, sourceID string) error {
	data, err := marshalJSON(n.Data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, data, source_id, priority, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Type, n.Title, n.Message, data, sourceID, string(n.Priority), n.Read, formatTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("create in-app notification: %w", err)
	}
	return nil
}

// MarkReadBySource marks the user's feed rows produced by a dependency
// notification as read and returns how many changed.
func (r *InAppRepository) MarkReadBySource(ctx context.Context, userID, sourceID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE user_id = ? AND source_id = ? AND read = 0`,
		userID, sourceID)
	if err != nil {
		return 0, fmt.Errorf("mark in-app notification read: %w", err)
	}
	return result.RowsAffected()
}

// CountUnread returns the user's unread feed rows.
func (r *InAppRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0`, userID); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}
