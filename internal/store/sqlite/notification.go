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

type notificationRow struct {
	ID           string         `db:"id"`
	DependencyID string         `db:"dependency_id"`
	Type         string         `db:"notification_type"`
	Recipients   string         `db:"recipients"`
	Channels     string         `db:"channels"`
	Priority     string         `db:"priority"`
	Content      string         `db:"content"`
	Status       string         `db:"status"`
	Metadata     string         `db:"metadata"`
	SentAt       sql.NullString `db:"sent_at"`
	CreatedAt    string         `db:"created_at"`
	UpdatedAt    string         `db:"updated_at"`
}

func (r notificationRow) toDomain() (*domain.Notification, error) {
	n := &domain.Notification{
		ID:           r.ID,
		DependencyID: r.DependencyID,
		Type:         domain.NotificationType(r.Type),
		Priority:     domain.Priority(r.Priority),
		Status:       domain.NotificationStatus(r.Status),
		SentAt:       parseNullTime(r.SentAt),
		CreatedAt:    parseTime(r.CreatedAt),
		UpdatedAt:    parseTime(r.UpdatedAt),
	}
	if err := unmarshalJSON(r.Recipients, &n.Recipients); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(r.Channels, &n.Channels); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(r.Content, &n.Content); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(r.Metadata, &n.Metadata); err != nil {
		return nil, err
	}
	return n, nil
}

const notificationColumns = `id, dependency_id, notification_type, recipients, channels, priority,
	content, status, metadata, sent_at, created_at, updated_at`

// NotificationRepository persists dependency notifications.
type NotificationRepository struct {
	db sqlx.ExtContext
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db sqlx.ExtContext) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	recipients, err := marshalJSON(n.Recipients)
	if err != nil {
		return err
	}
	channels, err := marshalJSON(n.Channels)
	if err != nil {
		return err
	}
	content, err := marshalJSON(n.Content)
	if err != nil {
		return err
	}
	metadata, err := marshalJSON(n.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dependency_notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.ID,
		n.DependencyID,
		string(n.Type),
		recipients,
		channels,
		string(n.Priority),
		content,
		string(n.Status),
		metadata,
		formatTimePtr(n.SentAt),
		formatTime(n.CreatedAt),
		formatTime(n.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// GetByID retrieves a notification.
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	var row notificationRow
	err := sqlx.GetContext(ctx, r.db, &row,
		`SELECT `+notificationColumns+` FROM dependency_notifications WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification %s: %w", id, err)
	}
	return row.toDomain()
}

// SaveState writes status, metadata and sent_at of a notification.
func (r *NotificationRepository) SaveState(ctx context.Context, n *domain.Notification) error {
	metadata, err := marshalJSON(n.Metadata)
	if err != nil {
		return err
	}
	n.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE dependency_notifications SET status = ?, metadata = ?, sent_at = ?, updated_at = ?
		WHERE id = ?
	`, string(n.Status), metadata, formatTimePtr(n.SentAt), formatTime(n.UpdatedAt), n.ID)
	if err != nil {
		return fmt.Errorf("save notification %s: %w", n.ID, err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// Claim moves n to sent when its row is pending or sent and still has the
// status and updated_at n was read with, and reports whether this caller
// won it. Two dispatchers
// holding the same notification race here and only one proceeds.
func (r *NotificationRepository) Claim(ctx context.Context, n *domain.Notification) (bool, error) {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE dependency_notifications SET status = 'sent', sent_at = ?, updated_at = ?
		WHERE id = ? AND status IN ('pending', 'sent') AND status = ? AND updated_at = ?
	`, formatTime(now), formatTime(now), n.ID, string(n.Status), formatTime(n.UpdatedAt))
	if err != nil {
		return false, fmt.Errorf("claim notification %s: %w", n.ID, err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}

	n.Status = domain.NotificationSent
	n.SentAt = &now
	n.UpdatedAt = now
	return true, nil
}

// ListPending returns up to limit notifications due for dispatch, most
// urgent first and oldest first within a priority. Besides pending rows it
// returns sent rows last touched before staleBefore, whose dispatch never
// finished.
func (r *NotificationRepository) ListPending(ctx context.Context, limit int, staleBefore time.Time) ([]*domain.Notification, error) {
	return r.selectRows(ctx, `
		SELECT `+notificationColumns+` FROM dependency_notifications
		WHERE status = 'pending' OR (status = 'sent' AND updated_at < ?)
		ORDER BY CASE priority
		           WHEN 'critical' THEN 3 WHEN 'high' THEN 2 WHEN 'normal' THEN 1 ELSE 0
		         END DESC,
		         created_at ASC
		LIMIT ?
	`, formatTime(staleBefore), limit)
}

// ListByDependency returns a page of a dependency's notifications, newest
// first, and the total count.
func (r *NotificationRepository) ListByDependency(ctx context.Context, dependencyID string, limit, offset int) ([]*domain.Notification, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total,
		`SELECT COUNT(*) FROM dependency_notifications WHERE dependency_id = ?`, dependencyID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	items, err := r.selectRows(ctx, `
		SELECT `+notificationColumns+` FROM dependency_notifications
		WHERE dependency_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, dependencyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Analytics counts notifications by status and type and delivery log rows
// by channel and status.
func (r *NotificationRepository) Analytics(ctx context.Context, filter domain.AnalyticsFilter) (*domain.NotificationAnalytics, error) {
	nq := `SELECT status AS key_col, notification_type AS group_col, COUNT(*) AS cnt
		FROM dependency_notifications WHERE 1=1`
	var nargs []interface{}
	if filter.DependencyID != nil {
		nq += ` AND dependency_id = ?`
		nargs = append(nargs, *filter.DependencyID)
	}
	if filter.From != nil && filter.To != nil {
		nq += ` AND created_at BETWEEN ? AND ?`
		nargs = append(nargs, formatTime(*filter.From), formatTime(*filter.To))
	}
	nq += ` GROUP BY status, notification_type ORDER BY status, notification_type`

	dq := `SELECT channel AS key_col, status AS group_col, COUNT(*) AS cnt
		FROM dependency_notification_logs WHERE 1=1`
	var dargs []interface{}
	if filter.UserID != nil {
		dq += ` AND user_id = ?`
		dargs = append(dargs, *filter.UserID)
	}
	dq += ` GROUP BY channel, status ORDER BY channel, status`

	notifications, err := r.countBy(ctx, nq, nargs...)
	if err != nil {
		return nil, err
	}
	deliveries, err := r.countBy(ctx, dq, dargs...)
	if err != nil {
		return nil, err
	}
	return &domain.NotificationAnalytics{Notifications: notifications, Deliveries: deliveries}, nil
}

func (r *NotificationRepository) countBy(ctx context.Context, query string, args ...interface{}) ([]domain.CountByKey, error) {
	var rows []struct {
		Key   string `db:"key_col"`
		Group string `db:"group_col"`
		Count int    `db:"cnt"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate notifications: %w", err)
	}
	out := make([]domain.CountByKey, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CountByKey{Key: row.Key, Group: row.Group, Count: row.Count})
	}
	return out, nil
}

func (r *NotificationRepository) selectRows(ctx context.Context, query string, args ...interface{}) ([]*domain.Notification, error) {
	var rows []notificationRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]*domain.Notification, 0, len(rows))
	for _, row := range rows {
		n, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
