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

type logRow struct {
	ID             int64          `db:"id"`
	NotificationID string         `db:"notification_id"`
	UserID         string         `db:"user_id"`
	Channel        string         `db:"channel"`
	Status         string         `db:"status"`
	Error          sql.NullString `db:"error"`
	OpenedAt       sql.NullString `db:"opened_at"`
	CreatedAt      string         `db:"created_at"`
}

func (r logRow) toDomain() *domain.NotificationLog {
	return &domain.NotificationLog{
		ID:             r.ID,
		NotificationID: r.NotificationID,
		UserID:         r.UserID,
		Channel:        domain.Channel(r.Channel),
		Status:         domain.DeliveryStatus(r.Status),
		Error:          nullString(r.Error),
		OpenedAt:       parseNullTime(r.OpenedAt),
		CreatedAt:      parseTime(r.CreatedAt),
	}
}

const logColumns = `id, notification_id, user_id, channel, status, error, opened_at, created_at`

// NotificationLogRepository persists per recipient, per channel delivery outcomes.
type NotificationLogRepository struct {
	db sqlx.ExtContext
}

// NewNotificationLogRepository creates a new NotificationLogRepository.
func NewNotificationLogRepository(db sqlx.ExtContext) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

// Append records one delivery attempt and sets its ID.
func (r *NotificationLogRepository) Append(ctx context.Context, entry *domain.NotificationLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO dependency_notification_logs (notification_id, user_id, channel, status, error, opened_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		entry.NotificationID,
		entry.UserID,
		string(entry.Channel),
		string(entry.Status),
		entry.Error,
		formatTimePtr(entry.OpenedAt),
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append notification log: %w", err)
	}
	if entry.ID, err = result.LastInsertId(); err != nil {
		return err
	}
	return nil
}

// ListByNotification returns the logs of a notification in insertion order.
func (r *NotificationLogRepository) ListByNotification(ctx context.Context, notificationID string) ([]*domain.NotificationLog, error) {
	var rows []logRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT `+logColumns+` FROM dependency_notification_logs WHERE notification_id = ? ORDER BY id`,
		notificationID)
	if err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	out := make([]*domain.NotificationLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// FindLatest returns the most recent log of a user on a channel for a notification.
func (r *NotificationLogRepository) FindLatest(ctx context.Context, notificationID, userID string, channel domain.Channel) (*domain.NotificationLog, error) {
	var row logRow
	err := sqlx.GetContext(ctx, r.db, &row, `
		SELECT `+logColumns+` FROM dependency_notification_logs
		WHERE notification_id = ? AND user_id = ? AND channel = ?
		ORDER BY id DESC LIMIT 1
	`, notificationID, userID, string(channel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find notification log: %w", err)
	}
	return row.toDomain(), nil
}

// MarkOpened sets a log row to opened.
func (r *NotificationLogRepository) MarkOpened(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE dependency_notification_logs SET status = 'opened', opened_at = ? WHERE id = ?`,
		formatTime(at), id)
	if err != nil {
		return fmt.Errorf("mark log %d opened: %w", id, err)
	}
	return nil
}

// ListForUser returns a page of a user's delivery logs on one channel,
// newest first, joined with their notifications, and the total count.
// UnreadOnly keeps delivered rows only.
func (r *NotificationLogRepository) ListForUser(ctx context.Context, userID string, filter domain.FeedFilter) ([]*domain.UserNotification, int, error) {
	where := ` WHERE l.user_id = ? AND l.channel = ?`
	args := []interface{}{userID, string(filter.Channel)}
	if filter.UnreadOnly {
		where += ` AND l.status = 'delivered'`
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total,
		`SELECT COUNT(*) FROM dependency_notification_logs l`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count user notifications: %w", err)
	}

	var rows []struct {
		logRow
		notificationRow `db:"n"`
	}
	query := `
		SELECT l.id, l.notification_id, l.user_id, l.channel, l.status, l.error, l.opened_at, l.created_at,
		       n.id AS "n.id", n.dependency_id AS "n.dependency_id", n.notification_type AS "n.notification_type",
		       n.recipients AS "n.recipients", n.channels AS "n.channels", n.priority AS "n.priority",
		       n.content AS "n.content", n.status AS "n.status", n.metadata AS "n.metadata",
		       n.sent_at AS "n.sent_at", n.created_at AS "n.created_at", n.updated_at AS "n.updated_at"
		FROM dependency_notification_logs l
		JOIN dependency_notifications n ON n.id = l.notification_id` + where + `
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT ? OFFSET ?`
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, append(args, filter.Limit, filter.Offset)...); err != nil {
		return nil, 0, fmt.Errorf("list user notifications: %w", err)
	}

	out := make([]*domain.UserNotification, 0, len(rows))
	for _, row := range rows {
		n, err := row.notificationRow.toDomain()
		if err != nil {
			return nil, 0, err
		}
		out = append(out, &domain.UserNotification{NotificationLog: *row.logRow.toDomain(), Notification: n})
	}
	return out, total, nil
}
