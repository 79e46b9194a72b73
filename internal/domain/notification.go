package domain

import "time"

// NotificationType identifies the dependency event a notification reports.
type NotificationType string

const (
	NotificationCreated   NotificationType = "dependency_created"
	NotificationUpdated   NotificationType = "dependency_updated"
	NotificationRemoved   NotificationType = "dependency_removed"
	NotificationCompleted NotificationType = "dependency_completed"
)

// ValidNotificationTypes contains all valid notification types.
var ValidNotificationTypes = []NotificationType{
	NotificationCreated,
	NotificationUpdated,
	NotificationRemoved,
	NotificationCompleted,
}

// IsValid checks if the notification type is valid.
func (t NotificationType) IsValid() bool {
	for _, v := range ValidNotificationTypes {
		if t == v {
			return true
		}
	}
	return false
}

// EventKey maps the type to the key used in preference event toggles.
func (t NotificationType) EventKey() string {
	switch t {
	case NotificationCreated:
		return "created"
	case NotificationUpdated:
		return "updated"
	case NotificationRemoved:
		return "removed"
	case NotificationCompleted:
		return "completed"
	default:
		return string(t)
	}
}

// Channel is a delivery channel.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "inApp"
	ChannelPush  Channel = "push"
)

// IsValid checks if the channel is known.
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelInApp || c == ChannelPush
}

// Priority orders notifications for delivery.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValid checks if the priority is known.
func (p Priority) IsValid() bool {
	return p.Rank() >= 0
}

// Rank orders priorities from low (0) to critical (3). Unknown values return -1.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityNormal:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	default:
		return -1
	}
}

// Urgent reports whether the notification is dispatched immediately on creation.
func (p Priority) Urgent() bool {
	return p == PriorityHigh || p == PriorityCritical
}

// NotificationStatus is the delivery state of a notification.
//
//	pending -> sent -> delivered
//	pending -> failed (retry budget exhausted)
type NotificationStatus string

const (
	NotificationPending   NotificationStatus = "pending"
	NotificationSent      NotificationStatus = "sent"
	NotificationDelivered NotificationStatus = "delivered"
	NotificationFailed    NotificationStatus = "failed"
)

// Recipient is a resolved notification target with its channel preferences.
type Recipient struct {
	UserID      string      `json:"user_id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Preferences Preferences `json:"preferences"`
}

// Content is the rendered body of a notification. Data carries a snapshot of
// the dependency and both tasks taken when the notification was composed.
type Content struct {
	Subject string          `json:"subject"`
	Title   string          `json:"title"`
	Text    string          `json:"text"`
	HTML    string          `json:"html,omitempty"`
	Data    ContentSnapshot `json:"data"`
}

// ContentSnapshot is the task/dependency state embedded in a notification.
type ContentSnapshot struct {
	Dependency      DependencySnapshot `json:"dependency"`
	PredecessorTask TaskSnapshot       `json:"predecessor_task"`
	SuccessorTask   TaskSnapshot       `json:"successor_task"`
	Extra           map[string]any     `json:"extra,omitempty"`
}

// DependencySnapshot is the dependency part of a ContentSnapshot.
type DependencySnapshot struct {
	ID      string         `json:"id"`
	Type    DependencyType `json:"type"`
	LagTime int            `json:"lag_time"`
}

// TaskSnapshot is a task part of a ContentSnapshot.
type TaskSnapshot struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Status  TaskStatus `json:"status"`
	BoardID *string    `json:"board_id,omitempty"`
}

// NotificationMetadata tracks retries and failures.
type NotificationMetadata struct {
	RetryCount    int        `json:"retry_count"`
	FailureReason string     `json:"failure_reason,omitempty"`
	LastRetryAt   *time.Time `json:"last_retry_at,omitempty"`
	FailedAt      *time.Time `json:"failed_at,omitempty"`
}

// Notification is a dependency event addressed to a set of recipients.
type Notification struct {
	ID           string               `json:"id"`
	DependencyID string               `json:"dependency_id"`
	Type         NotificationType     `json:"notification_type"`
	Priority     Priority             `json:"priority"`
	Status       NotificationStatus   `json:"status"`
	Recipients   []Recipient          `json:"recipients"`
	Channels     []Channel            `json:"channels"`
	Content      Content              `json:"content"`
	Metadata     NotificationMetadata `json:"metadata"`
	SentAt       *time.Time           `json:"sent_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`

	Logs []*NotificationLog `json:"logs,omitempty"`
}

// DeliveryStatus is the outcome of one delivery attempt.
type DeliveryStatus string

const (
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliveryOpened    DeliveryStatus = "opened"
)

// NotificationLog is the append-only record of one recipient/channel attempt.
type NotificationLog struct {
	ID             int64          `json:"id"`
	NotificationID string         `json:"notification_id"`
	UserID         string         `json:"user_id"`
	Channel        Channel        `json:"channel"`
	Status         DeliveryStatus `json:"status"`
	Error          *string        `json:"error,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	OpenedAt       *time.Time     `json:"opened_at,omitempty"`
}

// InAppNotification is a row in the general user notification feed.
type InAppNotification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
	Priority  Priority       `json:"priority"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// CountByKey is one bucket of an analytics aggregation.
type CountByKey struct {
	Key   string `json:"key"`
	Group string `json:"group"`
	Count int    `json:"count"`
}

// NotificationAnalytics aggregates notification and delivery counts.
type NotificationAnalytics struct {
	Notifications []CountByKey `json:"notifications"`
	Deliveries    []CountByKey `json:"deliveries"`
}

// UserNotification is one entry of a user's notification feed: a delivery
// log row joined with the notification it belongs to.
type UserNotification struct {
	NotificationLog
	Notification *Notification `json:"notification"`
}

// AnalyticsFilter narrows NotificationAnalytics.
type AnalyticsFilter struct {
	DependencyID *string
	UserID       *string
	From         *time.Time
	To           *time.Time
}

// FeedFilter narrows a user notification feed.
type FeedFilter struct {
	Channel    Channel
	UnreadOnly bool
	Limit      int
	Offset     int
}
