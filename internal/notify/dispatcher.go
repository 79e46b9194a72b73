package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/metrics"
	"github.com/tasktrack/tasktrack/internal/realtime"
	"github.com/tasktrack/tasktrack/internal/store/sqlite"
	"github.com/tasktrack/tasktrack/pkg/idgen"
)

var (
	// ErrChannelNotImplemented is the outcome of every push delivery.
	ErrChannelNotImplemented = errors.New("channel not implemented")
	// ErrNotClaimed means another dispatcher took the notification first, or
	// it already left the pending state.
	ErrNotClaimed = errors.New("notification already claimed")
)

// DeliveryError is a failed delivery on one channel to one recipient. It is
// logged and counted but never aborts the rest of the pass.
type DeliveryError struct {
	NotificationID string
	UserID         string
	Channel        domain.Channel
	Err            error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %s to %s via %s: %v", e.NotificationID, e.UserID, e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Dispatcher delivers notifications over their channels.
type Dispatcher struct {
	db          sqlx.ExtContext
	mailer      Mailer
	emitter     realtime.Emitter
	metrics     *metrics.Metrics
	log         logrus.FieldLogger
	frontendURL string
	maxRetries  int
}

// DispatcherConfig holds the collaborators of a Dispatcher.
type DispatcherConfig struct {
	Mailer      Mailer
	Emitter     realtime.Emitter
	Metrics     *metrics.Metrics
	Log         logrus.FieldLogger
	FrontendURL string
	// MaxRetries is how many failed passes after the first put a
	// notification back to pending before it is marked failed.
	MaxRetries int
}

// NewDispatcher creates a Dispatcher. A nil emitter discards events and a
// negative MaxRetries takes the default.
func NewDispatcher(db sqlx.ExtContext, cfg DispatcherConfig) *Dispatcher {
	if cfg.Emitter == nil {
		cfg.Emitter = realtime.Nop{}
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = config.DefaultSweepMaxRetries
	}
	return &Dispatcher{
		db:          db,
		mailer:      cfg.Mailer,
		emitter:     cfg.Emitter,
		metrics:     cfg.Metrics,
		log:         cfg.Log,
		frontendURL: cfg.FrontendURL,
		maxRetries:  cfg.MaxRetries,
	}
}

// Process claims n and delivers it to every recipient on every channel their
// preferences allow, logging each attempt. n must be as last read from the
// store; if its row changed since, Process returns ErrNotClaimed and does
// nothing. When the pass itself errors, n goes back to pending with its
// retry count raised, or to failed once MaxRetries is spent, and the error
// is returned.
func (d *Dispatcher) Process(ctx context.Context, n *domain.Notification) error {
	notifications := sqlite.NewNotificationRepository(d.db)

	won, err := notifications.Claim(ctx, n)
	if err != nil {
		return err
	}
	if !won {
		return ErrNotClaimed
	}

	if err := d.deliverAll(ctx, n); err != nil {
		d.recordFailure(ctx, notifications, n, err)
		return err
	}

	n.Status = domain.NotificationDelivered
	if err := notifications.SaveState(ctx, n); err != nil {
		return err
	}
	d.metrics.Processed(string(n.Type), string(domain.NotificationDelivered))
	return nil
}

func (d *Dispatcher) recordFailure(ctx context.Context, repo *sqlite.NotificationRepository, n *domain.Notification, cause error) {
	now := time.Now().UTC()
	n.Metadata.FailureReason = cause.Error()
	if n.Metadata.RetryCount < d.maxRetries {
		n.Metadata.RetryCount++
		n.Metadata.LastRetryAt = &now
		n.Status = domain.NotificationPending
		d.metrics.Processed(string(n.Type), "retried")
	} else {
		n.Metadata.FailedAt = &now
		n.Status = domain.NotificationFailed
		d.metrics.Processed(string(n.Type), string(domain.NotificationFailed))
	}

	// A failed write leaves the row sent; the sweeper picks it up once stale.
	if err := repo.SaveState(ctx, n); err != nil {
		d.log.WithError(err).WithField("notification_id", n.ID).Error("failed to record notification failure")
	}
	d.log.WithError(cause).WithFields(logrus.Fields{
		"notification_id": n.ID,
		"retry_count":     n.Metadata.RetryCount,
		"status":          n.Status,
	}).Warn("notification processing failed")
}

func (d *Dispatcher) deliverAll(ctx context.Context, n *domain.Notification) error {
	users := sqlite.NewUserRepository(d.db)
	logs := sqlite.NewNotificationLogRepository(d.db)

	for _, recipient := range n.Recipients {
		user, err := users.GetByID(ctx, recipient.UserID)
		if errors.Is(err, sqlite.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		for _, ch := range n.Channels {
			if !recipient.Preferences.ShouldNotify(n.Type, ch) {
				d.metrics.Delivery(string(ch), "skipped")
				continue
			}

			entry := &domain.NotificationLog{
				NotificationID: n.ID,
				UserID:         user.ID,
				Channel:        ch,
				Status:         domain.DeliveryDelivered,
			}
			if err := d.deliver(ctx, n, user, ch); err != nil {
				derr := &DeliveryError{NotificationID: n.ID, UserID: user.ID, Channel: ch, Err: err}
				d.log.WithError(derr).Warn("notification delivery failed")
				msg := err.Error()
				entry.Status = domain.DeliveryFailed
				entry.Error = &msg
			}
			d.metrics.Delivery(string(ch), string(entry.Status))

			if err := logs.Append(ctx, entry); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, n *domain.Notification, user *domain.User, ch domain.Channel) error {
	switch ch {
	case domain.ChannelEmail:
		return d.sendEmail(ctx, n, user)
	case domain.ChannelInApp:
		return d.sendInApp(ctx, n, user)
	case domain.ChannelPush:
		return ErrChannelNotImplemented
	default:
		return fmt.Errorf("unknown channel %q", ch)
	}
}

func (d *Dispatcher) sendEmail(ctx context.Context, n *domain.Notification, user *domain.User) error {
	if d.mailer == nil {
		return ErrMailerDisabled
	}
	html, err := renderEmail(n, user.Name, d.frontendURL)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	return d.mailer.Send(ctx, Email{
		To:      user.Email,
		Subject: n.Content.Subject,
		Text:    n.Content.Text,
		HTML:    html,
	})
}

func (d *Dispatcher) sendInApp(ctx context.Context, n *domain.Notification, user *domain.User) error {
	id, err := idgen.Generate(idgen.InApp)
	if err != nil {
		return err
	}

	title := n.Content.Title
	if title == "" {
		title = "Dependency Notification"
	}
	message := n.Content.Text
	if message == "" {
		message = "You have a new dependency notification"
	}
	priority := n.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	entry := &domain.InAppNotification{
		ID:      id,
		UserID:  user.ID,
		Type:    "dependency",
		Title:   title,
		Message: message,
		Data: map[string]any{
			"dependencyId":             n.DependencyID,
			"notificationType":         n.Type,
			"dependency":               n.Content.Data.Dependency,
			"dependencyNotificationId": n.ID,
		},
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}
	if err := sqlite.NewInAppRepository(d.db).Create(ctx, entry, n.ID); err != nil {
		return err
	}

	if err := d.emitter.Emit(realtime.UserRoom(user.ID), realtime.EventDependencyNotification, entry); err != nil {
		d.log.WithError(err).WithField("user_id", user.ID).Warn("realtime emit failed")
	}
	return nil
}
