package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/store/sqlite"
	"github.com/tasktrack/tasktrack/pkg/idgen"
)

// DefaultChannels are used when a notification names none.
var DefaultChannels = []domain.Channel{domain.ChannelInApp, domain.ChannelEmail}

// ComposeInput describes a notification to build. Predecessor and Successor
// are loaded from the store when nil.
type ComposeInput struct {
	Dependency   *domain.Dependency
	Predecessor  *domain.Task
	Successor    *domain.Task
	Type         domain.NotificationType
	RecipientIDs []string
	Channels     []domain.Channel
	Priority     domain.Priority
	Override     *ContentOverride
}

// Composer builds pending notifications with resolved recipients.
type Composer struct {
	db    sqlx.ExtContext
	prefs *PreferenceResolver
	log   logrus.FieldLogger
}

// NewComposer creates a Composer.
func NewComposer(db sqlx.ExtContext, prefs *PreferenceResolver, log logrus.FieldLogger) *Composer {
	return &Composer{db: db, prefs: prefs, log: log}
}

// Compose resolves recipients and their preferences, renders the content
// and stores the notification as pending. Unknown users are skipped.
func (c *Composer) Compose(ctx context.Context, in ComposeInput) (*domain.Notification, error) {
	if in.Dependency == nil {
		return nil, errors.New("compose: dependency is required")
	}
	if !in.Type.IsValid() {
		return nil, fmt.Errorf("compose: unknown notification type %q", in.Type)
	}

	tasks := sqlite.NewTaskRepository(c.db)
	pred, err := c.loadTask(ctx, tasks, in.Predecessor, in.Dependency.PredecessorTaskID)
	if err != nil {
		return nil, err
	}
	succ, err := c.loadTask(ctx, tasks, in.Successor, in.Dependency.SuccessorTaskID)
	if err != nil {
		return nil, err
	}

	projectID, err := tasks.ProjectID(ctx, succ.ID)
	if err != nil && !errors.Is(err, sqlite.ErrNotFound) {
		return nil, err
	}

	recipients, err := c.resolveRecipients(ctx, in.RecipientIDs, projectID)
	if err != nil {
		return nil, err
	}

	channels := in.Channels
	if len(channels) == 0 {
		channels = DefaultChannels
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	id, err := idgen.Generate(idgen.Notification)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	n := &domain.Notification{
		ID:           id,
		DependencyID: in.Dependency.ID,
		Type:         in.Type,
		Priority:     priority,
		Status:       domain.NotificationPending,
		Recipients:   recipients,
		Channels:     channels,
		Content:      buildContent(in.Type, in.Dependency, pred, succ, in.Override),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := sqlite.NewNotificationRepository(c.db).Create(ctx, n); err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"dependency_id":   n.DependencyID,
		"type":            n.Type,
		"recipients":      len(n.Recipients),
	}).Debug("notification composed")
	return n, nil
}

func (c *Composer) loadTask(ctx context.Context, repo *sqlite.TaskRepository, known *domain.Task, id string) (*domain.Task, error) {
	if known != nil {
		return known, nil
	}
	task, err := repo.GetByID(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, domain.NewTaskNotFoundError(id)
	}
	return task, err
}

func (c *Composer) resolveRecipients(ctx context.Context, ids []string, projectID *string) ([]domain.Recipient, error) {
	users := sqlite.NewUserRepository(c.db)
	recipients := make([]domain.Recipient, 0, len(ids))
	seen := make(map[string]bool, len(ids))

	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		user, err := users.GetByID(ctx, id)
		if errors.Is(err, sqlite.ErrNotFound) {
			c.log.WithField("user_id", id).Debug("skipping unknown recipient")
			continue
		}
		if err != nil {
			return nil, err
		}

		prefs, err := c.prefs.Resolve(ctx, id, projectID)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, domain.Recipient{
			UserID:      user.ID,
			Email:       user.Email,
			Name:        user.Name,
			Preferences: prefs,
		})
	}
	return recipients, nil
}

// Stakeholders returns the creators and assignees of both tasks without
// duplicates, in first-seen order.
func Stakeholders(tasks ...*domain.Task) []string {
	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		add(t.CreatedBy)
		for _, a := range t.AssignedTo {
			add(a)
		}
	}
	return ids
}
