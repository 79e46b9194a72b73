package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tasktrack/tasktrack/internal/cache"
	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/notify"
	"github.com/tasktrack/tasktrack/internal/store/sqlite"
)

// Feed paging defaults.
const (
	DefaultFeedLimit    = 20
	DefaultHistoryLimit = 50
)

// NotificationService handles notification history, preferences and the
// manual notification endpoints.
type NotificationService struct {
	Deps
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(deps Deps) *NotificationService {
	return &NotificationService{Deps: deps}
}

// NotifyInput contains the input for a manual notification. Empty fields
// take defaults: dependency_updated, the tasks' stakeholders, inApp+email,
// normal priority.
type NotifyInput struct {
	Type         domain.NotificationType
	RecipientIDs []string
	Channels     []domain.Channel
	Priority     domain.Priority
	Override     *notify.ContentOverride
}

// Notify composes a notification for a dependency. High and critical
// notifications are dispatched at once; others wait for the sweeper.
func (s *NotificationService) Notify(ctx context.Context, dependencyID string, input NotifyInput) (*domain.Notification, error) {
	if input.Type == "" {
		input.Type = domain.NotificationUpdated
	}
	if input.Priority == "" {
		input.Priority = domain.PriorityNormal
	}
	if err := validateNotifyInput(input); err != nil {
		return nil, err
	}

	dep, pred, succ, err := s.loadDependency(ctx, dependencyID)
	if err != nil {
		return nil, err
	}

	recipients := input.RecipientIDs
	if len(recipients) == 0 {
		recipients = notify.Stakeholders(pred, succ)
	}

	n, err := s.Composer.Compose(ctx, notify.ComposeInput{
		Dependency:   dep,
		Predecessor:  pred,
		Successor:    succ,
		Type:         input.Type,
		RecipientIDs: recipients,
		Channels:     input.Channels,
		Priority:     input.Priority,
		Override:     input.Override,
	})
	if err != nil {
		return nil, wrapErr(err)
	}

	if n.Priority.Urgent() {
		if err := s.Dispatcher.Process(ctx, n); err != nil {
			s.Log.WithError(err).WithField("notification_id", n.ID).Error("immediate dispatch failed")
		}
	}
	return n, nil
}

func validateNotifyInput(input NotifyInput) error {
	var details []string
	if !input.Type.IsValid() {
		details = append(details, "type must be one of: dependency_created, dependency_updated, dependency_removed, dependency_completed")
	}
	if !input.Priority.IsValid() {
		details = append(details, "priority must be one of: low, normal, high, critical")
	}
	for _, ch := range input.Channels {
		if !ch.IsValid() {
			details = append(details, "channels must be a subset of: email, inApp, push")
			break
		}
	}
	if len(details) > 0 {
		return domain.NewValidationError(details)
	}
	return nil
}

func (s *NotificationService) loadDependency(ctx context.Context, id string) (*domain.Dependency, *domain.Task, *domain.Task, error) {
	db := s.Store.DB()
	dep, err := sqlite.NewDependencyRepository(db).GetByID(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, nil, nil, domain.NewDependencyNotFoundError(id)
	}
	if err != nil {
		return nil, nil, nil, domain.NewInternalError(err)
	}

	tasks := sqlite.NewTaskRepository(db)
	pred, err := getTask(ctx, tasks, dep.PredecessorTaskID)
	if err != nil {
		return nil, nil, nil, wrapErr(err)
	}
	succ, err := getTask(ctx, tasks, dep.SuccessorTaskID)
	if err != nil {
		return nil, nil, nil, wrapErr(err)
	}
	return dep, pred, succ, nil
}

// History returns a page of a dependency's notifications, newest first, each
// with its delivery logs.
func (s *NotificationService) History(ctx context.Context, dependencyID string, limit, offset int) ([]*domain.Notification, int, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	db := s.Store.DB()
	items, total, err := sqlite.NewNotificationRepository(db).ListByDependency(ctx, dependencyID, limit, offset)
	if err != nil {
		return nil, 0, domain.NewInternalError(err)
	}
	logs := sqlite.NewNotificationLogRepository(db)
	for _, n := range items {
		if n.Logs, err = logs.ListByNotification(ctx, n.ID); err != nil {
			return nil, 0, domain.NewInternalError(err)
		}
	}
	if items == nil {
		items = []*domain.Notification{}
	}
	return items, total, nil
}

// GetPreferences returns the stored preferences of a user for a project, or
// globally when projectID is nil, creating the row when absent. A new project
// row starts from the user's global settings, or the defaults. The second
// result reports a cache hit.
func (s *NotificationService) GetPreferences(ctx context.Context, userID string, projectID *string) (*domain.NotificationPreference, bool, error) {
	key := cache.PreferencesKey(userID, projectID)
	if s.Cache != nil {
		var cached domain.Preferences
		hit, err := cache.GetJSON(ctx, s.Cache, key, &cached)
		if err != nil {
			s.Log.WithError(err).WithField("key", key).Warn("preference cache read failed")
		}
		if hit {
			s.Metrics.CacheLookup("hit")
			return &domain.NotificationPreference{UserID: userID, ProjectID: projectID, Settings: cached}, true, nil
		}
		s.Metrics.CacheLookup("miss")
	}

	pref, err := s.getOrCreateDefault(ctx, userID, projectID)
	if err != nil {
		return nil, false, domain.NewInternalError(err)
	}

	if s.Cache != nil {
		if err := cache.SetJSON(ctx, s.Cache, key, pref.Settings, notify.PreferenceTTL); err != nil {
			s.Log.WithError(err).WithField("key", key).Warn("preference cache write failed")
		}
	}
	return pref, false, nil
}

func (s *NotificationService) getOrCreateDefault(ctx context.Context, userID string, projectID *string) (*domain.NotificationPreference, error) {
	repo := sqlite.NewPreferenceRepository(s.Store.DB())
	pref, err := repo.Get(ctx, userID, projectID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, sqlite.ErrNotFound) {
		return nil, err
	}

	settings := domain.DefaultPreferences()
	if projectID != nil && *projectID != "" {
		global, err := repo.Get(ctx, userID, nil)
		switch {
		case err == nil:
			settings = global.Settings
		case !errors.Is(err, sqlite.ErrNotFound):
			return nil, err
		}
	}

	now := time.Now().UTC()
	pref = &domain.NotificationPreference{
		UserID:    userID,
		ProjectID: projectID,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Upsert(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}

// UpdatePreferences merges update onto the stored preferences and drops the
// cached copy.
func (s *NotificationService) UpdatePreferences(ctx context.Context, userID string, projectID *string, update domain.PreferenceUpdate) (*domain.NotificationPreference, error) {
	pref, err := s.getOrCreateDefault(ctx, userID, projectID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	pref.Settings = update.Apply(pref.Settings)
	pref.UpdatedAt = time.Now().UTC()
	if err := sqlite.NewPreferenceRepository(s.Store.DB()).Upsert(ctx, pref); err != nil {
		return nil, domain.NewInternalError(err)
	}

	if s.Cache != nil {
		key := cache.PreferencesKey(userID, projectID)
		if err := s.Cache.Delete(ctx, key); err != nil {
			s.Log.WithError(err).WithField("key", key).Warn("preference cache delete failed")
		}
	}
	if s.Preferences != nil {
		s.Preferences.Invalidate(ctx, userID, projectID)
	}
	s.Log.WithFields(logrus.Fields{"user_id": userID, "project_id": projectID}).Info("notification preferences updated")
	return pref, nil
}

// Analytics counts notifications by status and type and deliveries by
// channel and status. The date range applies only when both ends are set.
func (s *NotificationService) Analytics(ctx context.Context, filter domain.AnalyticsFilter) (*domain.NotificationAnalytics, error) {
	if filter.From == nil || filter.To == nil {
		filter.From, filter.To = nil, nil
	}
	result, err := sqlite.NewNotificationRepository(s.Store.DB()).Analytics(ctx, filter)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return result, nil
}

// TestNotification sends a low priority notification of the given type to
// the caller alone, over one channel, immediately.
func (s *NotificationService) TestNotification(ctx context.Context, dependencyID, userID string, t domain.NotificationType, ch domain.Channel) (*domain.Notification, error) {
	if t == "" {
		t = domain.NotificationCreated
	}
	if ch == "" {
		ch = domain.ChannelEmail
	}
	if !t.IsValid() || !ch.IsValid() {
		return nil, domain.NewValidationError([]string{"invalid notification type or channel"})
	}

	dep, pred, succ, err := s.loadDependency(ctx, dependencyID)
	if err != nil {
		return nil, err
	}

	n, err := s.Composer.Compose(ctx, notify.ComposeInput{
		Dependency:   dep,
		Predecessor:  pred,
		Successor:    succ,
		Type:         t,
		RecipientIDs: []string{userID},
		Channels:     []domain.Channel{ch},
		Priority:     domain.PriorityLow,
		Override: &notify.ContentOverride{
			Subject: "[TEST] " + string(t) + " notification",
			Text:    "This is a test notification for dependency tracking.",
		},
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	if err := s.Dispatcher.Process(ctx, n); err != nil {
		return nil, domain.NewInternalError(err)
	}
	return n, nil
}

// MarkAsRead marks the caller's in-app delivery of a notification opened,
// along with the feed entry it produced.
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	db := s.Store.DB()
	logs := sqlite.NewNotificationLogRepository(db)
	entry, err := logs.FindLatest(ctx, notificationID, userID, domain.ChannelInApp)
	if errors.Is(err, sqlite.ErrNotFound) {
		return domain.NewNotificationNotFoundError(notificationID)
	}
	if err != nil {
		return domain.NewInternalError(err)
	}

	if err := logs.MarkOpened(ctx, entry.ID, time.Now().UTC()); err != nil {
		return domain.NewInternalError(err)
	}
	if _, err := sqlite.NewInAppRepository(db).MarkReadBySource(ctx, userID, notificationID); err != nil {
		return domain.NewInternalError(err)
	}
	return nil
}

// UserFeed returns the caller's delivery history joined with notifications.
func (s *NotificationService) UserFeed(ctx context.Context, userID string, filter domain.FeedFilter) ([]*domain.UserNotification, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultFeedLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Channel == "" {
		filter.Channel = domain.ChannelInApp
	}
	if !filter.Channel.IsValid() {
		return nil, 0, domain.NewValidationError([]string{"channel must be one of: email, inApp, push"})
	}

	items, total, err := sqlite.NewNotificationLogRepository(s.Store.DB()).ListForUser(ctx, userID, filter)
	if err != nil {
		return nil, 0, domain.NewInternalError(err)
	}
	if items == nil {
		items = []*domain.UserNotification{}
	}
	return items, total, nil
}
