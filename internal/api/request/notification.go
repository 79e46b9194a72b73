package request

import (
	"net/http"
	"time"

	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/notify"
	"github.com/tasktrack/tasktrack/internal/service"
)

// NotifyRequest triggers a manual notification for a dependency.
type NotifyRequest struct {
	NotificationType string                  `json:"notificationType" validate:"omitempty,oneof=dependency_created dependency_updated dependency_removed dependency_completed"`
	Recipients       []string                `json:"recipients" validate:"omitempty,dive,required"`
	Channels         []string                `json:"channels" validate:"omitempty,dive,oneof=email inApp push"`
	Priority         string                  `json:"priority" validate:"omitempty,oneof=low normal high critical"`
	CustomContent    *notify.ContentOverride `json:"customContent"`
}

// Validate validates the notify request.
func (r *NotifyRequest) Validate() []string {
	return check(r)
}

// Input converts the request.
func (r *NotifyRequest) Input() service.NotifyInput {
	in := service.NotifyInput{
		Type:         domain.NotificationType(r.NotificationType),
		RecipientIDs: r.Recipients,
		Priority:     domain.Priority(r.Priority),
		Override:     r.CustomContent,
	}
	for _, ch := range r.Channels {
		in.Channels = append(in.Channels, domain.Channel(ch))
	}
	return in
}

// TestNotificationRequest sends a test notification to the caller.
type TestNotificationRequest struct {
	NotificationType string `json:"notificationType" validate:"omitempty,oneof=dependency_created dependency_updated dependency_removed dependency_completed"`
	Channel          string `json:"channel" validate:"omitempty,oneof=email inApp push"`
}

// Validate validates the test notification request.
func (r *TestNotificationRequest) Validate() []string {
	return check(r)
}

// ParseAnalyticsFilter reads dependencyId, userId, from and to. Dates are
// RFC 3339 or YYYY-MM-DD.
func ParseAnalyticsFilter(r *http.Request) (domain.AnalyticsFilter, []string) {
	q := r.URL.Query()
	var (
		f    domain.AnalyticsFilter
		errs []string
	)
	if v := q.Get("dependencyId"); v != "" {
		f.DependencyID = &v
	}
	if v := q.Get("userId"); v != "" {
		f.UserID = &v
	}
	bounds := []struct {
		name string
		dst  **time.Time
	}{{"from", &f.From}, {"to", &f.To}}
	for _, b := range bounds {
		v := q.Get(b.name)
		if v == "" {
			continue
		}
		ts, err := parseDate(v)
		if err != nil {
			errs = append(errs, b.name+" must be an RFC 3339 timestamp or YYYY-MM-DD date")
			continue
		}
		*b.dst = &ts
	}
	return f, errs
}

func parseDate(v string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts.UTC(), nil
	}
	return time.Parse(time.DateOnly, v)
}

// ParseFeedFilter reads limit, offset, unreadOnly and channel for the user
// feed.
func ParseFeedFilter(r *http.Request) (domain.FeedFilter, []string) {
	p := ParsePagination(r, service.DefaultFeedLimit)
	f := domain.FeedFilter{
		Limit:      p.Limit,
		Offset:     p.Offset,
		UnreadOnly: ParseBool(r, "unreadOnly"),
	}
	if v := r.URL.Query().Get("channel"); v != "" {
		ch := domain.Channel(v)
		if !ch.IsValid() {
			return f, []string{"channel must be one of email, inApp, push"}
		}
		f.Channel = ch
	}
	return f, nil
}
