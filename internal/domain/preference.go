package domain

import "time"

// ChannelToggles enables or disables each delivery channel.
type ChannelToggles struct {
	Email bool `json:"email"`
	InApp bool `json:"inApp"`
	Push  bool `json:"push"`
}

// Enabled reports whether the given channel is switched on.
func (c ChannelToggles) Enabled(ch Channel) bool {
	switch ch {
	case ChannelEmail:
		return c.Email
	case ChannelInApp:
		return c.InApp
	case ChannelPush:
		return c.Push
	default:
		return false
	}
}

// Preferences is the effective notification configuration for a recipient.
type Preferences struct {
	Enabled  bool            `json:"enabled"`
	Channels ChannelToggles  `json:"channels"`
	Events   map[string]bool `json:"events"`
}

// DefaultPreferences is used when a user has stored no preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		Enabled: true,
		Channels: ChannelToggles{
			Email: true,
			InApp: true,
			Push:  false,
		},
		Events: map[string]bool{
			"created":   true,
			"updated":   true,
			"removed":   true,
			"completed": true,
		},
	}
}

// ShouldNotify reports whether a notification of the given type may be
// delivered on the channel. Events absent from the map default to on.
func (p Preferences) ShouldNotify(t NotificationType, ch Channel) bool {
	if !p.Enabled {
		return false
	}
	if on, ok := p.Events[t.EventKey()]; ok && !on {
		return false
	}
	return p.Channels.Enabled(ch)
}

// NotificationPreference is the stored preference row of a user, optionally
// scoped to a project. ProjectID nil means the global default of the user.
type NotificationPreference struct {
	UserID    string      `json:"user_id"`
	ProjectID *string     `json:"project_id,omitempty"`
	Settings  Preferences `json:"settings"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// PreferenceUpdate is a partial update merged onto stored preferences.
type PreferenceUpdate struct {
	Enabled  *bool           `json:"enabled,omitempty"`
	Channels *ChannelUpdate  `json:"channels,omitempty"`
	Events   map[string]bool `json:"events,omitempty"`
}

// ChannelUpdate is a partial channel toggle update.
type ChannelUpdate struct {
	Email *bool `json:"email,omitempty"`
	InApp *bool `json:"inApp,omitempty"`
	Push  *bool `json:"push,omitempty"`
}

// Apply merges the update onto p and returns the result.
func (u PreferenceUpdate) Apply(p Preferences) Preferences {
	if u.Enabled != nil {
		p.Enabled = *u.Enabled
	}
	if u.Channels != nil {
		if u.Channels.Email != nil {
			p.Channels.Email = *u.Channels.Email
		}
		if u.Channels.InApp != nil {
			p.Channels.InApp = *u.Channels.InApp
		}
		if u.Channels.Push != nil {
			p.Channels.Push = *u.Channels.Push
		}
	}
	if len(u.Events) > 0 {
		merged := make(map[string]bool, len(p.Events)+len(u.Events))
		for k, v := range p.Events {
			merged[k] = v
		}
		for k, v := range u.Events {
			merged[k] = v
		}
		p.Events = merged
	}
	return p
}
