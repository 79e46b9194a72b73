package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriority_Rank(t *testing.T) {
	assert.Less(t, PriorityLow.Rank(), PriorityNormal.Rank())
	assert.Less(t, PriorityNormal.Rank(), PriorityHigh.Rank())
	assert.Less(t, PriorityHigh.Rank(), PriorityCritical.Rank())
	assert.False(t, Priority("urgent").IsValid())

	assert.True(t, PriorityHigh.Urgent())
	assert.True(t, PriorityCritical.Urgent())
	assert.False(t, PriorityNormal.Urgent())
}

func TestPreferences_ShouldNotify(t *testing.T) {
	p := DefaultPreferences()
	assert.True(t, p.ShouldNotify(NotificationCreated, ChannelEmail))
	assert.True(t, p.ShouldNotify(NotificationCreated, ChannelInApp))
	assert.False(t, p.ShouldNotify(NotificationCreated, ChannelPush))

	p.Events["updated"] = false
	assert.False(t, p.ShouldNotify(NotificationUpdated, ChannelInApp))
	assert.True(t, p.ShouldNotify(NotificationRemoved, ChannelInApp))

	p.Enabled = false
	assert.False(t, p.ShouldNotify(NotificationRemoved, ChannelInApp))
}

func TestPreferenceUpdate_Apply(t *testing.T) {
	off, on := false, true
	base := DefaultPreferences()

	got := PreferenceUpdate{
		Channels: &ChannelUpdate{Email: &off, Push: &on},
		Events:   map[string]bool{"removed": false},
	}.Apply(base)

	assert.True(t, got.Enabled)
	assert.False(t, got.Channels.Email)
	assert.True(t, got.Channels.InApp)
	assert.True(t, got.Channels.Push)
	assert.False(t, got.Events["removed"])
	assert.True(t, got.Events["created"])
	assert.True(t, base.Events["removed"], "base map is not mutated")
}

func TestNotificationType_EventKey(t *testing.T) {
	for _, nt := range ValidNotificationTypes {
		assert.True(t, nt.IsValid())
		assert.Contains(t, DefaultPreferences().Events, nt.EventKey())
	}
}
