package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuditEntry(t *testing.T) {
	before := time.Now().UTC()
	e := NewAuditEntry("dep-1", ActionRemove, "usr-1")

	assert.Equal(t, "dep-1", e.DependencyID)
	assert.Equal(t, ActionRemove, e.Action)
	assert.Equal(t, "usr-1", e.ChangedBy)
	assert.False(t, e.ChangedAt.Before(before))
	assert.Nil(t, e.Field)
}

func TestAuditEntry_Builders(t *testing.T) {
	e := NewAuditEntry("dep-1", ActionUpdate, "usr-1").
		WithField("dependency_type").
		WithOldValue("FS").
		WithNewValue("SS")

	require.NotNil(t, e.Field)
	assert.Equal(t, "dependency_type", *e.Field)
	assert.Equal(t, "FS", *e.OldValue)
	assert.Equal(t, "SS", *e.NewValue)
}

func TestAuditAction_IsValid(t *testing.T) {
	for _, a := range ValidAuditActions {
		assert.True(t, a.IsValid())
	}
	assert.False(t, AuditAction("delete").IsValid())
}
