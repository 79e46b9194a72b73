package idgen

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^dep-[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[0-9a-f]{4}-[0-9a-f]{12}$`)

	id, err := Generate(Dependency)
	require.NoError(t, err)
	assert.Regexp(t, pattern, id)
}

func TestGenerate_Unique(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id, err := Generate(Notification)
		require.NoError(t, err)
		require.False(t, ids[id], "duplicate ID %s", id)
		ids[id] = true
	}
}

func TestGenerate_SuffixIsUUID(t *testing.T) {
	for _, p := range []Prefix{Dependency, Notification, InApp, Task, User, Board, Request} {
		id, err := Generate(p)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(id, string(p)+"-"), id)

		_, err = uuid.Parse(strings.TrimPrefix(id, string(p)+"-"))
		assert.NoError(t, err, id)
	}
}
