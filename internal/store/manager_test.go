package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesSchemaAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deps.db")

	m, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, m.Migrate(context.Background()))
	require.NoError(t, m.Close())

	m, err = Open(path)
	require.NoError(t, err)
	defer m.Close()

	var tables []string
	require.NoError(t, m.DB().Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	for _, want := range []string{
		"audit_log", "boards", "dependency_notification_logs", "dependency_notification_preferences",
		"dependency_notifications", "notifications", "task_assignees", "task_dependencies", "tasks", "users",
	} {
		assert.Contains(t, tables, want)
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "deps.db"))
	require.NoError(t, err)
	defer m.Close()
	ctx := context.Background()

	boom := errors.New("boom")
	err = m.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (id, name, email, created_at) VALUES ('u1', 'n', 'e', 'now')`)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, m.DB().Get(&count, `SELECT COUNT(*) FROM users`))
	assert.Zero(t, count)

	require.NoError(t, m.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO users (id, name, email, created_at) VALUES ('u1', 'n', 'e', 'now')`)
		return err
	}))
	require.NoError(t, m.DB().Get(&count, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, count)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	m, err := Open(filepath.Join(t.TempDir(), "deps.db"))
	require.NoError(t, err)
	defer m.Close()
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = m.WithTx(ctx, func(tx *sqlx.Tx) error {
			_, _ = tx.ExecContext(ctx, `INSERT INTO users (id, name, email, created_at) VALUES ('u1', 'n', 'e', 'now')`)
			panic("hook exploded")
		})
	})

	var count int
	require.NoError(t, m.DB().Get(&count, `SELECT COUNT(*) FROM users`))
	assert.Zero(t, count)
}
