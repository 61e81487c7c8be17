package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLog(t *testing.T) *SQLiteLog {
	t.Helper()
	l, err := NewSQLiteLog()
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestSQLiteLog_AppendAndList(t *testing.T) {
	ctx := context.Background()
	l := newLog(t)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 6, time.UTC)
	l.now = func() time.Time { return fixed }

	u, err := l.Append(ctx, RoleUser, "make the cat dance")
	require.NoError(t, err)
	a, err := l.Append(ctx, RoleAssistant, "sure")
	require.NoError(t, err)
	assert.NotEqual(t, u.ID, a.ID)

	msgs, err := l.List(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, u, msgs[0])
	assert.Equal(t, a, msgs[1])
	assert.Equal(t, fixed, msgs[0].CreatedAt)
}

func TestSQLiteLog_Reset(t *testing.T) {
	ctx := context.Background()
	l := newLog(t)

	_, err := l.Append(ctx, RoleUser, "hi")
	require.NoError(t, err)
	require.NoError(t, l.Reset(ctx))

	msgs, err := l.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.NotNil(t, msgs)
}

func TestSQLiteLog_RejectsUnknownRole(t *testing.T) {
	_, err := newLog(t).Append(context.Background(), Role("system"), "x")
	assert.Error(t, err)
}

func TestSQLiteLog_SeparateInstances(t *testing.T) {
	ctx := context.Background()
	a, b := newLog(t), newLog(t)
	_, err := a.Append(ctx, RoleUser, "only in a")
	require.NoError(t, err)

	msgs, err := b.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
