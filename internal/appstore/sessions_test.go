package appstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions(t *testing.T) {
	ctx := context.Background()
	backend := newMockBackend()
	sessions := NewSessions(func() *Store { return New(backend, nil) }, nil)

	t.Run("get rebuilds a missing session", func(t *testing.T) {
		st, err := sessions.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", st.UserID())
		assert.Equal(t, 1, sessions.Len())

		again, err := sessions.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Same(t, st, again)
	})

	t.Run("unknown user fails", func(t *testing.T) {
		_, err := sessions.Get(ctx, "user-2")
		assert.Error(t, err)
		assert.Equal(t, 1, sessions.Len())
	})

	t.Run("put replaces and remove forgets", func(t *testing.T) {
		fresh := sessions.New()
		sessions.Put("user-1", fresh)
		got, err := sessions.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Same(t, fresh, got)

		sessions.Remove("user-1")
		assert.Equal(t, 0, sessions.Len())
	})
}
