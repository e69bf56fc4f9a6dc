package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/phrazzld/flashdeck/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, path string) *KVStore {
	t.Helper()
	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKVStore_LoadMissingKey(t *testing.T) {
	s := openTestStore(t, ":memory:")

	value, err := s.Load(context.Background(), "flashcard-app-storage")
	assert.Nil(t, value)
	assert.ErrorIs(t, err, store.ErrStateNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestKVStore_SaveOverwrites(t *testing.T) {
	s := openTestStore(t, ":memory:")
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "state", []byte(`{"v":1}`)))
	require.NoError(t, s.Save(ctx, "state", []byte(`{"v":2}`)))
	require.NoError(t, s.Save(ctx, "other", []byte(`{}`)))

	value, err := s.Load(ctx, "state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(value))
}

func TestKVStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	first, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "flashcard-app-storage", []byte(`{"isAuthenticated":true}`)))
	require.NoError(t, first.Close())

	second := openTestStore(t, path)
	value, err := second.Load(ctx, "flashcard-app-storage")
	require.NoError(t, err)
	assert.JSONEq(t, `{"isAuthenticated":true}`, string(value))
}
