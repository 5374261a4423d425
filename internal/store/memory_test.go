package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "browser-1", KeyCart)
	require.NoError(t, err)
	assert.False(t, ok, "key should not exist before Set")

	require.NoError(t, s.Set(ctx, "browser-1", KeyCart, `[{"id":1}]`))

	v, ok, err := s.Get(ctx, "browser-1", KeyCart)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, v)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "b", KeyAccessToken, "old"))
	require.NoError(t, s.Set(ctx, "b", KeyAccessToken, "new"))

	v, ok, _ := s.Get(ctx, "b", KeyAccessToken)
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestMemoryStoreBrowserIsolation(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "browser-a", KeyAccessToken, "token-a"))
	require.NoError(t, s.Set(ctx, "browser-b", KeyAccessToken, "token-b"))

	v, _, _ := s.Get(ctx, "browser-a", KeyAccessToken)
	assert.Equal(t, "token-a", v)

	_, ok, _ := s.Get(ctx, "browser-c", KeyAccessToken)
	assert.False(t, ok, "unknown browser should have no state")
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "b", KeyAccessToken, "a"))
	require.NoError(t, s.Set(ctx, "b", KeyRefreshToken, "r"))
	require.NoError(t, s.Set(ctx, "b", KeyCart, "[]"))

	// Deleting several keys at once must leave the rest untouched.
	require.NoError(t, s.Delete(ctx, "b", KeyAccessToken, KeyRefreshToken))

	_, ok, _ := s.Get(ctx, "b", KeyAccessToken)
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "b", KeyRefreshToken)
	assert.False(t, ok)

	v, ok, _ := s.Get(ctx, "b", KeyCart)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestMemoryStoreDeleteUnknownBrowser(t *testing.T) {
	s := NewMemoryStore(0)

	if err := s.Delete(context.Background(), "never-seen", KeyCart); err != nil {
		t.Errorf("deleting from an unknown browser should not error, got %v", err)
	}
}

func TestBrowserTokens(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	tokens := BrowserTokens{Store: s, BrowserID: "browser-1"}

	require.NoError(t, tokens.Save(ctx, "acc", "ref"))

	access, err := tokens.Access(ctx)
	require.NoError(t, err)
	assert.Equal(t, "acc", access)

	refresh, err := tokens.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ref", refresh)

	require.NoError(t, tokens.ClearAccess(ctx))
	access, err = tokens.Access(ctx)
	require.NoError(t, err)
	assert.Empty(t, access, "access token should be gone after ClearAccess")

	refresh, _ = tokens.Refresh(ctx)
	assert.Equal(t, "ref", refresh, "refresh token must survive ClearAccess")

	require.NoError(t, tokens.Clear(ctx))
	refresh, _ = tokens.Refresh(ctx)
	assert.Empty(t, refresh)
}
