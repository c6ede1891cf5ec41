package datasource

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetOrFetch(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	calls := 0
	fetch := func(context.Context) ([]byte, error) {
		calls++
		return []byte("body"), nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrFetch(context.Background(), MakeKey("text", "https://x/a.html"), fetch)
		require.NoError(t, err)
		assert.Equal(t, "body", string(got))
	}
	assert.Equal(t, 1, calls)
}

func TestCache_FetchErrorNotCached(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	_, err = c.GetOrFetch(context.Background(), "k", func(context.Context) ([]byte, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Minute)
	require.NoError(t, err)
	require.NoError(t, c.Set("k", []byte("v")))

	old := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(c.filePath("k"), old, old))

	_, ok := c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("k2", []byte("v")))
	require.NoError(t, os.Chtimes(c.filePath("k2"), old, old))
	removed, err := c.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
