package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestGetSetJSON(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	key := UserKey(7)
	require.NoError(t, SetJSON(ctx, key, cachedUser{ID: 7, Username: "alice"}, UserTTL))

	var got cachedUser
	found, err := GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "alice", got.Username)

	// TTL was applied.
	assert.Greater(t, mr.TTL(key), time.Duration(0))

	t.Run("miss returns false without error", func(t *testing.T) {
		var dest cachedUser
		found, err := GetJSON(ctx, PostKey(999), &dest)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestAside(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			fetches++
			*dest = cachedUser{ID: 3, Username: "bob"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(3), &first, UserTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "bob", first.Username)

	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(3), &second, UserTTL, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read must come from cache")
	assert.Equal(t, "bob", second.Username)

	t.Run("fetch error propagates", func(t *testing.T) {
		wantErr := errors.New("db down")
		var dest cachedUser
		err := Aside(ctx, UserKey(4), &dest, UserTTL, func() error { return wantErr })
		assert.ErrorIs(t, err, wantErr)
	})
}

func TestInvalidate(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(5), cachedUser{ID: 5}, PostTTL))
	InvalidatePost(ctx, 5)
	assert.False(t, mr.Exists(PostKey(5)))
}

func TestNilClientIsSafe(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var dest cachedUser
	found, err := GetJSON(ctx, UserKey(1), &dest)
	assert.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, SetJSON(ctx, UserKey(1), dest, UserTTL))
	InvalidateUser(ctx, 1)

	// Aside degrades to a plain fetch.
	fetched := false
	err = Aside(ctx, UserKey(1), &dest, UserTTL, func() error {
		fetched = true
		dest.Username = "carol"
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, fetched)
	assert.Equal(t, "carol", dest.Username)
}
