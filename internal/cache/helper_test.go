package cache

import (
	"context"
	"errors"
	"testing"

	"tidepool/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
}

func TestAside_MissThenHit(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *models.Post) func() error {
		return func() error {
			fetches++
			dest.ID = 9
			dest.Content = "from db"
			return nil
		}
	}

	var first models.Post
	require.NoError(t, Aside(ctx, PostKey(9), &first, PostTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "from db", first.Content)

	var second models.Post
	require.NoError(t, Aside(ctx, PostKey(9), &second, PostTTL, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should be served from cache")
	assert.Equal(t, "from db", second.Content)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	var dest models.Post
	fetchErr := errors.New("db down")
	err := Aside(ctx, PostKey(1), &dest, PostTTL, func() error { return fetchErr })
	assert.ErrorIs(t, err, fetchErr)

	found, err := GetJSON(ctx, PostKey(1), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidatePost(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(3), &models.Post{ID: 3}, PostTTL))
	InvalidatePost(ctx, 3)

	var dest models.Post
	found, err := GetJSON(ctx, PostKey(3), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHelpers_NilClientNoop(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var dest models.Post
	found, err := GetJSON(ctx, PostKey(1), &dest)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(ctx, PostKey(1), &dest, PostTTL))
}
