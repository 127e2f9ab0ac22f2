package service

import (
	"context"
	"testing"

	"tidepool/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) userCounters(t *testing.T, userID uint) (followers, following int) {
	t.Helper()

	var user models.User
	require.NoError(t, e.db.First(&user, userID).Error)
	return user.FollowersCount, user.FollowingCount
}

func TestFollow_UpdatesBothCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	state, err := env.follows.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, state.Following)

	followers, _ := env.userCounters(t, bob.ID)
	_, following := env.userCounters(t, alice.ID)
	assert.Equal(t, 1, followers)
	assert.Equal(t, 1, following)

	// Re-follow is a no-op and must not double count.
	_, err = env.follows.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	followers, _ = env.userCounters(t, bob.ID)
	assert.Equal(t, 1, followers)
}

func TestUnfollow_DecrementsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	_, err := env.follows.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	state, err := env.follows.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, state.Following)

	followers, _ := env.userCounters(t, bob.ID)
	_, following := env.userCounters(t, alice.ID)
	assert.Zero(t, followers)
	assert.Zero(t, following)

	// Unfollowing again stays at zero.
	_, err = env.follows.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	followers, _ = env.userCounters(t, bob.ID)
	assert.Zero(t, followers)
}

func TestFollow_SelfAndMissingTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")

	_, err := env.follows.Follow(ctx, alice.ID, alice.ID)
	assertAppCode(t, err, "VALIDATION_ERROR")

	_, err = env.follows.Follow(ctx, alice.ID, 9999)
	assertAppCode(t, err, "NOT_FOUND")
}

func TestBlockFollower_RemovesFromCountersAndPreventsRefollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	stalker := env.createUser(t, "stalker")

	_, err := env.follows.Follow(ctx, stalker.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, env.follows.BlockFollower(ctx, alice.ID, stalker.ID))

	followers, _ := env.userCounters(t, alice.ID)
	_, following := env.userCounters(t, stalker.ID)
	assert.Zero(t, followers)
	assert.Zero(t, following)

	// The blocked edge is a tombstone: following again is rejected.
	_, err = env.follows.Follow(ctx, stalker.ID, alice.ID)
	assertAppCode(t, err, "CONFLICT")

	// Blocking twice is a no-op.
	require.NoError(t, env.follows.BlockFollower(ctx, alice.ID, stalker.ID))
	followers, _ = env.userCounters(t, alice.ID)
	assert.Zero(t, followers)
}

func TestBlockFollower_WithoutExistingEdge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	lurker := env.createUser(t, "lurker")

	require.NoError(t, env.follows.BlockFollower(ctx, alice.ID, lurker.ID))

	followers, _ := env.userCounters(t, alice.ID)
	assert.Zero(t, followers)

	_, err := env.follows.Follow(ctx, lurker.ID, alice.ID)
	assertAppCode(t, err, "CONFLICT")
}

func TestListFollowers_Paginates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	target := env.createUser(t, "target")

	names := []string{"f1", "f2", "f3", "f4", "f5"}
	for _, n := range names {
		u := env.createUser(t, n)
		_, err := env.follows.Follow(ctx, u.ID, target.ID)
		require.NoError(t, err)
	}

	first, err := env.follows.ListFollowers(ctx, ListFollowsInput{UserID: target.ID, Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Users, 3)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second, err := env.follows.ListFollowers(ctx, ListFollowsInput{
		UserID: target.ID, Limit: 3, Cursor: first.NextCursor,
	})
	require.NoError(t, err)
	require.Len(t, second.Users, 2)
	assert.False(t, second.HasMore)

	seen := map[uint]bool{}
	for _, u := range append(first.Users, second.Users...) {
		assert.False(t, seen[u.ID])
		seen[u.ID] = true
		assert.NotEmpty(t, u.Username)
	}
	assert.Len(t, seen, 5)

	followers, _ := env.userCounters(t, target.ID)
	assert.Equal(t, 5, followers)
}

func TestListFollowing_ReturnsFollowedUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	_, err := env.follows.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.follows.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	page, err := env.follows.ListFollowing(ctx, ListFollowsInput{UserID: alice.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Users, 2)

	usernames := []string{page.Users[0].Username, page.Users[1].Username}
	assert.ElementsMatch(t, []string{"bob", "carol"}, usernames)
}
