package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tidepool/internal/models"
	"tidepool/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUsers(t *testing.T, db *gorm.DB, n int) []*models.User {
	t.Helper()

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u := &models.User{
			FullName: fmt.Sprintf("User %d", i),
			Username: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
			Password: "hashed",
			Active:   true,
		}
		require.NoError(t, db.Create(u).Error)
		users = append(users, u)
	}
	return users
}

func TestFollowRepository_FollowIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 2)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	created, err := repo.Follow(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Follow(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	assert.False(t, created, "re-follow must not insert a second edge")

	var count int64
	require.NoError(t, db.Model(&models.Follow{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFollowRepository_UnfollowOnlyRemovesActiveEdges(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 2)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	_, err := repo.Follow(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)

	changed, err := repo.Block(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	assert.True(t, changed)

	// Blocked edges are not counted, so unfollow must not report one removed.
	removed, err := repo.Unfollow(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	assert.False(t, removed)

	edge, err := repo.Get(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	require.NotNil(t, edge)
	assert.Equal(t, models.FollowStatusBlocked, edge.Status)
}

func TestFollowRepository_ListFollowersPaginates(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 6)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	target := users[0]
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, u := range users[1:] {
		edge := &models.Follow{
			FollowerID:  u.ID,
			FollowingID: target.ID,
			Status:      models.FollowStatusActive,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(edge).Error)
	}

	first, err := repo.ListFollowers(ctx, target.ID, 3, nil)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.NotZero(t, first[0].Follower.ID, "follower must be preloaded")

	last := pagination.FromFollow(first[2])
	second, err := repo.ListFollowers(ctx, target.ID, 3, &last)
	require.NoError(t, err)
	require.Len(t, second, 2)

	seen := make(map[uint]bool)
	for _, f := range append(first, second...) {
		assert.False(t, seen[f.ID])
		seen[f.ID] = true
	}
}

func TestFollowRepository_ListFollowingExcludesBlocked(t *testing.T) {
	db := newTestDB(t)
	users := seedUsers(t, db, 3)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	_, err := repo.Follow(ctx, users[0].ID, users[1].ID)
	require.NoError(t, err)
	_, err = repo.Follow(ctx, users[0].ID, users[2].ID)
	require.NoError(t, err)

	_, err = repo.Block(ctx, users[0].ID, users[2].ID)
	require.NoError(t, err)

	following, err := repo.ListFollowing(ctx, users[0].ID, 10, nil)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, users[1].ID, following[0].FollowingID)
}
