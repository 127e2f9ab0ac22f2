package seed

import (
	"fmt"
	"testing"

	"tidepool/internal/database"
	"tidepool/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestSeed_ProducesConsistentCounters(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Seed(db, Options{
		Users:           8,
		PostsPerUser:    2,
		CommentsPerPost: 2,
		Factory:         SeedOptions{SkipBcrypt: true},
	}))

	var userCount, postCount, commentCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Comment{}).Count(&commentCount).Error)
	assert.EqualValues(t, 8, userCount)
	assert.EqualValues(t, 16, postCount)
	assert.EqualValues(t, 32, commentCount)

	// Counters match their edges because Seed reconciles at the end.
	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		var likes, comments int64
		require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&likes).Error)
		require.NoError(t, db.Model(&models.Comment{}).Where("post_id = ?", p.ID).Count(&comments).Error)
		assert.EqualValues(t, likes, p.LikesCount, "post %d likes", p.ID)
		assert.EqualValues(t, comments, p.CommentsCount, "post %d comments", p.ID)
	}

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	for _, u := range users {
		var followers int64
		require.NoError(t, db.Model(&models.Follow{}).
			Where("following_id = ? AND status = ?", u.ID, models.FollowStatusActive).
			Count(&followers).Error)
		assert.EqualValues(t, followers, u.FollowersCount, "user %d followers", u.ID)
	}
}

func TestSeed_DryRunWritesNothing(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, Seed(db, Options{
		Users:           3,
		PostsPerUser:    1,
		CommentsPerPost: 1,
		Factory:         SeedOptions{DryRun: true, SkipBcrypt: true},
	}))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Zero(t, userCount)
}

func TestSeed_ClearRemovesPreviousData(t *testing.T) {
	db := newTestDB(t)

	opts := Options{
		Users:           3,
		PostsPerUser:    1,
		CommentsPerPost: 1,
		Factory:         SeedOptions{SkipBcrypt: true},
	}
	require.NoError(t, Seed(db, opts))

	opts.Clear = true
	require.NoError(t, Seed(db, opts))

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 3, userCount)
}

func TestFactory_CreateUserOverrides(t *testing.T) {
	db := newTestDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	user, err := f.CreateUser(func(u *models.User) {
		u.Username = "fixedname"
		u.Country = "Iceland"
	})
	require.NoError(t, err)
	assert.Equal(t, "fixedname", user.Username)
	assert.Equal(t, "Iceland", user.Country)
	assert.True(t, user.Active)
}
