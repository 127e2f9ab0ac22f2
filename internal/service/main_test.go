package service

import (
	"fmt"
	"testing"

	"tidepool/internal/database"
	"tidepool/internal/models"
	"tidepool/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv bundles the repositories and services under test against one
// migrated in-memory sqlite database.
type testEnv struct {
	db       *gorm.DB
	comments *CommentService
	posts    *PostService
	users    *UserService
	follows  *FollowService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	commentRepo := repository.NewCommentRepository(db)
	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)

	return &testEnv{
		db:       db,
		comments: NewCommentService(commentRepo, postRepo),
		posts:    NewPostService(postRepo),
		users:    NewUserService(userRepo),
		follows:  NewFollowService(followRepo, userRepo),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	user := &models.User{
		FullName: "Test " + username,
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
		Active:   true,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) createPost(t *testing.T, userID uint, content string) *models.Post {
	t.Helper()

	post := &models.Post{UserID: userID, Content: content, Visible: true}
	require.NoError(t, e.db.Create(post).Error)
	return post
}

func (e *testEnv) postCounters(t *testing.T, postID uint) (likes, comments int) {
	t.Helper()

	var post models.Post
	require.NoError(t, e.db.First(&post, postID).Error)
	return post.LikesCount, post.CommentsCount
}

// assertAppCode verifies the error carries the given application code.
func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}
