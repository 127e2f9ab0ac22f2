package seed

import (
	"context"
	"fmt"
	"log"

	"tidepool/internal/models"
	"tidepool/internal/repository"

	"gorm.io/gorm"
)

// Options control how much data Seed generates.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	// Clear wipes existing social data before seeding.
	Clear   bool
	Factory SeedOptions
}

// DefaultOptions returns a small but lively data set.
func DefaultOptions() Options {
	return Options{
		Users:           25,
		PostsPerUser:    4,
		CommentsPerPost: 3,
	}
}

// Seed populates the database with a demo social mesh: users, posts
// with media and tags, threaded comments, likes, and follow edges.
// Counters are reconciled from the edges at the end, so the seeded
// data is consistent by construction.
func Seed(db *gorm.DB, opts Options) error {
	if opts.Users <= 0 {
		opts = DefaultOptions()
	}

	if opts.Clear {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}

	f := NewFactory(db, opts.Factory)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))

	var posts []*models.Post
	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			posts = append(posts, f.BuildPost(user))
		}
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("seeded %d posts", len(posts))

	commentCount := 0
	for _, post := range posts {
		var parent *models.Comment
		for i := 0; i < opts.CommentsPerPost; i++ {
			author := users[f.rng.Intn(len(users))]
			// later comments sometimes reply to the thread opener
			target := parent
			if i == 0 || f.rng.Intn(2) == 0 {
				target = nil
			}
			comment, err := f.CreateComment(author, post, target)
			if err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			if comment.ParentID == nil {
				parent = comment
			}
			commentCount++
		}
	}
	log.Printf("seeded %d comments", commentCount)

	for _, post := range posts {
		for i := 0; i < f.rng.Intn(len(users)/2+1); i++ {
			if err := f.LikePost(users[f.rng.Intn(len(users))], post); err != nil {
				return fmt.Errorf("like post: %w", err)
			}
		}
	}

	for _, follower := range users {
		for i := 0; i < f.rng.Intn(len(users)/3+1); i++ {
			if err := f.Follow(follower, users[f.rng.Intn(len(users))]); err != nil {
				return fmt.Errorf("follow: %w", err)
			}
		}
	}

	if opts.Factory.DryRun {
		return nil
	}

	report, err := repository.NewCounterReconciler(db).Run(context.Background())
	if err != nil {
		return fmt.Errorf("reconcile counters: %w", err)
	}
	log.Printf("seed complete, counters set on %d rows", report.Total())
	return nil
}

// clearData deletes all social data in dependency order.
func clearData(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.CommentLike{},
		&models.Like{},
		&models.Comment{},
		&models.PostMedia{},
		&models.Post{},
		&models.Follow{},
		&models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
