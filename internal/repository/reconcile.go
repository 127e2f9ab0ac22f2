package repository

import (
	"context"
	"log/slog"

	"tidepool/internal/middleware"
	"tidepool/internal/observability"

	"gorm.io/gorm"
)

// ReconcileReport lists, per denormalized counter, how many rows held a
// value that disagreed with the underlying collection and were rewritten.
type ReconcileReport struct {
	PostLikes      int64 `json:"post_likes"`
	PostComments   int64 `json:"post_comments"`
	CommentLikes   int64 `json:"comment_likes"`
	CommentReplies int64 `json:"comment_replies"`
	UserFollowers  int64 `json:"user_followers"`
	UserFollowing  int64 `json:"user_following"`
}

// Total returns the number of repaired rows across all counters.
func (r ReconcileReport) Total() int64 {
	return r.PostLikes + r.PostComments + r.CommentLikes +
		r.CommentReplies + r.UserFollowers + r.UserFollowing
}

// CounterReconciler recomputes every denormalized counter from its
// source collection. Counters drift when a process dies between an edge
// mutation and its counter delta; running this restores exact values.
type CounterReconciler struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewCounterReconciler creates a CounterReconciler.
func NewCounterReconciler(db *gorm.DB) *CounterReconciler {
	return &CounterReconciler{
		db:      db,
		metrics: observability.NewDatabaseMetrics(db),
	}
}

// repair rewrites one counter column from a subquery, touching only rows
// whose stored value disagrees, and returns how many rows changed.
func (c *CounterReconciler) repair(ctx context.Context, name, query string) (int64, error) {
	defer c.metrics.TrackQuery("reconcile", name)()

	res := c.db.WithContext(ctx).Exec(query)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		observability.CounterDriftRepaired.WithLabelValues(name).Add(float64(res.RowsAffected))
		middleware.Logger.WarnContext(ctx, "counter drift repaired",
			slog.String("counter", name),
			slog.Int64("rows", res.RowsAffected),
		)
	}
	return res.RowsAffected, nil
}

// Run reconciles all counters and returns the drift report. Statements
// are plain correlated subqueries so they run on both Postgres and the
// sqlite used in tests.
func (c *CounterReconciler) Run(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	var err error

	if report.PostLikes, err = c.repair(ctx, "post_likes", `
		UPDATE posts SET likes_count =
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)
		WHERE likes_count <>
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)`); err != nil {
		return report, err
	}

	// Soft-deleted tombstones keep their slot in the thread and stay
	// counted; only hard deletion decrements, so rows are counted
	// without a deleted_at filter.
	if report.PostComments, err = c.repair(ctx, "post_comments", `
		UPDATE posts SET comments_count =
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id)
		WHERE comments_count <>
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id)`); err != nil {
		return report, err
	}

	if report.CommentLikes, err = c.repair(ctx, "comment_likes", `
		UPDATE comments SET likes_count =
			(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id)
		WHERE likes_count <>
			(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id)`); err != nil {
		return report, err
	}

	if report.CommentReplies, err = c.repair(ctx, "comment_replies", `
		UPDATE comments SET replies_count =
			(SELECT COUNT(*) FROM comments AS replies
			 WHERE replies.parent_id = comments.id)
		WHERE replies_count <>
			(SELECT COUNT(*) FROM comments AS replies
			 WHERE replies.parent_id = comments.id)`); err != nil {
		return report, err
	}

	if report.UserFollowers, err = c.repair(ctx, "user_followers", `
		UPDATE users SET followers_count =
			(SELECT COUNT(*) FROM follows
			 WHERE follows.following_id = users.id AND follows.status = 'active')
		WHERE followers_count <>
			(SELECT COUNT(*) FROM follows
			 WHERE follows.following_id = users.id AND follows.status = 'active')`); err != nil {
		return report, err
	}

	if report.UserFollowing, err = c.repair(ctx, "user_following", `
		UPDATE users SET following_count =
			(SELECT COUNT(*) FROM follows
			 WHERE follows.follower_id = users.id AND follows.status = 'active')
		WHERE following_count <>
			(SELECT COUNT(*) FROM follows
			 WHERE follows.follower_id = users.id AND follows.status = 'active')`); err != nil {
		return report, err
	}

	middleware.Logger.InfoContext(ctx, "counter reconcile completed",
		slog.Int64("repaired_rows", report.Total()),
	)
	return report, nil
}
