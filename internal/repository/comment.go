// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"tidepool/internal/models"
	"tidepool/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint, limit int, cur *pagination.Cursor) ([]*models.Comment, error)
	ListReplies(ctx context.Context, parentID uint, limit int, cur *pagination.Cursor) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, id uint, content string) error
	SoftDelete(ctx context.Context, id uint, at time.Time) error
	HardDelete(ctx context.Context, id uint) error
	CountLiveChildren(ctx context.Context, parentID uint) (int64, error)
	AddRepliesCount(ctx context.Context, id uint, delta int) error
	AddLikesCount(ctx context.Context, id uint, delta int) error
	Like(ctx context.Context, userID, commentID uint) (bool, error)
	Unlike(ctx context.Context, userID, commentID uint) (bool, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// applyCursor appends the keyset filter for pages after the first.
// Ordering is (created_at DESC, id DESC); CreatedAt is stored truncated
// to milliseconds, so the equality branch is exact.
func applyCursor(db *gorm.DB, cur *pagination.Cursor) *gorm.DB {
	if cur == nil {
		return db
	}
	at := cur.CreatedAt()
	return db.Where("created_at < ? OR (created_at = ? AND id < ?)", at, at, cur.ID)
}

func (r *commentRepository) ListTopLevel(
	ctx context.Context,
	postID uint,
	limit int,
	cur *pagination.Cursor,
) ([]*models.Comment, error) {
	var comments []*models.Comment
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ? AND parent_id IS NULL AND deleted_at IS NULL", postID)
	err := applyCursor(q, cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListReplies(
	ctx context.Context,
	parentID uint,
	limit int,
	cur *pagination.Cursor,
) ([]*models.Comment, error) {
	var comments []*models.Comment
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("parent_id = ?", parentID)
	err := applyCursor(q, cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("content", content).Error
}

// SoftDelete redacts the comment but keeps the row so replies below it
// stay attached to the thread.
func (r *commentRepository) SoftDelete(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    models.DeletedContentMarker,
			"deleted_at": at,
		}).Error
}

func (r *commentRepository) HardDelete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Where("comment_id = ?", id).
		Delete(&models.CommentLike{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

func (r *commentRepository) CountLiveChildren(ctx context.Context, parentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("parent_id = ? AND deleted_at IS NULL", parentID).
		Count(&count).Error
	return count, err
}

func (r *commentRepository) AddRepliesCount(ctx context.Context, id uint, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("replies_count", gorm.Expr("replies_count + ?", delta)).Error
}

func (r *commentRepository) AddLikesCount(ctx context.Context, id uint, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta)).Error
}

// Like inserts the (user, comment) edge. Returns true only when a new
// row was written; a duplicate like is a no-op so callers apply the
// counter delta at most once.
func (r *commentRepository) Like(ctx context.Context, userID, commentID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "comment_id"}},
			DoNothing: true,
		}).
		Create(&models.CommentLike{UserID: userID, CommentID: commentID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *commentRepository) Unlike(ctx context.Context, userID, commentID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&models.CommentLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
