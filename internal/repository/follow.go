package repository

import (
	"context"
	"errors"

	"tidepool/internal/models"
	"tidepool/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines interface for follow graph operations
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID uint) (bool, error)
	Block(ctx context.Context, followerID, followingID uint) (bool, error)
	Get(ctx context.Context, followerID, followingID uint) (*models.Follow, error)
	ListFollowers(ctx context.Context, userID uint, limit int, cur *pagination.Cursor) ([]*models.Follow, error)
	ListFollowing(ctx context.Context, userID uint, limit int, cur *pagination.Cursor) ([]*models.Follow, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow inserts an active edge. Returns true only when a new edge was
// created; re-following while the edge exists (any status) is a no-op.
func (r *followRepository) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoNothing: true,
		}).
		Create(&models.Follow{
			FollowerID:  followerID,
			FollowingID: followingID,
			Status:      models.FollowStatusActive,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Unfollow removes an active edge only: blocked edges survive so a
// blocked follower cannot reset the relationship by unfollowing.
// Returns true when an edge was removed.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ? AND status = ?",
			followerID, followingID, models.FollowStatusActive).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Block marks an existing active edge as blocked. Returns true when an
// active edge was transitioned.
func (r *followRepository) Block(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ? AND status = ?",
			followerID, followingID, models.FollowStatusActive).
		Update("status", models.FollowStatusBlocked)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Get(ctx context.Context, followerID, followingID uint) (*models.Follow, error) {
	var follow models.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &follow, nil
}

func (r *followRepository) ListFollowers(
	ctx context.Context,
	userID uint,
	limit int,
	cur *pagination.Cursor,
) ([]*models.Follow, error) {
	var follows []*models.Follow
	q := r.db.WithContext(ctx).
		Preload("Follower").
		Where("following_id = ? AND status = ?", userID, models.FollowStatusActive)
	err := applyCursor(q, cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&follows).Error
	return follows, err
}

func (r *followRepository) ListFollowing(
	ctx context.Context,
	userID uint,
	limit int,
	cur *pagination.Cursor,
) ([]*models.Follow, error) {
	var follows []*models.Follow
	q := r.db.WithContext(ctx).
		Preload("Following").
		Where("follower_id = ? AND status = ?", userID, models.FollowStatusActive)
	err := applyCursor(q, cur).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&follows).Error
	return follows, err
}
