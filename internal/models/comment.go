// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// DeletedContentMarker replaces the content of a soft-deleted comment
// that is kept to preserve thread structure. Wire-visible.
const DeletedContentMarker = "[deleted]"

// MaxCommentDepth is the deepest allowed reply level. 0 is a top-level
// comment, 1 is a reply; deeper nesting is rejected.
const MaxCommentDepth = 1

// Comment represents a comment on a post or a reply to a comment.
//
// DeletedAt is managed explicitly rather than through gorm.DeletedAt:
// soft-deleted comments must stay visible in thread listings (with
// redacted content) while they still have live children, so automatic
// query scoping would be wrong here.
type Comment struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	PostID       uint       `gorm:"not null;index" json:"post_id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"user"`
	ParentID     *uint      `gorm:"index" json:"parent_id,omitempty"`
	RootID       *uint      `gorm:"index" json:"root_id,omitempty"`
	Depth        int        `gorm:"not null;default:0" json:"depth"`
	Content      string     `gorm:"type:text;not null" json:"content"`
	LikesCount   int        `gorm:"not null;default:0" json:"likes_count"`
	RepliesCount int        `gorm:"not null;default:0" json:"replies_count"`
	DeletedAt    *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// BeforeCreate truncates CreatedAt to millisecond precision so the
// stored timestamp matches the cursor wire format exactly and the
// keyset filter never straddles sub-millisecond ties.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.CreatedAt = c.CreatedAt.Truncate(time.Millisecond)
	return nil
}

// IsDeleted reports whether the comment has been soft-deleted.
func (c *Comment) IsDeleted() bool {
	return c.DeletedAt != nil
}
