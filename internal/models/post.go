// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// MediaType identifies the kind of media attached to a post.
type MediaType string

const (
	// MediaTypeImage is an image attachment.
	MediaTypeImage MediaType = "image"
	// MediaTypeVideo is a video attachment.
	MediaTypeVideo MediaType = "video"
)

// PostMedia is one attachment on a post. Media bytes live in external
// storage; only metadata and the URL are recorded here.
type PostMedia struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PostID          uint      `gorm:"not null;index" json:"post_id"`
	Position        int       `gorm:"not null;default:0" json:"position"`
	Type            MediaType `gorm:"type:varchar(10);not null" json:"type"`
	URL             string    `gorm:"not null" json:"url"`
	Filename        string    `json:"filename,omitempty"`
	Size            int64     `json:"size"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
}

// Post represents a user post with optional media attachments.
//
// LikesCount, CommentsCount and LastCommentedAt are denormalized and
// maintained by atomic single-row increments; the reconcile pass
// recomputes them from edge rows when they drift.
type Post struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	UserID          uint        `gorm:"not null;index" json:"user_id"`
	User            User        `gorm:"foreignKey:UserID" json:"user"`
	Content         string      `gorm:"type:text" json:"content"`
	Media           []PostMedia `gorm:"foreignKey:PostID" json:"media,omitempty"`
	Visible         bool        `gorm:"default:true;index" json:"visible"`
	Tags            []string    `gorm:"serializer:json" json:"tags,omitempty"`
	Latitude        *float64    `json:"latitude,omitempty"`
	Longitude       *float64    `json:"longitude,omitempty"`
	LikesCount      int         `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount   int         `gorm:"not null;default:0" json:"comments_count"`
	LastCommentedAt *time.Time  `json:"last_commented_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
