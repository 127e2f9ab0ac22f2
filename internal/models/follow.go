package models

import (
	"time"

	"gorm.io/gorm"
)

// FollowStatus represents the state of a follow edge.
type FollowStatus string

const (
	// FollowStatusActive is a normal, counted follow.
	FollowStatusActive FollowStatus = "active"
	// FollowStatusBlocked marks an edge whose target blocked the follower.
	FollowStatusBlocked FollowStatus = "blocked"
	// FollowStatusPending is reserved for follow-approval flows.
	FollowStatusPending FollowStatus = "pending"
)

// Follow is a directed edge: FollowerID follows FollowingID.
// The edge collection is the source of truth; FollowersCount and
// FollowingCount on User are denormalized from active edges.
type Follow struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	FollowerID  uint         `gorm:"not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID uint         `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	Status      FollowStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	Follower  User `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	Following User `gorm:"foreignKey:FollowingID" json:"following,omitempty"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// BeforeCreate truncates CreatedAt to millisecond precision so cursor
// tokens round-trip exactly through the keyset filter.
func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	f.CreatedAt = f.CreatedAt.Truncate(time.Millisecond)
	return nil
}
