// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account.
//
// Users are never hard-deleted; the Active flag gates visibility in
// default queries. FollowersCount and FollowingCount are denormalized
// from follow edges and repaired by the reconcile pass.
type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	FullName       string     `gorm:"not null" json:"full_name"`
	Username       string     `gorm:"unique;not null" json:"username"`
	Email          string     `gorm:"unique;not null" json:"email"`
	Password       string     `gorm:"not null" json:"-"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	Country        string     `json:"country,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	Active         bool       `gorm:"default:true;index" json:"active"`
	FollowersCount int        `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int        `gorm:"not null;default:0" json:"following_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Posts []Post `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
