package models

import (
	"time"
)

const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleBlocked = "blocked" // banned account, read-only
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"not null" json:"username"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"` // Hash
	Avatar         string    `json:"avatar"`
	Bio            string    `gorm:"size:200" json:"bio"`
	Role           string    `gorm:"size:20;default:'user';not null" json:"role"`
	GoogleID       string    `gorm:"index" json:"-"` // Google OAuth account id
	GoogleEmail    string    `gorm:"index" json:"-"`
	FollowerCount  int       `gorm:"default:0" json:"follower_count"`
	FollowingCount int       `gorm:"default:0" json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	// No DeletedAt for hard delete
}

// UserPreference is the one-to-one settings record created with the user.
type UserPreference struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	EmailOnNew bool      `gorm:"default:true" json:"email_on_new"`
	PushOnNew  bool      `gorm:"default:true" json:"push_on_new"`
	Theme      string    `gorm:"size:20;default:'light'" json:"theme"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
