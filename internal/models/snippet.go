package models

import (
	"time"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

type Snippet struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Sid         string    `gorm:"uniqueIndex;size:8;not null" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Code        string    `gorm:"type:text;not null" json:"code"`
	Language    string    `gorm:"size:40" json:"language"`
	Tags        string    `gorm:"size:200" json:"tags"` // comma separated
	Visibility  string    `gorm:"size:10;default:'public';not null;index" json:"visibility"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Snippet) Public() bool { return s.Visibility == VisibilityPublic }
