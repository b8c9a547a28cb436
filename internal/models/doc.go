package models

import (
	"time"
)

type Doc struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	Did        string    `gorm:"uniqueIndex;size:8;not null" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"` // markdown source
	Tags       string    `gorm:"size:200" json:"tags"`
	Visibility string    `gorm:"size:10;default:'public';not null;index" json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (d *Doc) Public() bool { return d.Visibility == VisibilityPublic }
