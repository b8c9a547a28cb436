package models

import (
	"time"
)

type Comment struct {
	ID        uint        `gorm:"primaryKey" json:"-"`
	Cid       string      `gorm:"uniqueIndex;size:8;not null" json:"id"`
	Kind      ContentKind `gorm:"size:10;not null;index:idx_comment_target" json:"kind"`
	ItemID    uint        `gorm:"not null;index:idx_comment_target" json:"-"`
	ItemPid   string      `gorm:"size:8;not null" json:"item_id"`
	UserID    uint        `gorm:"not null;index" json:"user_id"`
	User      User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID  *uint       `gorm:"index" json:"-"` // nil for top-level comments
	Parent    *Comment    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ParentCid string      `gorm:"size:8" json:"parent_id,omitempty"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// filled on list queries, not a column
	Replies []Comment `gorm:"-" json:"replies,omitempty"`
}
