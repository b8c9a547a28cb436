package models

import (
	"time"
)

type Bookmark struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index;uniqueIndex:idx_bookmark_user_item" json:"user_id"`
	Kind      ContentKind `gorm:"size:10;not null;uniqueIndex:idx_bookmark_user_item" json:"kind"`
	ItemID    uint        `gorm:"not null;index;uniqueIndex:idx_bookmark_user_item" json:"item_id"`
	CreatedAt time.Time   `json:"created_at"`
}
