package models

import (
	"time"
)

// Like is an edge from a user to exactly one content item. The composite
// unique index makes the second insert for the same pair impossible.
type Like struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"not null;index;uniqueIndex:idx_like_user_item" json:"user_id"`
	Kind      ContentKind `gorm:"size:10;not null;uniqueIndex:idx_like_user_item" json:"kind"`
	ItemID    uint        `gorm:"not null;index;uniqueIndex:idx_like_user_item" json:"item_id"`
	CreatedAt time.Time   `json:"created_at"`
}
