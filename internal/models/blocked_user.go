package models

import (
	"time"
)

// BlockedUser is a directed edge: blocker -> blocked.
type BlockedUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlockerID uint      `gorm:"not null;index;uniqueIndex:idx_block_pair" json:"blocker_id"`
	Blocker   User      `gorm:"foreignKey:BlockerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	BlockedID uint      `gorm:"not null;index;uniqueIndex:idx_block_pair" json:"blocked_id"`
	Blocked   User      `gorm:"foreignKey:BlockedID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"blocked"`
	CreatedAt time.Time `json:"created_at"`
}
