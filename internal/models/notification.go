package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeFollow  NotificationType = "follow"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeReply   NotificationType = "reply"
	NotificationTypeSystem  NotificationType = "system"
)

type Notification struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;index" json:"user_id"` // recipient
	User       User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ActorID    *uint            `gorm:"index" json:"actor_id"` // sender, nil for system
	Actor      User             `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor"`
	Type       NotificationType `gorm:"size:20;not null" json:"type"`
	Kind       ContentKind      `gorm:"size:10" json:"kind,omitempty"` // triggering content, if any
	ItemID     uint             `json:"-"`
	ItemPid    string           `gorm:"size:8" json:"item_id,omitempty"`
	CommentCid string           `gorm:"size:8" json:"comment_id,omitempty"`
	Message    string           `gorm:"type:text" json:"message"`
	IsRead     bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt  time.Time        `json:"created_at"`
}
