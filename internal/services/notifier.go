package services

import (
	"log"

	"codenest/internal/models"
	"codenest/internal/ws"

	"gorm.io/gorm"
)

// Notifier is the only component that writes Notification rows. Delivery to
// the live channel is best effort: a recipient without an open connection
// simply misses the push and reads the row later.
type Notifier struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewNotifier(db *gorm.DB, hub *ws.Hub) *Notifier {
	return &Notifier{db: db, hub: hub}
}

// Create persists the notification and pushes it to the recipient's room.
func (n *Notifier) Create(notification *models.Notification) error {
	if err := n.db.Create(notification).Error; err != nil {
		return err
	}
	n.hub.EmitToRoom(ws.UserRoom(notification.UserID), "notification", notification)
	return nil
}

// CreateAsync dispatches Create after the caller's primary write has
// committed. Failures are logged, never propagated.
func (n *Notifier) CreateAsync(notification *models.Notification) {
	go func() {
		if err := n.Create(notification); err != nil {
			log.Printf("[notify] create type=%s recipient=%d: %v", notification.Type, notification.UserID, err)
		}
	}()
}

// EmitToFollowers pushes an event into every follower's private room and the
// author's own room, so the author's feed updates too. Fire and forget.
func (n *Notifier) EmitToFollowers(authorID uint, event string, payload interface{}) {
	go func() {
		var followerIDs []uint
		if err := n.db.Model(&models.Follow{}).
			Where("following_id = ?", authorID).
			Pluck("follower_id", &followerIDs).Error; err != nil {
			log.Printf("[notify] followers of %d: %v", authorID, err)
			return
		}
		for _, id := range followerIDs {
			n.hub.EmitToRoom(ws.UserRoom(id), event, payload)
		}
		n.hub.EmitToRoom(ws.UserRoom(authorID), event, payload)
	}()
}

// EmitToUser pushes an event into one user's private room.
func (n *Notifier) EmitToUser(userID uint, event string, payload interface{}) {
	n.hub.EmitToRoom(ws.UserRoom(userID), event, payload)
}

// EmitToContent broadcasts to everyone watching one content item.
func (n *Notifier) EmitToContent(contentID, event string, payload interface{}) {
	n.hub.EmitToRoom(ws.ContentRoom(contentID), event, payload)
}
