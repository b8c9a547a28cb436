package handlers

import (
	"net/http"

	"codenest/internal/middleware"
	"codenest/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// List returns the caller's notifications newest-first, with the unread
// count alongside the page envelope.
func (h *NotificationHandler) List(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	p := paginate(c)

	unreadOnly := c.Query("unread") == "true"
	filtered := func() *gorm.DB {
		q := h.db.Model(&models.Notification{}).Where("user_id = ?", user.ID)
		if unreadOnly {
			q = q.Where("is_read = ?", false)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		internalError(c, "notification count", err)
		return
	}

	var notifications []models.Notification
	if err := filtered().Preload("Actor").
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&notifications).Error; err != nil {
		internalError(c, "notification list", err)
		return
	}

	var unread int64
	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&unread).Error; err != nil {
		internalError(c, "unread count", err)
		return
	}

	resp := pagedResponse(notifications, total, p)
	resp["unreadCount"] = unread
	c.JSON(http.StatusOK, resp)
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	res := h.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		Update("is_read", true)
	if res.Error != nil {
		internalError(c, "notification read", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

// MarkAllRead marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	if err := h.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true).Error; err != nil {
		internalError(c, "notification read all", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked read"})
}

// Delete removes one of the caller's notifications.
func (h *NotificationHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	res := h.db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		Delete(&models.Notification{})
	if res.Error != nil {
		internalError(c, "notification delete", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "notification not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}
