package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"codenest/internal/middleware"
	"codenest/internal/models"
	"codenest/internal/services"
	"codenest/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const suggestionCacheTTL = time.Minute

type FollowHandler struct {
	db       *gorm.DB
	notifier *services.Notifier
	cache    *utils.Cache
}

func NewFollowHandler(db *gorm.DB, notifier *services.Notifier, cache *utils.Cache) *FollowHandler {
	return &FollowHandler{db: db, notifier: notifier, cache: cache}
}

func suggestionKey(userID uint) string {
	return fmt.Sprintf("suggest:user:%d", userID)
}

// Toggle follows the target if no edge exists, unfollows otherwise.
func (h *FollowHandler) Toggle(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil || targetID <= 0 {
		fail(c, http.StatusBadRequest, "invalid user id")
		return
	}
	if uint(targetID) == user.ID {
		fail(c, http.StatusBadRequest, "cannot follow yourself")
		return
	}

	var target models.User
	if err := h.db.First(&target, targetID).Error; err != nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}

	following := false
	var existing models.Follow
	err = h.db.Where("follower_id = ? AND following_id = ?", user.ID, target.ID).
		First(&existing).Error
	switch {
	case err == nil:
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).Where("id = ?", target.ID).
				UpdateColumn("follower_count", gorm.Expr("follower_count - 1")).Error; err != nil {
				return err
			}
			return tx.Model(&models.User{}).Where("id = ?", user.ID).
				UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error
		})
		if err != nil {
			internalError(c, "unfollow", err)
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = h.db.Transaction(func(tx *gorm.DB) error {
			follow := models.Follow{FollowerID: user.ID, FollowingID: target.ID}
			if err := tx.Create(&follow).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).Where("id = ?", target.ID).
				UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error; err != nil {
				return err
			}
			return tx.Model(&models.User{}).Where("id = ?", user.ID).
				UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error
		})
		if err != nil {
			internalError(c, "follow", err)
			return
		}
		following = true

		h.notifier.CreateAsync(&models.Notification{
			UserID:  target.ID,
			ActorID: &user.ID,
			Type:    models.NotificationTypeFollow,
			Message: user.Username + " started following you",
		})
		h.notifier.EmitToUser(target.ID, "new-follower", gin.H{
			"id":       user.ID,
			"username": user.Username,
			"avatar":   user.Avatar,
		})
	default:
		internalError(c, "follow lookup", err)
		return
	}

	h.cache.Delete(suggestionKey(user.ID))

	c.JSON(http.StatusOK, gin.H{"is_following": following})
}

// Suggestions ranks users the caller does not follow and has no block
// relation with, by follower count then recency.
func (h *FollowHandler) Suggestions(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	if cached := h.cache.Get(suggestionKey(user.ID)); cached != nil {
		c.JSON(http.StatusOK, cached.(gin.H))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 || limit > maxPageSize {
		limit = 10
	}

	var users []models.User
	err := h.db.
		Where("id != ?", user.ID).
		Where("role != ?", models.RoleBlocked).
		Where("id NOT IN (?)", h.db.Model(&models.Follow{}).
			Select("following_id").Where("follower_id = ?", user.ID)).
		Where("id NOT IN (?)", h.db.Model(&models.BlockedUser{}).
			Select("blocked_id").Where("blocker_id = ?", user.ID)).
		Where("id NOT IN (?)", h.db.Model(&models.BlockedUser{}).
			Select("blocker_id").Where("blocked_id = ?", user.ID)).
		Order("follower_count DESC, created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		internalError(c, "follow suggestions", err)
		return
	}

	resp := gin.H{"items": users}
	h.cache.Set(suggestionKey(user.ID), resp, suggestionCacheTTL)
	c.JSON(http.StatusOK, resp)
}

// Followers lists who follows the given user.
func (h *FollowHandler) Followers(c *gin.Context) {
	h.listEdges(c, "following_id", "follower_id")
}

// Following lists who the given user follows.
func (h *FollowHandler) Following(c *gin.Context) {
	h.listEdges(c, "follower_id", "following_id")
}

func (h *FollowHandler) listEdges(c *gin.Context, whereCol, pluckCol string) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil || targetID <= 0 {
		fail(c, http.StatusBadRequest, "invalid user id")
		return
	}
	p := paginate(c)

	var total int64
	if err := h.db.Model(&models.Follow{}).
		Where(whereCol+" = ?", targetID).
		Count(&total).Error; err != nil {
		internalError(c, "follow edges count", err)
		return
	}

	var userIDs []uint
	if err := h.db.Model(&models.Follow{}).
		Where(whereCol+" = ?", targetID).
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Pluck(pluckCol, &userIDs).Error; err != nil {
		internalError(c, "follow edges", err)
		return
	}

	var users []models.User
	if len(userIDs) > 0 {
		if err := h.db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			internalError(c, "follow edge users", err)
			return
		}
	}

	c.JSON(http.StatusOK, pagedResponse(users, total, p))
}
