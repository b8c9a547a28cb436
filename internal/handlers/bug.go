package handlers

import (
	"errors"
	"net/http"
	"time"

	"codenest/internal/middleware"
	"codenest/internal/models"
	"codenest/internal/services"
	"codenest/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// defaultBugTTL is how long a bug report lives when the reporter does not
// set an expiry.
const defaultBugTTL = 30 * 24 * time.Hour

type BugHandler struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewBugHandler(db *gorm.DB, notifier *services.Notifier) *BugHandler {
	return &BugHandler{db: db, notifier: notifier}
}

type bugView struct {
	models.Bug
	engagement
}

type createBugInput struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"required"`
	Severity    string     `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	Tags        string     `json:"tags" binding:"max=200"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type updateBugInput struct {
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description"`
	Severity    *string    `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	Status      *string    `json:"status" binding:"omitempty,oneof=open resolved closed"`
	Tags        *string    `json:"tags" binding:"omitempty,max=200"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

func (h *BugHandler) views(bugs []models.Bug, viewerID uint) []bugView {
	ids := make([]uint, len(bugs))
	for i, b := range bugs {
		ids[i] = b.ID
	}
	eng := loadEngagement(h.db, models.KindBug, ids, viewerID)
	out := make([]bugView, len(bugs))
	for i, b := range bugs {
		out[i] = bugView{Bug: b, engagement: *eng[b.ID]}
	}
	return out
}

// List serves only live bugs; expired rows are gone even before the sweep
// deletes them.
func (h *BugHandler) List(c *gin.Context) {
	p := paginate(c)
	viewerID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}

	now := time.Now()
	var total int64
	if err := h.db.Model(&models.Bug{}).
		Where("expires_at > ?", now).
		Count(&total).Error; err != nil {
		internalError(c, "bug list count", err)
		return
	}

	var bugs []models.Bug
	if err := h.db.Preload("User").
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&bugs).Error; err != nil {
		internalError(c, "bug list", err)
		return
	}

	c.JSON(http.StatusOK, pagedResponse(h.views(bugs, viewerID), total, p))
}

func (h *BugHandler) Get(c *gin.Context) {
	viewerID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}

	var bug models.Bug
	if err := h.db.Preload("User").Where("bid = ?", c.Param("bid")).First(&bug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "bug not found")
			return
		}
		internalError(c, "bug get", err)
		return
	}
	if bug.Expired(time.Now()) {
		fail(c, http.StatusGone, "bug has expired")
		return
	}

	c.JSON(http.StatusOK, h.views([]models.Bug{bug}, viewerID)[0])
}

func (h *BugHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var input createBugInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	severity := models.BugSeverity(input.Severity)
	if severity == "" {
		severity = models.SeverityMedium
	}
	expiresAt := time.Now().Add(defaultBugTTL)
	if input.ExpiresAt != nil {
		if input.ExpiresAt.Before(time.Now()) {
			fail(c, http.StatusBadRequest, "expiry must be in the future")
			return
		}
		expiresAt = *input.ExpiresAt
	}

	bug := models.Bug{
		Bid:         utils.RandStringBytesMaskImpr(8),
		UserID:      user.ID,
		Title:       utils.SanitizeText(input.Title),
		Description: utils.SanitizeText(input.Description),
		Severity:    severity,
		Status:      models.BugOpen,
		Tags:        utils.SanitizeText(input.Tags),
		ExpiresAt:   expiresAt,
	}
	if err := h.db.Create(&bug).Error; err != nil {
		internalError(c, "bug create", err)
		return
	}
	bug.User = *user

	h.notifier.EmitToFollowers(user.ID, "new-bug", bug)

	c.JSON(http.StatusCreated, bug)
}

func (h *BugHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var bug models.Bug
	if err := h.db.Where("bid = ?", c.Param("bid")).First(&bug).Error; err != nil {
		fail(c, http.StatusNotFound, "bug not found")
		return
	}
	if bug.Expired(time.Now()) {
		fail(c, http.StatusGone, "bug has expired")
		return
	}
	if bug.UserID != user.ID {
		fail(c, http.StatusForbidden, "not the owner")
		return
	}

	var input updateBugInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	if input.Title != nil {
		bug.Title = utils.SanitizeText(*input.Title)
	}
	if input.Description != nil {
		bug.Description = utils.SanitizeText(*input.Description)
	}
	if input.Severity != nil {
		bug.Severity = models.BugSeverity(*input.Severity)
	}
	if input.Status != nil {
		bug.Status = models.BugStatus(*input.Status)
	}
	if input.Tags != nil {
		bug.Tags = utils.SanitizeText(*input.Tags)
	}
	if input.ExpiresAt != nil {
		bug.ExpiresAt = *input.ExpiresAt
	}

	if err := h.db.Save(&bug).Error; err != nil {
		internalError(c, "bug update", err)
		return
	}

	c.JSON(http.StatusOK, bug)
}

func (h *BugHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var bug models.Bug
	if err := h.db.Where("bid = ?", c.Param("bid")).First(&bug).Error; err != nil {
		fail(c, http.StatusNotFound, "bug not found")
		return
	}
	if bug.UserID != user.ID && user.Role != models.RoleAdmin {
		fail(c, http.StatusForbidden, "not the owner")
		return
	}

	ref := models.ContentRef{Kind: models.KindBug, ID: bug.Bid}
	if err := deleteContentTx(h.db, ref, bug.ID); err != nil {
		internalError(c, "bug delete", err)
		return
	}

	if bug.UserID != user.ID {
		h.notifier.CreateAsync(&models.Notification{
			UserID:  bug.UserID,
			Type:    models.NotificationTypeSystem,
			Kind:    models.KindBug,
			ItemPid: bug.Bid,
			Message: "Your bug report \"" + bug.Title + "\" was removed by a moderator.",
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "bug deleted"})
}
