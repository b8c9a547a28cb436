package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"codenest/internal/middleware"
	"codenest/internal/models"
	"codenest/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ModerationHandler struct {
	db    *gorm.DB
	cache *utils.Cache
}

func NewModerationHandler(db *gorm.DB, cache *utils.Cache) *ModerationHandler {
	return &ModerationHandler{db: db, cache: cache}
}

// ToggleBlock blocks the target if no edge exists, unblocks otherwise.
func (h *ModerationHandler) ToggleBlock(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil || targetID <= 0 {
		fail(c, http.StatusBadRequest, "invalid user id")
		return
	}
	if uint(targetID) == user.ID {
		fail(c, http.StatusBadRequest, "cannot block yourself")
		return
	}

	var target models.User
	if err := h.db.First(&target, targetID).Error; err != nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}

	blocked := false
	var existing models.BlockedUser
	err = h.db.Where("blocker_id = ? AND blocked_id = ?", user.ID, target.ID).
		First(&existing).Error
	switch {
	case err == nil:
		if err := h.db.Delete(&existing).Error; err != nil {
			internalError(c, "unblock", err)
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		edge := models.BlockedUser{BlockerID: user.ID, BlockedID: target.ID}
		if err := h.db.Create(&edge).Error; err != nil {
			internalError(c, "block", err)
			return
		}
		blocked = true
	default:
		internalError(c, "block lookup", err)
		return
	}

	h.cache.Delete(suggestionKey(user.ID))

	c.JSON(http.StatusOK, gin.H{"is_blocked": blocked})
}

// ListBlocks returns the caller's block list.
func (h *ModerationHandler) ListBlocks(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	p := paginate(c)

	var total int64
	if err := h.db.Model(&models.BlockedUser{}).
		Where("blocker_id = ?", user.ID).
		Count(&total).Error; err != nil {
		internalError(c, "block list count", err)
		return
	}

	var blocks []models.BlockedUser
	if err := h.db.Preload("Blocked").
		Where("blocker_id = ?", user.ID).
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&blocks).Error; err != nil {
		internalError(c, "block list", err)
		return
	}

	c.JSON(http.StatusOK, pagedResponse(blocks, total, p))
}

type createReportInput struct {
	UserID    uint   `json:"user_id"`
	Kind      string `json:"kind"`
	ItemID    string `json:"item_id"`
	CommentID string `json:"comment_id"`
	Reason    string `json:"reason" binding:"required,max=500"`
}

// CreateReport files a report against exactly one target: a user, one
// content item, or one comment. The target's author becomes the reported
// party.
func (h *ModerationHandler) CreateReport(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var input createReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	targets := 0
	if input.UserID != 0 {
		targets++
	}
	if input.Kind != "" || input.ItemID != "" {
		targets++
	}
	if input.CommentID != "" {
		targets++
	}
	if targets != 1 {
		fail(c, http.StatusBadRequest, "report must name exactly one target")
		return
	}

	report := models.Report{
		ReporterID: user.ID,
		Reason:     utils.SanitizeText(input.Reason),
		Status:     models.ReportPending,
	}

	switch {
	case input.UserID != 0:
		var target models.User
		if err := h.db.First(&target, input.UserID).Error; err != nil {
			fail(c, http.StatusNotFound, "reported user not found")
			return
		}
		report.ReportedID = target.ID
	case input.CommentID != "":
		var comment models.Comment
		if err := h.db.Where("cid = ?", input.CommentID).First(&comment).Error; err != nil {
			fail(c, http.StatusNotFound, "reported comment not found")
			return
		}
		report.ReportedID = comment.UserID
		report.CommentID = &comment.ID
		report.CommentCid = comment.Cid
	default:
		ref, err := models.NewContentRef(input.Kind, input.ItemID)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		info, err := resolveContent(h.db, ref)
		switch {
		case errors.Is(err, errContentNotFound):
			fail(c, http.StatusNotFound, "reported content not found")
			return
		case errors.Is(err, errContentGone):
			fail(c, http.StatusGone, "reported content has expired")
			return
		case err != nil:
			internalError(c, "report target lookup", err)
			return
		}
		report.ReportedID = info.AuthorID
		report.Kind = ref.Kind
		report.ItemID = info.RowID
		report.ItemPid = ref.ID
	}

	if report.ReportedID == user.ID {
		fail(c, http.StatusBadRequest, "cannot report yourself or your own content")
		return
	}

	if err := h.db.Create(&report).Error; err != nil {
		internalError(c, "report create", err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports is the admin review queue, filterable by status.
func (h *ModerationHandler) ListReports(c *gin.Context) {
	p := paginate(c)

	var status models.ReportStatus
	haveStatus := false
	if s := c.Query("status"); s != "" {
		var ok bool
		status, ok = models.ParseReportStatus(s)
		if !ok {
			fail(c, http.StatusBadRequest, "unknown report status")
			return
		}
		haveStatus = true
	}
	filtered := func() *gorm.DB {
		q := h.db.Model(&models.Report{})
		if haveStatus {
			q = q.Where("status = ?", status)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		internalError(c, "report list count", err)
		return
	}

	var reports []models.Report
	if err := filtered().
		Preload("Reporter").Preload("Reported").
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&reports).Error; err != nil {
		internalError(c, "report list", err)
		return
	}

	c.JSON(http.StatusOK, pagedResponse(reports, total, p))
}

type updateReportInput struct {
	Status string `json:"status" binding:"required"`
}

// UpdateReport transitions a report through its status enum. No reviewer
// identity is recorded.
func (h *ModerationHandler) UpdateReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		fail(c, http.StatusNotFound, "report not found")
		return
	}

	var report models.Report
	if err := h.db.First(&report, id).Error; err != nil {
		fail(c, http.StatusNotFound, "report not found")
		return
	}

	var input updateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}
	status, ok := models.ParseReportStatus(input.Status)
	if !ok {
		fail(c, http.StatusBadRequest, "unknown report status")
		return
	}

	report.Status = status
	if err := h.db.Save(&report).Error; err != nil {
		internalError(c, "report update", err)
		return
	}

	c.JSON(http.StatusOK, report)
}
