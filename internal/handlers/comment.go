package handlers

import (
	"errors"
	"net/http"

	"codenest/internal/middleware"
	"codenest/internal/models"
	"codenest/internal/services"
	"codenest/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewCommentHandler(db *gorm.DB, notifier *services.Notifier) *CommentHandler {
	return &CommentHandler{db: db, notifier: notifier}
}

type createCommentInput struct {
	Kind     string `json:"kind" binding:"required"`
	ItemID   string `json:"item_id" binding:"required"`
	Content  string `json:"content" binding:"required,max=1000"`
	ParentID string `json:"parent_id"`
}

type updateCommentInput struct {
	Content string `json:"content" binding:"required,max=1000"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var input createCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	ref, err := models.NewContentRef(input.Kind, input.ItemID)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	info, err := resolveContent(h.db, ref)
	switch {
	case errors.Is(err, errContentNotFound):
		fail(c, http.StatusNotFound, "content not found")
		return
	case errors.Is(err, errContentGone):
		fail(c, http.StatusGone, "content has expired")
		return
	case err != nil:
		internalError(c, "comment target lookup", err)
		return
	}
	if !info.visibleTo(user.ID) {
		fail(c, http.StatusForbidden, "content is private")
		return
	}

	// Replies are one level deep: the parent must be a top-level comment on
	// the same item.
	var parent *models.Comment
	if input.ParentID != "" {
		var p models.Comment
		if err := h.db.Where("cid = ?", input.ParentID).First(&p).Error; err != nil {
			fail(c, http.StatusNotFound, "parent comment not found")
			return
		}
		if p.Kind != ref.Kind || p.ItemID != info.RowID {
			fail(c, http.StatusBadRequest, "parent comment belongs to another item")
			return
		}
		if p.ParentID != nil {
			fail(c, http.StatusBadRequest, "replies cannot be nested")
			return
		}
		parent = &p
	}

	comment := models.Comment{
		Cid:     utils.RandStringBytesMaskImpr(8),
		Kind:    ref.Kind,
		ItemID:  info.RowID,
		ItemPid: ref.ID,
		UserID:  user.ID,
		Content: utils.SanitizeText(input.Content),
	}
	if parent != nil {
		comment.ParentID = &parent.ID
		comment.ParentCid = parent.Cid
	}

	if err := h.db.Create(&comment).Error; err != nil {
		internalError(c, "comment create", err)
		return
	}
	comment.User = *user

	// Side effects after the write: best effort, never fail the request.
	if info.AuthorID != user.ID {
		typ := models.NotificationTypeComment
		if parent != nil {
			typ = models.NotificationTypeReply
		}
		h.notifier.CreateAsync(&models.Notification{
			UserID:     info.AuthorID,
			ActorID:    &user.ID,
			Type:       typ,
			Kind:       ref.Kind,
			ItemID:     info.RowID,
			ItemPid:    ref.ID,
			CommentCid: comment.Cid,
			Message:    user.Username + " commented on \"" + info.Title + "\"",
		})
	}
	h.notifier.EmitToContent(ref.ID, "new_comment", comment)

	c.JSON(http.StatusCreated, comment)
}

// List returns the top-level page for one item, each comment carrying its
// direct replies in creation order.
func (h *CommentHandler) List(c *gin.Context) {
	ref, err := models.NewContentRef(c.Param("kind"), c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	info, err := resolveContent(h.db, ref)
	switch {
	case errors.Is(err, errContentNotFound):
		fail(c, http.StatusNotFound, "content not found")
		return
	case errors.Is(err, errContentGone):
		fail(c, http.StatusGone, "content has expired")
		return
	case err != nil:
		internalError(c, "comment list lookup", err)
		return
	}
	viewerID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}
	if !info.visibleTo(viewerID) {
		fail(c, http.StatusForbidden, "content is private")
		return
	}

	p := paginate(c)

	var total int64
	if err := h.db.Model(&models.Comment{}).
		Where("kind = ? AND item_id = ? AND parent_id IS NULL", ref.Kind, info.RowID).
		Count(&total).Error; err != nil {
		internalError(c, "comment list count", err)
		return
	}

	var comments []models.Comment
	if err := h.db.Preload("User").
		Where("kind = ? AND item_id = ? AND parent_id IS NULL", ref.Kind, info.RowID).
		Order("created_at ASC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&comments).Error; err != nil {
		internalError(c, "comment list", err)
		return
	}

	if len(comments) > 0 {
		parentIDs := make([]uint, len(comments))
		idx := make(map[uint]int, len(comments))
		for i, cm := range comments {
			parentIDs[i] = cm.ID
			idx[cm.ID] = i
		}
		var replies []models.Comment
		if err := h.db.Preload("User").
			Where("parent_id IN ?", parentIDs).
			Order("created_at ASC").
			Find(&replies).Error; err != nil {
			internalError(c, "comment replies", err)
			return
		}
		for _, r := range replies {
			i := idx[*r.ParentID]
			comments[i].Replies = append(comments[i].Replies, r)
		}
	}

	c.JSON(http.StatusOK, pagedResponse(comments, total, p))
}

func (h *CommentHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var comment models.Comment
	if err := h.db.Where("cid = ?", c.Param("cid")).First(&comment).Error; err != nil {
		fail(c, http.StatusNotFound, "comment not found")
		return
	}
	if comment.UserID != user.ID {
		fail(c, http.StatusForbidden, "not the owner")
		return
	}

	var input updateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	comment.Content = utils.SanitizeText(input.Content)
	if err := h.db.Save(&comment).Error; err != nil {
		internalError(c, "comment update", err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// Delete removes the comment, its direct replies and any reports against
// them in one transaction.
func (h *CommentHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var comment models.Comment
	if err := h.db.Where("cid = ?", c.Param("cid")).First(&comment).Error; err != nil {
		fail(c, http.StatusNotFound, "comment not found")
		return
	}
	if comment.UserID != user.ID && user.Role != models.RoleAdmin {
		fail(c, http.StatusForbidden, "not the owner")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var replyIDs []uint
		if err := tx.Model(&models.Comment{}).
			Where("parent_id = ?", comment.ID).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		ids := append(replyIDs, comment.ID)
		if err := tx.Where("comment_id IN ?", ids).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
	if err != nil {
		internalError(c, "comment delete", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
