package handlers

import (
	"errors"
	"net/http"

	"codenest/internal/middleware"
	"codenest/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BookmarkHandler struct {
	db *gorm.DB
}

func NewBookmarkHandler(db *gorm.DB) *BookmarkHandler {
	return &BookmarkHandler{db: db}
}

// Toggle flips the caller's bookmark edge for one content item.
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

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
		internalError(c, "bookmark target lookup", err)
		return
	}
	if !info.visibleTo(user.ID) {
		fail(c, http.StatusForbidden, "content is private")
		return
	}

	marked := false
	var existing models.Bookmark
	err = h.db.Where("user_id = ? AND kind = ? AND item_id = ?", user.ID, ref.Kind, info.RowID).
		First(&existing).Error
	if err == nil {
		if err := h.db.Delete(&existing).Error; err != nil {
			internalError(c, "bookmark delete", err)
			return
		}
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		bookmark := models.Bookmark{UserID: user.ID, Kind: ref.Kind, ItemID: info.RowID}
		if err := h.db.Create(&bookmark).Error; err != nil {
			internalError(c, "bookmark create", err)
			return
		}
		marked = true
	} else {
		internalError(c, "bookmark lookup", err)
		return
	}

	var count int64
	h.db.Model(&models.Bookmark{}).
		Where("kind = ? AND item_id = ?", ref.Kind, info.RowID).
		Count(&count)

	c.JSON(http.StatusOK, gin.H{"is_bookmarked": marked, "bookmark_count": count})
}

// List returns the caller's own bookmarks, newest first.
func (h *BookmarkHandler) List(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	p := paginate(c)

	var total int64
	if err := h.db.Model(&models.Bookmark{}).
		Where("user_id = ?", user.ID).
		Count(&total).Error; err != nil {
		internalError(c, "bookmark list count", err)
		return
	}

	var bookmarks []models.Bookmark
	if err := h.db.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&bookmarks).Error; err != nil {
		internalError(c, "bookmark list", err)
		return
	}

	c.JSON(http.StatusOK, pagedResponse(bookmarks, total, p))
}
