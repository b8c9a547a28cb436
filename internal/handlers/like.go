package handlers

import (
	"errors"
	"net/http"

	"codenest/internal/middleware"
	"codenest/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type LikeHandler struct {
	db *gorm.DB
}

func NewLikeHandler(db *gorm.DB) *LikeHandler {
	return &LikeHandler{db: db}
}

// Toggle flips the caller's like edge for one content item. A second call
// for the same pair removes the edge; the unique index backs the invariant.
func (h *LikeHandler) Toggle(c *gin.Context) {
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
		internalError(c, "like target lookup", err)
		return
	}
	if !info.visibleTo(user.ID) {
		fail(c, http.StatusForbidden, "content is private")
		return
	}

	liked := false
	var existing models.Like
	err = h.db.Where("user_id = ? AND kind = ? AND item_id = ?", user.ID, ref.Kind, info.RowID).
		First(&existing).Error
	if err == nil {
		if err := h.db.Delete(&existing).Error; err != nil {
			internalError(c, "like delete", err)
			return
		}
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		like := models.Like{UserID: user.ID, Kind: ref.Kind, ItemID: info.RowID}
		if err := h.db.Create(&like).Error; err != nil {
			internalError(c, "like create", err)
			return
		}
		liked = true
	} else {
		internalError(c, "like lookup", err)
		return
	}

	var count int64
	h.db.Model(&models.Like{}).
		Where("kind = ? AND item_id = ?", ref.Kind, info.RowID).
		Count(&count)

	c.JSON(http.StatusOK, gin.H{"is_liked": liked, "like_count": count})
}
