package handlers

import (
	"net/http"
	"strings"
	"time"

	"codenest/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SearchHandler struct {
	db *gorm.DB
}

func NewSearchHandler(db *gorm.DB) *SearchHandler {
	return &SearchHandler{db: db}
}

// Search matches public snippets and docs plus live bugs on title and
// body. Case folding is done with LOWER so the same query works on both
// postgres and sqlite.
func (h *SearchHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, "query parameter q is required")
		return
	}
	if len(q) > 100 {
		q = q[:100]
	}
	pattern := "%" + strings.ToLower(q) + "%"

	limit := paginate(c).Limit

	var snippets []models.Snippet
	if err := h.db.Preload("User").
		Where("visibility = ?", models.VisibilityPublic).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(code) LIKE ?",
			pattern, pattern, pattern).
		Order("created_at DESC").Limit(limit).
		Find(&snippets).Error; err != nil {
		internalError(c, "snippet search", err)
		return
	}

	var docs []models.Doc
	if err := h.db.Preload("User").
		Where("visibility = ?", models.VisibilityPublic).
		Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ?", pattern, pattern).
		Order("created_at DESC").Limit(limit).
		Find(&docs).Error; err != nil {
		internalError(c, "doc search", err)
		return
	}

	var bugs []models.Bug
	if err := h.db.Preload("User").
		Where("expires_at > ?", time.Now()).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Order("created_at DESC").Limit(limit).
		Find(&bugs).Error; err != nil {
		internalError(c, "bug search", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    q,
		"snippets": snippets,
		"docs":     docs,
		"bugs":     bugs,
	})
}
