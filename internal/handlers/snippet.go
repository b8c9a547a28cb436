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

type SnippetHandler struct {
	db       *gorm.DB
	notifier *services.Notifier
	cache    *utils.Cache
}

func NewSnippetHandler(db *gorm.DB, notifier *services.Notifier, cache *utils.Cache) *SnippetHandler {
	return &SnippetHandler{db: db, notifier: notifier, cache: cache}
}

type snippetView struct {
	models.Snippet
	engagement
}

type createSnippetInput struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Code        string `json:"code" binding:"required"`
	Language    string `json:"language" binding:"max=40"`
	Tags        string `json:"tags" binding:"max=200"`
	Visibility  string `json:"visibility" binding:"omitempty,oneof=public private"`
}

type updateSnippetInput struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Code        *string `json:"code"`
	Language    *string `json:"language" binding:"omitempty,max=40"`
	Tags        *string `json:"tags" binding:"omitempty,max=200"`
	Visibility  *string `json:"visibility" binding:"omitempty,oneof=public private"`
}

func (h *SnippetHandler) views(snippets []models.Snippet, viewerID uint) []snippetView {
	ids := make([]uint, len(snippets))
	for i, s := range snippets {
		ids[i] = s.ID
	}
	eng := loadEngagement(h.db, models.KindSnippet, ids, viewerID)
	out := make([]snippetView, len(snippets))
	for i, s := range snippets {
		out[i] = snippetView{Snippet: s, engagement: *eng[s.ID]}
	}
	return out
}

func (h *SnippetHandler) List(c *gin.Context) {
	p := paginate(c)
	viewerID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}

	// The guest first page is the hot path; serve it from the cache.
	useCache := viewerID == 0 && p.Page == 1 && p.Limit == defaultPageSize
	if useCache {
		if cached := h.cache.Get("snippet:list:1"); cached != nil {
			c.JSON(http.StatusOK, cached.(gin.H))
			return
		}
	}

	scope := h.db.Model(&models.Snippet{}).
		Where("visibility = ? OR user_id = ?", models.VisibilityPublic, viewerID)

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		internalError(c, "snippet list count", err)
		return
	}

	var snippets []models.Snippet
	if err := h.db.Preload("User").
		Where("visibility = ? OR user_id = ?", models.VisibilityPublic, viewerID).
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&snippets).Error; err != nil {
		internalError(c, "snippet list", err)
		return
	}

	resp := pagedResponse(h.views(snippets, viewerID), total, p)
	if useCache {
		h.cache.Set("snippet:list:1", resp, snippetCacheTTL)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SnippetHandler) Get(c *gin.Context) {
	viewerID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}

	var snippet models.Snippet
	if err := h.db.Preload("User").Where("sid = ?", c.Param("sid")).First(&snippet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "snippet not found")
			return
		}
		internalError(c, "snippet get", err)
		return
	}
	if !snippet.Public() && snippet.UserID != viewerID {
		fail(c, http.StatusForbidden, "snippet is private")
		return
	}

	views := h.views([]models.Snippet{snippet}, viewerID)
	c.JSON(http.StatusOK, views[0])
}

func (h *SnippetHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var input createSnippetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	snippet := models.Snippet{
		Sid:         utils.RandStringBytesMaskImpr(8),
		UserID:      user.ID,
		Title:       utils.SanitizeText(input.Title),
		Description: utils.SanitizeText(input.Description),
		Code:        input.Code,
		Language:    input.Language,
		Tags:        utils.SanitizeText(input.Tags),
		Visibility:  visibility,
	}
	if err := h.db.Create(&snippet).Error; err != nil {
		internalError(c, "snippet create", err)
		return
	}
	snippet.User = *user

	if snippet.Public() {
		h.notifier.EmitToFollowers(user.ID, "new-snippet", snippet)
	}
	h.cache.Delete("snippet:list:1")

	c.JSON(http.StatusCreated, snippet)
}

func (h *SnippetHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var snippet models.Snippet
	if err := h.db.Where("sid = ?", c.Param("sid")).First(&snippet).Error; err != nil {
		fail(c, http.StatusNotFound, "snippet not found")
		return
	}
	if snippet.UserID != user.ID {
		fail(c, http.StatusForbidden, "not the owner")
		return
	}

	var input updateSnippetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	if input.Title != nil {
		snippet.Title = utils.SanitizeText(*input.Title)
	}
	if input.Description != nil {
		snippet.Description = utils.SanitizeText(*input.Description)
	}
	if input.Code != nil {
		snippet.Code = *input.Code
	}
	if input.Language != nil {
		snippet.Language = *input.Language
	}
	if input.Tags != nil {
		snippet.Tags = utils.SanitizeText(*input.Tags)
	}
	if input.Visibility != nil {
		snippet.Visibility = *input.Visibility
	}

	if err := h.db.Save(&snippet).Error; err != nil {
		internalError(c, "snippet update", err)
		return
	}
	h.cache.Delete("snippet:list:1")

	c.JSON(http.StatusOK, snippet)
}

func (h *SnippetHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var snippet models.Snippet
	if err := h.db.Where("sid = ?", c.Param("sid")).First(&snippet).Error; err != nil {
		fail(c, http.StatusNotFound, "snippet not found")
		return
	}
	if snippet.UserID != user.ID && user.Role != models.RoleAdmin {
		fail(c, http.StatusForbidden, "not the owner")
		return
	}

	ref := models.ContentRef{Kind: models.KindSnippet, ID: snippet.Sid}
	if err := deleteContentTx(h.db, ref, snippet.ID); err != nil {
		internalError(c, "snippet delete", err)
		return
	}
	h.cache.Delete("snippet:list:1")

	// Removal by a moderator notifies the author after the delete commits.
	if snippet.UserID != user.ID {
		h.notifier.CreateAsync(&models.Notification{
			UserID:  snippet.UserID,
			Type:    models.NotificationTypeSystem,
			Kind:    models.KindSnippet,
			ItemPid: snippet.Sid,
			Message: "Your snippet \"" + snippet.Title + "\" was removed by a moderator.",
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "snippet deleted"})
}

// snippetCacheTTL bounds how stale the guest list page may get.
const snippetCacheTTL = time.Minute
