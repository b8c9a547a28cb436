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

type DocHandler struct {
	db       *gorm.DB
	notifier *services.Notifier
}

func NewDocHandler(db *gorm.DB, notifier *services.Notifier) *DocHandler {
	return &DocHandler{db: db, notifier: notifier}
}

type docView struct {
	models.Doc
	engagement
	// rendered on detail reads only
	ContentHTML string `json:"content_html,omitempty"`
}

type createDocInput struct {
	Title      string `json:"title" binding:"required,max=200"`
	Content    string `json:"content" binding:"required"`
	Tags       string `json:"tags" binding:"max=200"`
	Visibility string `json:"visibility" binding:"omitempty,oneof=public private"`
}

type updateDocInput struct {
	Title      *string `json:"title" binding:"omitempty,max=200"`
	Content    *string `json:"content"`
	Tags       *string `json:"tags" binding:"omitempty,max=200"`
	Visibility *string `json:"visibility" binding:"omitempty,oneof=public private"`
}

func (h *DocHandler) views(docs []models.Doc, viewerID uint) []docView {
	ids := make([]uint, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	eng := loadEngagement(h.db, models.KindDoc, ids, viewerID)
	out := make([]docView, len(docs))
	for i, d := range docs {
		out[i] = docView{Doc: d, engagement: *eng[d.ID]}
	}
	return out
}

func (h *DocHandler) List(c *gin.Context) {
	p := paginate(c)
	viewerID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}

	var total int64
	if err := h.db.Model(&models.Doc{}).
		Where("visibility = ? OR user_id = ?", models.VisibilityPublic, viewerID).
		Count(&total).Error; err != nil {
		internalError(c, "doc list count", err)
		return
	}

	var docs []models.Doc
	if err := h.db.Preload("User").
		Where("visibility = ? OR user_id = ?", models.VisibilityPublic, viewerID).
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&docs).Error; err != nil {
		internalError(c, "doc list", err)
		return
	}

	c.JSON(http.StatusOK, pagedResponse(h.views(docs, viewerID), total, p))
}

func (h *DocHandler) Get(c *gin.Context) {
	viewerID := uint(0)
	if user := middleware.CurrentUser(c); user != nil {
		viewerID = user.ID
	}

	var doc models.Doc
	if err := h.db.Preload("User").Where("did = ?", c.Param("did")).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "doc not found")
			return
		}
		internalError(c, "doc get", err)
		return
	}
	if !doc.Public() && doc.UserID != viewerID {
		fail(c, http.StatusForbidden, "doc is private")
		return
	}

	view := h.views([]models.Doc{doc}, viewerID)[0]
	view.ContentHTML = utils.RenderMarkdown(doc.Content)
	c.JSON(http.StatusOK, view)
}

func (h *DocHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var input createDocInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = models.VisibilityPublic
	}

	doc := models.Doc{
		Did:        utils.RandStringBytesMaskImpr(8),
		UserID:     user.ID,
		Title:      utils.SanitizeText(input.Title),
		Content:    input.Content, // raw markdown, sanitized at render time
		Tags:       utils.SanitizeText(input.Tags),
		Visibility: visibility,
	}
	if err := h.db.Create(&doc).Error; err != nil {
		internalError(c, "doc create", err)
		return
	}
	doc.User = *user

	if doc.Public() {
		h.notifier.EmitToFollowers(user.ID, "new-doc", doc)
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *DocHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var doc models.Doc
	if err := h.db.Where("did = ?", c.Param("did")).First(&doc).Error; err != nil {
		fail(c, http.StatusNotFound, "doc not found")
		return
	}
	if doc.UserID != user.ID {
		fail(c, http.StatusForbidden, "not the owner")
		return
	}

	var input updateDocInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	if input.Title != nil {
		doc.Title = utils.SanitizeText(*input.Title)
	}
	if input.Content != nil {
		doc.Content = *input.Content
	}
	if input.Tags != nil {
		doc.Tags = utils.SanitizeText(*input.Tags)
	}
	if input.Visibility != nil {
		doc.Visibility = *input.Visibility
	}

	if err := h.db.Save(&doc).Error; err != nil {
		internalError(c, "doc update", err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var doc models.Doc
	if err := h.db.Where("did = ?", c.Param("did")).First(&doc).Error; err != nil {
		fail(c, http.StatusNotFound, "doc not found")
		return
	}
	if doc.UserID != user.ID && user.Role != models.RoleAdmin {
		fail(c, http.StatusForbidden, "not the owner")
		return
	}

	ref := models.ContentRef{Kind: models.KindDoc, ID: doc.Did}
	if err := deleteContentTx(h.db, ref, doc.ID); err != nil {
		internalError(c, "doc delete", err)
		return
	}

	if doc.UserID != user.ID {
		h.notifier.CreateAsync(&models.Notification{
			UserID:  doc.UserID,
			Type:    models.NotificationTypeSystem,
			Kind:    models.KindDoc,
			ItemPid: doc.Did,
			Message: "Your doc \"" + doc.Title + "\" was removed by a moderator.",
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "doc deleted"})
}
