package handlers

import (
	"net/http"
	"strconv"

	"codenest/internal/middleware"
	"codenest/internal/models"
	"codenest/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type profileView struct {
	models.User
	SnippetCount int64 `json:"snippet_count"`
	DocCount     int64 `json:"doc_count"`
	IsFollowing  bool  `json:"is_following"`
}

// Profile returns a user's public profile with content counts.
func (h *UserHandler) Profile(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		fail(c, http.StatusNotFound, "user not found")
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}

	view := profileView{User: user}
	h.db.Model(&models.Snippet{}).
		Where("user_id = ? AND visibility = ?", user.ID, models.VisibilityPublic).
		Count(&view.SnippetCount)
	h.db.Model(&models.Doc{}).
		Where("user_id = ? AND visibility = ?", user.ID, models.VisibilityPublic).
		Count(&view.DocCount)

	if viewer := middleware.CurrentUser(c); viewer != nil && viewer.ID != user.ID {
		var n int64
		h.db.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", viewer.ID, user.ID).
			Count(&n)
		view.IsFollowing = n > 0
	}

	c.JSON(http.StatusOK, view)
}

type updateSettingsInput struct {
	Username *string `json:"username" binding:"omitempty,min=2,max=30"`
	Bio      *string `json:"bio" binding:"omitempty,max=200"`
	Avatar   *string `json:"avatar" binding:"omitempty,url"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

// UpdateSettings patches the caller's own account fields.
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var input updateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	if input.Username != nil {
		user.Username = utils.SanitizeText(*input.Username)
	}
	if input.Bio != nil {
		user.Bio = utils.SanitizeText(*input.Bio)
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.Password != nil {
		hash, err := utils.HashPassword(*input.Password)
		if err != nil {
			internalError(c, "password hash", err)
			return
		}
		user.Password = hash
	}

	if err := h.db.Save(user).Error; err != nil {
		internalError(c, "settings update", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Preferences returns the caller's preference row, creating it on first
// access for accounts that predate the table.
func (h *UserHandler) Preferences(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var pref models.UserPreference
	if err := h.db.Where("user_id = ?", user.ID).
		FirstOrCreate(&pref, models.UserPreference{UserID: user.ID}).Error; err != nil {
		internalError(c, "preferences load", err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

type updatePreferencesInput struct {
	EmailOnNew *bool   `json:"email_on_new"`
	PushOnNew  *bool   `json:"push_on_new"`
	Theme      *string `json:"theme" binding:"omitempty,oneof=light dark"`
}

func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var input updatePreferencesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid input: "+err.Error())
		return
	}

	var pref models.UserPreference
	if err := h.db.Where("user_id = ?", user.ID).
		FirstOrCreate(&pref, models.UserPreference{UserID: user.ID}).Error; err != nil {
		internalError(c, "preferences load", err)
		return
	}

	if input.EmailOnNew != nil {
		pref.EmailOnNew = *input.EmailOnNew
	}
	if input.PushOnNew != nil {
		pref.PushOnNew = *input.PushOnNew
	}
	if input.Theme != nil {
		pref.Theme = *input.Theme
	}

	if err := h.db.Save(&pref).Error; err != nil {
		internalError(c, "preferences update", err)
		return
	}
	c.JSON(http.StatusOK, pref)
}
