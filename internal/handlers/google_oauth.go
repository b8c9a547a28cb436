package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"codenest/internal/models"
	"codenest/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

var googleOauthConfig *oauth2.Config

// InitGoogleOAuth builds the OAuth config from the environment. Call once
// at startup, before the router starts serving.
func InitGoogleOAuth() {
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}

	googleOauthConfig = &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  siteURL + "/auth/google/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	Picture       string `json:"picture"`
}

// GoogleLogin redirects the browser to Google's consent page with a CSRF
// state token stashed in the session.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := utils.GenerateStateToken()
	if err != nil {
		internalError(c, "oauth state", err)
		return
	}

	session := sessions.Default(c)
	session.Set("oauth_state", state)
	if err := session.Save(); err != nil {
		internalError(c, "oauth session save", err)
		return
	}

	url := googleOauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback exchanges the authorization code, upserts the account and
// signs the user in.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	session := sessions.Default(c)
	savedState := session.Get("oauth_state")

	if savedState == nil || c.Query("state") != savedState.(string) {
		fail(c, http.StatusBadRequest, "invalid oauth state")
		return
	}
	session.Delete("oauth_state")
	session.Save()

	code := c.Query("code")
	if code == "" {
		fail(c, http.StatusBadRequest, "missing authorization code")
		return
	}

	token, err := googleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		internalError(c, "oauth exchange", err)
		return
	}

	info, err := fetchGoogleUserInfo(token.AccessToken)
	if err != nil {
		internalError(c, "oauth userinfo", err)
		return
	}
	if !info.VerifiedEmail {
		fail(c, http.StatusBadRequest, "google email is not verified")
		return
	}

	var user models.User
	created := false
	err = h.db.Where("google_id = ?", info.ID).
		Or("email = ?", strings.ToLower(info.Email)).
		First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		username := info.GivenName
		if username == "" {
			username = strings.Split(info.Email, "@")[0]
		}
		user = models.User{
			Username:    utils.SanitizeText(username),
			Email:       strings.ToLower(info.Email),
			Avatar:      info.Picture,
			Role:        models.RoleUser,
			GoogleID:    info.ID,
			GoogleEmail: info.Email,
		}
		err = h.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return tx.Create(&models.UserPreference{UserID: user.ID}).Error
		})
		if err != nil {
			internalError(c, "oauth register", err)
			return
		}
		created = true
	case err != nil:
		internalError(c, "oauth lookup", err)
		return
	default:
		if user.Role == models.RoleBlocked {
			fail(c, http.StatusForbidden, "account is blocked")
			return
		}
		if user.GoogleID == "" {
			user.GoogleID = info.ID
			user.GoogleEmail = info.Email
			if err := h.db.Save(&user).Error; err != nil {
				internalError(c, "oauth bind", err)
				return
			}
		}
	}

	if err := signIn(c, user.ID); err != nil {
		internalError(c, "session save", err)
		return
	}

	if created {
		c.Redirect(http.StatusFound, "/welcome")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func fetchGoogleUserInfo(accessToken string) (*googleUserInfo, error) {
	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
