package handlers

import (
	"net/http"
	"testing"

	"codenest/internal/models"

	"github.com/gin-gonic/gin"
)

func TestRegisterAndMe(t *testing.T) {
	ts := newTestServer(t)
	c := signup(t, ts, "alice")

	w := c.do(http.MethodGet, "/api/me", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: status %d body %s", w.Code, w.Body.String())
	}
	var me struct {
		User        models.User `json:"user"`
		UnreadCount int64       `json:"unreadCount"`
	}
	decode(t, w, &me)
	if me.User.Username != "alice" {
		t.Errorf("expected username alice, got %s", me.User.Username)
	}
	if me.UnreadCount != 0 {
		t.Errorf("expected no unread notifications, got %d", me.UnreadCount)
	}

	// registration also creates the preference row
	var count int64
	ts.db.Model(&models.UserPreference{}).Where("user_id = ?", c.userID).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 preference row, got %d", count)
	}

	seeded := seedNotifications(t, ts, c.userID, 3)
	ts.db.Model(&seeded[0]).Update("is_read", true)
	w = c.do(http.MethodGet, "/api/me", nil)
	decode(t, w, &me)
	if me.UnreadCount != 2 {
		t.Errorf("expected 2 unread notifications, got %d", me.UnreadCount)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "alice")

	c := guest(t, ts)
	w := c.do(http.MethodPost, "/auth/register", gin.H{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "alice")

	c := guest(t, ts)
	w := c.do(http.MethodPost, "/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "not-the-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", w.Code)
	}
}

func TestLoginAndLogout(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "alice")

	c := guest(t, ts)
	w := c.do(http.MethodPost, "/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}

	if w := c.do(http.MethodGet, "/api/me", nil); w.Code != http.StatusOK {
		t.Fatalf("me after login: status %d", w.Code)
	}

	if w := c.do(http.MethodPost, "/auth/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("logout: status %d", w.Code)
	}
	if w := c.do(http.MethodGet, "/api/me", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", w.Code)
	}
}

func TestBlockedRoleCannotWrite(t *testing.T) {
	ts := newTestServer(t)
	c := signup(t, ts, "alice")

	ts.db.Model(&models.User{}).Where("id = ?", c.userID).
		Update("role", models.RoleBlocked)

	w := c.do(http.MethodPost, "/api/snippets", gin.H{
		"title": "nope",
		"code":  "x",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for blocked account, got %d", w.Code)
	}
}
