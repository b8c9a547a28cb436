package handlers

import (
	"net/http"
	"strings"
	"testing"

	"codenest/internal/models"

	"github.com/gin-gonic/gin"
)

func TestProfileRejectsNonNumericID(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "alice")
	signup(t, ts, "bob")

	// A SQL expression in the path must 404, not match the first row.
	for _, path := range []string{
		"/api/users/1%20OR%201=1",
		"/api/users/abc",
		"/api/users/-1",
	} {
		w := guest(t, ts).do(http.MethodGet, path, nil)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d body %s", path, w.Code, w.Body.String())
		}
	}

	w := guest(t, ts).do(http.MethodGet, "/api/users/1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected numeric id to resolve, got %d", w.Code)
	}
}

func TestUpdateSettings(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")

	w := alice.do(http.MethodPut, "/api/me/settings", gin.H{
		"bio":      "I write Go",
		"username": "alice_g",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("settings: status %d body %s", w.Code, w.Body.String())
	}
	var user models.User
	decode(t, w, &user)
	if user.Username != "alice_g" || user.Bio != "I write Go" {
		t.Errorf("unexpected settings result: %+v", user)
	}

	// script tags are stripped from text fields
	w = alice.do(http.MethodPut, "/api/me/settings", gin.H{
		"bio": "hello <script>alert(1)</script>world",
	})
	decode(t, w, &user)
	if user.Bio != "hello world" {
		t.Errorf("expected sanitized bio, got %q", user.Bio)
	}
}

func TestPasswordChangeAllowsLogin(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")

	w := alice.do(http.MethodPut, "/api/me/settings", gin.H{"password": "new-password-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("password change: status %d", w.Code)
	}

	c := guest(t, ts)
	w = c.do(http.MethodPost, "/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "new-password-1",
	})
	if w.Code != http.StatusOK {
		t.Errorf("expected login with new password, got %d", w.Code)
	}
	w = guest(t, ts).do(http.MethodPost, "/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected old password rejected, got %d", w.Code)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")

	var pref models.UserPreference
	w := alice.do(http.MethodGet, "/api/me/preferences", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("preferences: status %d", w.Code)
	}
	decode(t, w, &pref)
	if !pref.EmailOnNew || pref.Theme != "light" {
		t.Errorf("unexpected defaults: %+v", pref)
	}

	w = alice.do(http.MethodPut, "/api/me/preferences", gin.H{
		"email_on_new": false,
		"theme":        "dark",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update preferences: status %d body %s", w.Code, w.Body.String())
	}
	decode(t, w, &pref)
	if pref.EmailOnNew || pref.Theme != "dark" || !pref.PushOnNew {
		t.Errorf("unexpected preferences after patch: %+v", pref)
	}

	w = alice.do(http.MethodPut, "/api/me/preferences", gin.H{"theme": "sepia"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown theme, got %d", w.Code)
	}
}

func TestSearchScopesVisibility(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")

	createSnippet(t, alice, "Redis connection pool", "public")
	createSnippet(t, alice, "Redis secret sauce", "private")

	w := alice.do(http.MethodPost, "/api/docs", gin.H{
		"title":   "Redis setup guide",
		"content": "# install\nredis-server",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("doc: status %d", w.Code)
	}

	bid := createBug(t, alice, "Redis timeout under load")
	expired := createBug(t, alice, "Redis crash on start")
	expireBug(t, ts, expired)

	var resp struct {
		Snippets []models.Snippet `json:"snippets"`
		Docs     []models.Doc     `json:"docs"`
		Bugs     []models.Bug     `json:"bugs"`
	}
	sw := guest(t, ts).do(http.MethodGet, "/api/search?q=redis", nil)
	if sw.Code != http.StatusOK {
		t.Fatalf("search: status %d", sw.Code)
	}
	decode(t, sw, &resp)
	if len(resp.Snippets) != 1 {
		t.Errorf("expected 1 public snippet match, got %d", len(resp.Snippets))
	}
	if len(resp.Docs) != 1 {
		t.Errorf("expected 1 doc match, got %d", len(resp.Docs))
	}
	if len(resp.Bugs) != 1 || resp.Bugs[0].Bid != bid {
		t.Errorf("expected only the live bug, got %+v", resp.Bugs)
	}

	if w := guest(t, ts).do(http.MethodGet, "/api/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty query, got %d", w.Code)
	}
}

func TestDocRendersMarkdownOnDetail(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")

	w := alice.do(http.MethodPost, "/api/docs", gin.H{
		"title":   "guide",
		"content": "# Heading\n\n<script>alert(1)</script>plain",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("doc create: status %d body %s", w.Code, w.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decode(t, w, &created)

	var view struct {
		Content     string `json:"content"`
		ContentHTML string `json:"content_html"`
	}
	gw := alice.do(http.MethodGet, "/api/docs/"+created.ID, nil)
	decode(t, gw, &view)
	if view.ContentHTML == "" {
		t.Fatal("expected rendered html on detail")
	}
	if !strings.Contains(view.ContentHTML, "<h1") {
		t.Errorf("expected heading in rendered html, got %q", view.ContentHTML)
	}
	if strings.Contains(view.ContentHTML, "<script") {
		t.Errorf("expected script stripped, got %q", view.ContentHTML)
	}
}
