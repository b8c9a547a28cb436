package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"codenest/internal/models"
)

func toggleFollow(t *testing.T, c *testClient, targetID uint) bool {
	t.Helper()
	w := c.do(http.MethodPost, fmt.Sprintf("/api/follows/%d/toggle", targetID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("follow toggle: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		IsFollowing bool `json:"is_following"`
	}
	decode(t, w, &resp)
	return resp.IsFollowing
}

func TestFollowToggleAndCounters(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")
	bob := signup(t, ts, "bob")

	if !toggleFollow(t, alice, bob.userID) {
		t.Fatal("expected first toggle to follow")
	}

	var target models.User
	ts.db.First(&target, bob.userID)
	if target.FollowerCount != 1 {
		t.Errorf("expected follower_count 1, got %d", target.FollowerCount)
	}
	var follower models.User
	ts.db.First(&follower, alice.userID)
	if follower.FollowingCount != 1 {
		t.Errorf("expected following_count 1, got %d", follower.FollowingCount)
	}

	waitFor(t, "follow notification", func() bool {
		var n int64
		ts.db.Model(&models.Notification{}).
			Where("user_id = ? AND type = ?", bob.userID, models.NotificationTypeFollow).
			Count(&n)
		return n == 1
	})

	if toggleFollow(t, alice, bob.userID) {
		t.Fatal("expected second toggle to unfollow")
	}
	ts.db.First(&target, bob.userID)
	if target.FollowerCount != 0 {
		t.Errorf("expected follower_count back to 0, got %d", target.FollowerCount)
	}

	// unfollow does not notify
	var n int64
	ts.db.Model(&models.Notification{}).Where("user_id = ?", bob.userID).Count(&n)
	if n != 1 {
		t.Errorf("expected no extra notification on unfollow, got %d", n)
	}
}

func TestFollowSelfRejected(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")

	w := alice.do(http.MethodPost, fmt.Sprintf("/api/follows/%d/toggle", alice.userID), nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for self-follow, got %d", w.Code)
	}
	w = alice.do(http.MethodPost, "/api/follows/99999/toggle", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing target, got %d", w.Code)
	}
}

func TestFollowEdgeLists(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")
	bob := signup(t, ts, "bob")
	carol := signup(t, ts, "carol")

	toggleFollow(t, alice, carol.userID)
	toggleFollow(t, bob, carol.userID)

	var list struct {
		Items []models.User `json:"items"`
		Total int64         `json:"total"`
	}
	w := guest(t, ts).do(http.MethodGet, fmt.Sprintf("/api/users/%d/followers", carol.userID), nil)
	decode(t, w, &list)
	if list.Total != 2 {
		t.Errorf("expected 2 followers, got %d", list.Total)
	}

	w = guest(t, ts).do(http.MethodGet, fmt.Sprintf("/api/users/%d/following", alice.userID), nil)
	decode(t, w, &list)
	if list.Total != 1 || list.Items[0].ID != carol.userID {
		t.Errorf("expected alice following carol, got %+v", list.Items)
	}
}

func TestFollowSuggestionsExcludeRelations(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")
	bob := signup(t, ts, "bob")
	carol := signup(t, ts, "carol")
	dave := signup(t, ts, "dave")

	toggleFollow(t, alice, bob.userID)
	// alice blocks carol
	w := alice.do(http.MethodPost, fmt.Sprintf("/api/blocks/%d/toggle", carol.userID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("block: status %d", w.Code)
	}

	var resp struct {
		Items []models.User `json:"items"`
	}
	sw := alice.do(http.MethodGet, "/api/follows/suggestions", nil)
	if sw.Code != http.StatusOK {
		t.Fatalf("suggestions: status %d", sw.Code)
	}
	decode(t, sw, &resp)
	if len(resp.Items) != 1 || resp.Items[0].ID != dave.userID {
		t.Errorf("expected only dave suggested, got %+v", resp.Items)
	}
}

func TestProfileShowsFollowState(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")
	bob := signup(t, ts, "bob")

	createSnippet(t, bob, "public work", "public")
	createSnippet(t, bob, "drafts", "private")
	toggleFollow(t, alice, bob.userID)

	var profile struct {
		SnippetCount int64 `json:"snippet_count"`
		IsFollowing  bool  `json:"is_following"`
	}
	w := alice.do(http.MethodGet, fmt.Sprintf("/api/users/%d", bob.userID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: status %d", w.Code)
	}
	decode(t, w, &profile)
	if profile.SnippetCount != 1 {
		t.Errorf("profile counts public snippets only, got %d", profile.SnippetCount)
	}
	if !profile.IsFollowing {
		t.Error("expected is_following true")
	}
}
