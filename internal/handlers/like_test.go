package handlers

import (
	"net/http"
	"testing"

	"codenest/internal/models"
)

func TestLikeToggle(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")
	bob := signup(t, ts, "bob")

	sid := createSnippet(t, alice, "likeable", "public")

	var resp struct {
		IsLiked   bool  `json:"is_liked"`
		LikeCount int64 `json:"like_count"`
	}

	w := bob.do(http.MethodPost, "/api/content/snippet/"+sid+"/like", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("like: status %d body %s", w.Code, w.Body.String())
	}
	decode(t, w, &resp)
	if !resp.IsLiked || resp.LikeCount != 1 {
		t.Errorf("expected liked with count 1, got %+v", resp)
	}

	// the second toggle removes the edge
	w = bob.do(http.MethodPost, "/api/content/snippet/"+sid+"/like", nil)
	decode(t, w, &resp)
	if resp.IsLiked || resp.LikeCount != 0 {
		t.Errorf("expected unliked with count 0, got %+v", resp)
	}

	var edges int64
	ts.db.Model(&models.Like{}).Count(&edges)
	if edges != 0 {
		t.Errorf("expected no like rows, got %d", edges)
	}
}

func TestLikeRequiresVisibleContent(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")
	bob := signup(t, ts, "bob")

	private := createSnippet(t, alice, "hidden", "private")

	if w := bob.do(http.MethodPost, "/api/content/snippet/"+private+"/like", nil); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for private content, got %d", w.Code)
	}
	if w := bob.do(http.MethodPost, "/api/content/snippet/missing1/like", nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing content, got %d", w.Code)
	}
	if w := bob.do(http.MethodPost, "/api/content/story/abc12345/like", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown kind, got %d", w.Code)
	}
}

func TestBookmarkToggleAndList(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")
	bob := signup(t, ts, "bob")

	sid := createSnippet(t, alice, "keeper", "public")

	var resp struct {
		IsBookmarked  bool  `json:"is_bookmarked"`
		BookmarkCount int64 `json:"bookmark_count"`
	}
	w := bob.do(http.MethodPost, "/api/content/snippet/"+sid+"/bookmark", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("bookmark: status %d body %s", w.Code, w.Body.String())
	}
	decode(t, w, &resp)
	if !resp.IsBookmarked || resp.BookmarkCount != 1 {
		t.Errorf("expected bookmarked with count 1, got %+v", resp)
	}

	var list struct {
		Items []models.Bookmark `json:"items"`
		Total int64             `json:"total"`
	}
	lw := bob.do(http.MethodGet, "/api/bookmarks", nil)
	decode(t, lw, &list)
	if list.Total != 1 {
		t.Errorf("expected 1 bookmark in the list, got %d", list.Total)
	}

	// alice has none
	lw = alice.do(http.MethodGet, "/api/bookmarks", nil)
	decode(t, lw, &list)
	if list.Total != 0 {
		t.Errorf("expected empty list for alice, got %d", list.Total)
	}
}

func TestEngagementCountsOnDetail(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")
	bob := signup(t, ts, "bob")

	sid := createSnippet(t, alice, "counted", "public")
	bob.do(http.MethodPost, "/api/content/snippet/"+sid+"/like", nil)
	postComment(t, bob, "snippet", sid, "nice", "")

	var view struct {
		LikeCount    int64 `json:"like_count"`
		CommentCount int64 `json:"comment_count"`
		IsLiked      bool  `json:"is_liked"`
	}

	w := bob.do(http.MethodGet, "/api/snippets/"+sid, nil)
	decode(t, w, &view)
	if view.LikeCount != 1 || view.CommentCount != 1 || !view.IsLiked {
		t.Errorf("unexpected engagement for bob: %+v", view)
	}

	// a guest sees the counts but no personal edges
	w = guest(t, ts).do(http.MethodGet, "/api/snippets/"+sid, nil)
	decode(t, w, &view)
	if view.LikeCount != 1 || view.IsLiked {
		t.Errorf("unexpected engagement for guest: %+v", view)
	}
}
