package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codenest/internal/db"
	"codenest/internal/middleware"
	"codenest/internal/models"
	"codenest/internal/services"
	"codenest/internal/utils"
	"codenest/internal/ws"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testServer struct {
	db     *gorm.DB
	engine *gin.Engine
	cache  *utils.Cache
}

// newTestServer wires the full handler stack against an in-memory sqlite
// database, one per test.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection so every goroutine sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run()
	notifier := services.NewNotifier(conn, hub)
	cache := utils.NewCache(64)

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("codenest_session", store))
	r.Use(middleware.LoadUser(conn))

	authHandler := NewAuthHandler(conn)
	userHandler := NewUserHandler(conn)
	snippetHandler := NewSnippetHandler(conn, notifier, cache)
	docHandler := NewDocHandler(conn, notifier)
	bugHandler := NewBugHandler(conn, notifier)
	commentHandler := NewCommentHandler(conn, notifier)
	likeHandler := NewLikeHandler(conn)
	bookmarkHandler := NewBookmarkHandler(conn)
	followHandler := NewFollowHandler(conn, notifier, cache)
	moderationHandler := NewModerationHandler(conn, cache)
	notificationHandler := NewNotificationHandler(conn)
	searchHandler := NewSearchHandler(conn)

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/logout", authHandler.Logout)

	api := r.Group("/api")
	{
		api.GET("/snippets", snippetHandler.List)
		api.GET("/snippets/:sid", snippetHandler.Get)
		api.GET("/docs", docHandler.List)
		api.GET("/docs/:did", docHandler.Get)
		api.GET("/bugs", bugHandler.List)
		api.GET("/bugs/:bid", bugHandler.Get)
		api.GET("/content/:kind/:id/comments", commentHandler.List)
		api.GET("/search", searchHandler.Search)
		api.GET("/users/:id", userHandler.Profile)
		api.GET("/users/:id/followers", followHandler.Followers)
		api.GET("/users/:id/following", followHandler.Following)

		authorized := api.Group("")
		authorized.Use(middleware.AuthRequired())
		{
			authorized.GET("/me", authHandler.Me)
			authorized.PUT("/me/settings", userHandler.UpdateSettings)
			authorized.GET("/me/preferences", userHandler.Preferences)
			authorized.PUT("/me/preferences", userHandler.UpdatePreferences)

			authorized.POST("/snippets", snippetHandler.Create)
			authorized.PUT("/snippets/:sid", snippetHandler.Update)
			authorized.DELETE("/snippets/:sid", snippetHandler.Delete)

			authorized.POST("/docs", docHandler.Create)
			authorized.PUT("/docs/:did", docHandler.Update)
			authorized.DELETE("/docs/:did", docHandler.Delete)

			authorized.POST("/bugs", bugHandler.Create)
			authorized.PUT("/bugs/:bid", bugHandler.Update)
			authorized.DELETE("/bugs/:bid", bugHandler.Delete)

			authorized.POST("/comments", commentHandler.Create)
			authorized.PUT("/comments/:cid", commentHandler.Update)
			authorized.DELETE("/comments/:cid", commentHandler.Delete)

			authorized.POST("/content/:kind/:id/like", likeHandler.Toggle)
			authorized.POST("/content/:kind/:id/bookmark", bookmarkHandler.Toggle)
			authorized.GET("/bookmarks", bookmarkHandler.List)

			authorized.POST("/follows/:id/toggle", followHandler.Toggle)
			authorized.GET("/follows/suggestions", followHandler.Suggestions)
			authorized.POST("/blocks/:id/toggle", moderationHandler.ToggleBlock)
			authorized.GET("/blocks", moderationHandler.ListBlocks)
			authorized.POST("/reports", moderationHandler.CreateReport)

			authorized.GET("/notifications", notificationHandler.List)
			authorized.POST("/notifications/:id/read", notificationHandler.MarkRead)
			authorized.POST("/notifications/read-all", notificationHandler.MarkAllRead)
			authorized.DELETE("/notifications/:id", notificationHandler.Delete)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AdminRequired())
		{
			admin.GET("/reports", moderationHandler.ListReports)
			admin.PATCH("/reports/:id", moderationHandler.UpdateReport)
		}
	}

	return &testServer{db: conn, engine: r, cache: cache}
}

// testClient carries a session cookie across requests.
type testClient struct {
	t       *testing.T
	ts      *testServer
	cookies []*http.Cookie
	userID  uint
}

func (c *testClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.ts.engine.ServeHTTP(w, req)
	if cks := w.Result().Cookies(); len(cks) > 0 {
		c.cookies = cks
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// signup registers a fresh account and returns a logged-in client.
func signup(t *testing.T, ts *testServer, name string) *testClient {
	t.Helper()
	c := &testClient{t: t, ts: ts}
	w := c.do(http.MethodPost, "/auth/register", gin.H{
		"username": name,
		"email":    name + "@example.com",
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d body %s", name, w.Code, w.Body.String())
	}
	var user models.User
	decode(t, w, &user)
	c.userID = user.ID
	return c
}

// guest returns a client without a session.
func guest(t *testing.T, ts *testServer) *testClient {
	return &testClient{t: t, ts: ts}
}

// promote flips an account to the admin role directly in the database.
func promote(t *testing.T, ts *testServer, userID uint) {
	t.Helper()
	if err := ts.db.Model(&models.User{}).Where("id = ?", userID).
		Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}
}

// createSnippet posts one snippet and returns its public id.
func createSnippet(t *testing.T, c *testClient, title, visibility string) string {
	t.Helper()
	w := c.do(http.MethodPost, "/api/snippets", gin.H{
		"title":      title,
		"code":       "fmt.Println(\"hi\")",
		"language":   "go",
		"visibility": visibility,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create snippet: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	decode(t, w, &resp)
	return resp.ID
}

// waitFor polls until the condition holds, for asserts against async side
// effects.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
