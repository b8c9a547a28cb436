package router

import (
	"os"

	"codenest/internal/handlers"
	"codenest/internal/middleware"
	"codenest/internal/services"
	"codenest/internal/utils"
	"codenest/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps carries everything the routes need. Nothing here is a global; main
// builds one of each and hands it over.
type Deps struct {
	DB       *gorm.DB
	Hub      *ws.Hub
	Notifier *services.Notifier
	Cache    *utils.Cache
	Limiter  *middleware.IPRateLimiter
}

func New(deps Deps) *gin.Engine {
	r := gin.Default()

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("codenest_session", store))

	corsConfig := cors.DefaultConfig()
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = []string{origin}
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middleware.LoadUser(deps.DB))

	authHandler := handlers.NewAuthHandler(deps.DB)
	userHandler := handlers.NewUserHandler(deps.DB)
	snippetHandler := handlers.NewSnippetHandler(deps.DB, deps.Notifier, deps.Cache)
	docHandler := handlers.NewDocHandler(deps.DB, deps.Notifier)
	bugHandler := handlers.NewBugHandler(deps.DB, deps.Notifier)
	commentHandler := handlers.NewCommentHandler(deps.DB, deps.Notifier)
	likeHandler := handlers.NewLikeHandler(deps.DB)
	bookmarkHandler := handlers.NewBookmarkHandler(deps.DB)
	followHandler := handlers.NewFollowHandler(deps.DB, deps.Notifier, deps.Cache)
	moderationHandler := handlers.NewModerationHandler(deps.DB, deps.Cache)
	notificationHandler := handlers.NewNotificationHandler(deps.DB)
	searchHandler := handlers.NewSearchHandler(deps.DB)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r.GET("/healthz", healthHandler.Health)

	r.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(deps.Hub, c.Writer, c.Request)
	})

	r.POST("/auth/register", middleware.RateLimit(deps.Limiter), authHandler.Register)
	r.POST("/auth/login", middleware.RateLimit(deps.Limiter), authHandler.Login)
	r.POST("/auth/logout", authHandler.Logout)
	r.GET("/auth/google/login", authHandler.GoogleLogin)
	r.GET("/auth/google/callback", authHandler.GoogleCallback)

	api := r.Group("/api")
	{
		// Public reads. Guests see public content only; handlers widen
		// the scope for the owner.
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

			writes := authorized.Group("")
			writes.Use(middleware.RateLimit(deps.Limiter))
			{
				writes.POST("/snippets", snippetHandler.Create)
				writes.PUT("/snippets/:sid", snippetHandler.Update)
				writes.DELETE("/snippets/:sid", snippetHandler.Delete)

				writes.POST("/docs", docHandler.Create)
				writes.PUT("/docs/:did", docHandler.Update)
				writes.DELETE("/docs/:did", docHandler.Delete)

				writes.POST("/bugs", bugHandler.Create)
				writes.PUT("/bugs/:bid", bugHandler.Update)
				writes.DELETE("/bugs/:bid", bugHandler.Delete)

				writes.POST("/comments", commentHandler.Create)
				writes.PUT("/comments/:cid", commentHandler.Update)
				writes.DELETE("/comments/:cid", commentHandler.Delete)

				writes.POST("/content/:kind/:id/like", likeHandler.Toggle)
				writes.POST("/content/:kind/:id/bookmark", bookmarkHandler.Toggle)

				writes.POST("/follows/:id/toggle", followHandler.Toggle)
				writes.POST("/blocks/:id/toggle", moderationHandler.ToggleBlock)
				writes.POST("/reports", moderationHandler.CreateReport)
			}

			authorized.GET("/bookmarks", bookmarkHandler.List)
			authorized.GET("/follows/suggestions", followHandler.Suggestions)
			authorized.GET("/blocks", moderationHandler.ListBlocks)

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

	return r
}
