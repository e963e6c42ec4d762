package router

import (
	"fmt"

	"myblog/internal/handlers"
	"myblog/internal/middleware"
	"myblog/web"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "myblog_session"

// New builds the engine with sessions, templates, middleware and routes.
func New(app *handlers.App) (*gin.Engine, error) {
	r := gin.New()
	r.Use(middleware.Recovery(app.Log))
	r.Use(middleware.Logger(app.Log))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	store := cookie.NewStore([]byte(app.Config.Server.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 14 * 24 * 60 * 60, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))

	renderer, err := web.Renderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	r.HTMLRender = renderer

	r.Use(middleware.LoadUser())
	RegisterRoutes(r, app)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, app *handlers.App) {
	// Handlers
	authHandler := handlers.NewAuthHandler(app)
	blogHandler := handlers.NewBlogHandler(app)
	commentHandler := handlers.NewCommentHandler(app)
	ratingHandler := handlers.NewRatingHandler(app)
	keywordHandler := handlers.NewKeywordHandler(app)
	notificationHandler := handlers.NewNotificationHandler(app)

	// 公共路由 (Public Routes)
	r.GET("/", blogHandler.List)
	r.GET("/blog/:slug/", blogHandler.Detail)

	// GET 用于登录后回放暂存的提交
	r.GET("/comment/", commentHandler.Post)
	r.POST("/comment/", commentHandler.Post)
	r.GET("/rating/", ratingHandler.Post)
	r.POST("/rating/", ratingHandler.Post)

	r.GET("/accounts/login/", authHandler.ShowLogin)
	r.POST("/accounts/login/", authHandler.Login)
	r.GET("/accounts/logout/", authHandler.Logout)

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired(app.Config.LoginURL))
	{
		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/notifications/:id/read", notificationHandler.Read)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)
	}

	// 管理后台 (Admin)
	admin := r.Group("/admin")
	admin.Use(middleware.StaffRequired(app.Config.LoginURL))
	{
		admin.POST("/keywords_submit/", keywordHandler.Submit)
		admin.GET("/keywords/", keywordHandler.Choices)
		admin.POST("/blog/posts/:id/keywords", keywordHandler.AssignPost)
	}
}
