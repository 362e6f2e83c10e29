package router

import (
	"github.com/avkrapivin/top-me-up-sub000/internal/handlers"
	"github.com/avkrapivin/top-me-up-sub000/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionName = "topmeup_session"

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	List         *handlers.ListHandler
	Comment      *handlers.CommentHandler
	Notification *handlers.NotificationHandler
	Search       *handlers.SearchHandler
	Share        *handlers.ShareHandler
	Health       *handlers.HealthHandler
}

type Options struct {
	SessionSecret string
	SecureCookies bool
	Users         middleware.UserLoader
	Log           *zap.Logger
}

// New builds the engine with middleware, templates and every route.
func New(opts Options, h Handlers) (*gin.Engine, error) {
	handlers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(middleware.LoadUser(opts.Users, opts.Log))
	r.Use(middleware.RequestLogger(opts.Log))

	renderer, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	RegisterRoutes(r, h)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/healthz", h.Health.Check)
	r.GET("/share/lists/:slug", h.Share.Page)

	api := r.Group("/api")

	// Public
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", h.Auth.Logout)

	api.GET("/lists", h.List.Index)
	api.GET("/lists/:id", h.List.Show)
	api.GET("/lists/:id/comments", h.Comment.Thread)
	api.GET("/lists/:id/preview.png", h.Share.Preview)
	api.GET("/users/:id", h.User.Profile)
	api.GET("/users/:id/lists", h.List.ByUser)
	api.GET("/search/:category", h.Search.Search)

	// Signed in
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/auth/me", h.Auth.Me)
		authorized.PUT("/users/me", h.User.UpdateSettings)

		authorized.POST("/lists", h.List.Create)
		authorized.PUT("/lists/:id", h.List.Update)
		authorized.DELETE("/lists/:id", h.List.Delete)

		authorized.POST("/lists/:id/comments", h.Comment.Create)
		authorized.PUT("/comments/:id", h.Comment.Edit)
		authorized.DELETE("/comments/:id", h.Comment.Delete)
		authorized.POST("/comments/:id/like", h.Comment.Like)
		authorized.DELETE("/comments/:id/like", h.Comment.Unlike)

		authorized.GET("/notifications", h.Notification.List)
		authorized.POST("/notifications/read-all", h.Notification.ReadAll)
		authorized.POST("/notifications/:id/read", h.Notification.Read)
	}
}
