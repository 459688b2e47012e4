package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/vidshare/backend/internal/middleware"
	"github.com/vidshare/backend/internal/service"
)

// RouterConfig carries what NewRouter needs to mount the API.
type RouterConfig struct {
	Services       *service.Services
	RateLimiter    *middleware.RateLimiter
	HealthChecks   map[string]Pinger
	AllowedOrigins []string
	MaxUploadBytes int64
	IsProduction   bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	authHandler := NewAuthHandler(cfg.Services.Auth, cfg.MaxUploadBytes)
	channelHandler := NewChannelHandler(cfg.Services.Channels, cfg.MaxUploadBytes)
	videoHandler := NewVideoHandler(cfg.Services.Videos, cfg.MaxUploadBytes)
	commentHandler := NewCommentHandler(cfg.Services.Comments)
	healthHandler := NewHealthHandler(cfg.HealthChecks)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.Recovery(cfg.IsProduction))
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.NoRoute(middleware.NotFound)

	requireAuth := middleware.AuthMiddleware(cfg.Services.Auth)
	limit := func(action string) gin.HandlerFunc {
		return middleware.RateLimitMiddleware(cfg.RateLimiter, action)
	}

	router.GET("/health", healthHandler.Health)

	// Auth
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", limit("register"), authHandler.Register)
		authRoutes.POST("/login", limit("login"), authHandler.Login)
		authRoutes.GET("/me", requireAuth, authHandler.GetMe)
	}

	// Channels
	channelRoutes := router.Group("/channels")
	{
		channelRoutes.POST("", requireAuth, limit("write"), channelHandler.CreateChannel)
		channelRoutes.GET("/:id", channelHandler.GetChannel)
		channelRoutes.PUT("/:id", requireAuth, limit("write"), channelHandler.UpdateChannel)
		channelRoutes.DELETE("/:id", requireAuth, limit("write"), channelHandler.DeleteChannel)
		channelRoutes.POST("/:id/subscribe", requireAuth, limit("write"), channelHandler.ToggleSubscription)
	}

	// Videos
	videoRoutes := router.Group("/videos")
	{
		videoRoutes.GET("", videoHandler.GetVideos)
		videoRoutes.GET("/search", videoHandler.Search)
		videoRoutes.GET("/user", requireAuth, videoHandler.GetMyVideos)
		videoRoutes.POST("/upload", requireAuth, limit("write"), videoHandler.Upload)
		videoRoutes.GET("/:id", videoHandler.GetVideo)
		videoRoutes.PUT("/:id", requireAuth, limit("write"), videoHandler.UpdateVideo)
		videoRoutes.DELETE("/:id", requireAuth, limit("write"), videoHandler.DeleteVideo)
		videoRoutes.POST("/:id/like", requireAuth, limit("write"), videoHandler.Like)
		videoRoutes.POST("/:id/dislike", requireAuth, limit("write"), videoHandler.Dislike)
		videoRoutes.PATCH("/:id/views", videoHandler.IncreaseViews)

		// Comments
		videoRoutes.POST("/:id/comments", requireAuth, limit("write"), commentHandler.AddComment)
		videoRoutes.GET("/:id/comments", commentHandler.GetComments)
		videoRoutes.PUT("/:id/comments/:commentId", requireAuth, limit("write"), commentHandler.EditComment)
		videoRoutes.DELETE("/:id/comments/:commentId", requireAuth, limit("write"), commentHandler.DeleteComment)
	}

	return router
}
