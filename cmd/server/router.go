package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/auth"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/config"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/hub"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/interfaces/rest/v1/handler"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/interfaces/sse"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/interfaces/websocket"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/repository"
)

func InitRouter(
	cfg *config.Config,
	log logger.Logger,
	registry *prometheus.Registry,
	hubInstance *hub.Hub,
	repo *repository.Repository,
	authSvc *auth.Service,
) http.Handler {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	rootGroup := router.Group("")

	rootGroup.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "healthy",
			"connections":   hubInstance.ConnectionCount(),
			"subscriptions": hubInstance.SubscriptionCount(),
		})
	})

	rootGroup.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	authHandler := handler.NewAuthHandler(repo, authSvc, log)
	pollHandler := handler.NewPollHandler(repo, hubInstance, log)
	voteHandler := handler.NewVoteHandler(repo, hubInstance, log)

	requireAuth := handler.RequireAuth(authSvc, repo)
	optionalAuth := handler.OptionalAuth(authSvc, repo)

	apiGroup := rootGroup.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", requireAuth, authHandler.Me)
		}

		pollGroup := apiGroup.Group("/polls")
		{
			pollGroup.GET("", optionalAuth, pollHandler.List)
			pollGroup.POST("", requireAuth, pollHandler.Create)
			pollGroup.GET("/:id", optionalAuth, pollHandler.Get)
			pollGroup.PUT("/:id", requireAuth, pollHandler.Update)
			pollGroup.DELETE("/:id", requireAuth, pollHandler.Delete)
			pollGroup.POST("/:id/vote", requireAuth, voteHandler.Vote)
			pollGroup.POST("/:id/like", requireAuth, voteHandler.Like)
		}
	}

	wsOpts := hub.WebSocketOptions{
		SendBuffer:   cfg.SendBuffer,
		WriteTimeout: cfg.WriteTimeout,
		PongTimeout:  cfg.PongTimeout,
	}
	websocket.InitWebSocketRouter(log, hubInstance, wsOpts, rootGroup)
	sse.InitSSERouter(log, hubInstance, rootGroup)

	return router
}
