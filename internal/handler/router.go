package handler

import (
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/config"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/middleware"
	"github.com/anajbsouza/projeto13-batepapo-uol-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func NewRouter(
	handlers *Handlers,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))

	router.GET("/health", handlers.Health.Check)

	chat := router.Group("")
	chat.Use(rateLimitMiddleware.Limit(), middleware.UserMiddleware())
	{
		chat.POST("/participants", handlers.Participant.Register)
		chat.GET("/participants", handlers.Participant.List)

		chat.POST("/messages", handlers.Message.Send)
		chat.GET("/messages", handlers.Message.List)

		chat.POST("/status", handlers.Status.Heartbeat)
	}

	return router
}
