package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorlens/creatorlens-go/internal/handlers"
)

type RouterConfig struct {
	DiscoveryHandler   *handlers.DiscoveryHandler
	CompetitorsHandler *handlers.CompetitorsHandler
	HealthHandler      *handlers.HealthHandler
	AllowedOrigins     []string
	Logger             *zap.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(cfg.Logger))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-User-Id", "X-Request-Id"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.Check)

	api := router.Group("/api")
	{
		api.POST("/discovery/search", cfg.DiscoveryHandler.Search)
		api.GET("/channels/:channelId/competitors", cfg.CompetitorsHandler.List)
	}

	return router
}
