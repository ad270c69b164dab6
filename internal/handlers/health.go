package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/creatorlens/creatorlens-go/internal/service/cache"
	"github.com/creatorlens/creatorlens-go/internal/service/database"
)

// HealthHandler reports liveness plus the state of the two backing stores.
type HealthHandler struct {
	cache    *cache.CacheService
	postgres *database.PostgresService
	started  time.Time
}

func NewHealthHandler(cacheSvc *cache.CacheService, postgres *database.PostgresService) *HealthHandler {
	return &HealthHandler{cache: cacheSvc, postgres: postgres, started: time.Now()}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	redisOK := h.cache != nil && h.cache.IsConnected(ctx)
	postgresOK := h.postgres != nil && h.postgres.Ping(ctx) == nil

	status := http.StatusOK
	state := "ok"
	if !redisOK || !postgresOK {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	c.JSON(status, gin.H{
		"status":   state,
		"redis":    redisOK,
		"postgres": postgresOK,
		"uptime":   time.Since(h.started).Round(time.Second).String(),
	})
}
