package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorlens/creatorlens-go/internal/discovery"
	"github.com/creatorlens/creatorlens-go/internal/stream"
	"github.com/creatorlens/creatorlens-go/pkg/errors"
)

// DiscoveryHandler serves the streaming discovery search.
type DiscoveryHandler struct {
	orchestrator *discovery.Orchestrator
	logger       *zap.Logger
}

func NewDiscoveryHandler(orchestrator *discovery.Orchestrator, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{orchestrator: orchestrator, logger: logger}
}

// Search streams discovery results as newline-delimited JSON. Errors before
// the first byte use a plain JSON error body; after that they arrive as an
// error event on the stream.
func (h *DiscoveryHandler) Search(c *gin.Context) {
	var req discovery.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, errors.CodeValidation, err)
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	w := stream.NewWriter(c.Writer)
	h.orchestrator.Search(c.Request.Context(), &req, w)
}
