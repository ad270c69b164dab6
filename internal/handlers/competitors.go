package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/creatorlens/creatorlens-go/internal/discovery"
	"github.com/creatorlens/creatorlens-go/pkg/errors"
)

// CompetitorsHandler serves the offset-paginated competitor listing.
type CompetitorsHandler struct {
	orchestrator *discovery.Orchestrator
	logger       *zap.Logger
}

func NewCompetitorsHandler(orchestrator *discovery.Orchestrator, logger *zap.Logger) *CompetitorsHandler {
	return &CompetitorsHandler{orchestrator: orchestrator, logger: logger}
}

func (h *CompetitorsHandler) List(c *gin.Context) {
	userID := c.GetHeader("X-User-Id")
	if userID == "" {
		userID = c.Query("userId")
	}
	if userID == "" {
		RespondError(c, http.StatusBadRequest, errors.CodeValidation,
			errors.NewValidationError("userId is required", "userId", ""))
		return
	}

	// The documented offset param is "cursor"; "offset" is kept as an alias.
	offsetParam := "cursor"
	if c.Query(offsetParam) == "" && c.Query("offset") != "" {
		offsetParam = "offset"
	}
	offset, err := parseIntParam(c, offsetParam, 0)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	limit, err := parseIntParam(c, "limit", 0)
	if err != nil {
		RespondAppError(c, err)
		return
	}

	req := &discovery.ListRequest{
		UserID:    userID,
		ChannelID: c.Param("channelId"),
		Range:     c.Query("range"),
		Sort:      c.Query("sort"),
		Offset:    offset,
		Limit:     limit,
	}

	resp, err := h.orchestrator.ListCompetitors(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("competitor listing failed",
			zap.String("channel", req.ChannelID), zap.Error(err))
		RespondAppError(c, err)
		return
	}
	RespondOK(c, resp)
}

func parseIntParam(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(name+" must be an integer", name, raw)
	}
	return value, nil
}
