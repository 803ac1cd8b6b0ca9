package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/service"
	"github.com/noah-isme/lynx-api/internal/utils"
)

// AnalysisHandler serves the AI learning analysis card.
type AnalysisHandler struct {
	service service.AnalysisService
	logger  zerolog.Logger
}

// NewAnalysisHandler constructs the analysis handler.
func NewAnalysisHandler(service service.AnalysisService, logger zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger.With().Str("component", "analysis_handler").Logger(),
	}
}

// Register binds the analysis route.
func (h *AnalysisHandler) Register(router fiber.Router) {
	router.Get("/analysis", h.analyze)
}

// analyze always answers 200; a failed analysis is reported inside the payload so
// the dashboard can render its error card.
func (h *AnalysisHandler) analyze(c *fiber.Ctx) error {
	student, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	refresh := c.QueryBool("refresh", false)
	result := h.service.Analyze(requestContext(c), student, refresh)
	if result.Error != "" {
		return utils.SendSuccess(c, result.Error, result)
	}

	return utils.SendSuccess(c, "analysis retrieved", result)
}
