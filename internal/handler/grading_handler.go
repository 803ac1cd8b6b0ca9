package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/service"
	"github.com/noah-isme/lynx-api/internal/utils"
)

// GradingHandler lets teachers review and grade submissions of their classes.
type GradingHandler struct {
	service   service.GradingService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGradingHandler constructs the grading handler.
func NewGradingHandler(service service.GradingService, validator *validator.Validate, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register binds the grading routes.
func (h *GradingHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Patch("/:id/grade", h.grade)
}

func (h *GradingHandler) list(c *fiber.Ctx) error {
	teacher, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var filter dto.SubmissionFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validator.Struct(filter); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid query parameters", validationDetails(err))
	}

	items, err := h.service.List(requestContext(c), teacher, filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, items, "submissions retrieved", fiber.Map{"count": len(items)})
}

func (h *GradingHandler) grade(c *fiber.Ctx) error {
	teacher, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.GradeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	graded, err := h.service.Grade(requestContext(c), teacher, c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", graded)
}

func (h *GradingHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid grade payload", validationDetails(err))
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrNotClassOwner):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("grading request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
