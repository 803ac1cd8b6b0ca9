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

// AssignmentHandler serves the student assignment board.
type AssignmentHandler struct {
	service   service.AssignmentBoardService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssignmentHandler constructs a new assignment handler.
func NewAssignmentHandler(service service.AssignmentBoardService, validator *validator.Validate, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register binds the assignment routes.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("/board", h.board)
	router.Get("", h.list)
}

func (h *AssignmentHandler) board(c *fiber.Ctx) error {
	studentID := userIDStringFromContext(c)
	if studentID == "" {
		return unauthorized(c)
	}

	board, err := h.service.Board(requestContext(c), studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "assignment board retrieved", board)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	studentID := userIDStringFromContext(c)
	if studentID == "" {
		return unauthorized(c)
	}

	var query dto.AssignmentListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validator.Struct(query); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid query parameters", validationDetails(err))
	}

	cards, err := h.service.List(requestContext(c), studentID, query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.OK(c, cards, "assignments retrieved", fiber.Map{"count": len(cards)})
}

func (h *AssignmentHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to resolve assignments")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load assignments")
	}
}
