package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/service"
	"github.com/noah-isme/lynx-api/internal/utils"
)

// AnnouncementHandler exposes class announcements.
type AnnouncementHandler struct {
	service service.AnnouncementService
	logger  zerolog.Logger
}

// NewAnnouncementHandler builds an announcement handler.
func NewAnnouncementHandler(service service.AnnouncementService, logger zerolog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		service: service,
		logger:  logger.With().Str("component", "announcement_handler").Logger(),
	}
}

// RegisterStudent registers the student feed.
func (h *AnnouncementHandler) RegisterStudent(router fiber.Router) {
	router.Get("", h.list)
}

// RegisterTeacher registers announcement publishing.
func (h *AnnouncementHandler) RegisterTeacher(router fiber.Router) {
	router.Post("", h.create)
}

func (h *AnnouncementHandler) list(c *fiber.Ctx) error {
	studentID := userIDStringFromContext(c)
	if studentID == "" {
		return unauthorized(c)
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil || limit < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	items, err := h.service.ListForStudent(requestContext(c), studentID, limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list announcements")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load announcements")
	}

	return utils.SendSuccess(c, "announcements retrieved", items)
}

func (h *AnnouncementHandler) create(c *fiber.Ctx) error {
	teacherID := userIDStringFromContext(c)
	if teacherID == "" {
		return unauthorized(c)
	}

	var payload dto.AnnouncementCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.service.Create(requestContext(c), teacherID, payload)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.Fail(c, fiber.StatusBadRequest, "invalid announcement payload", validationDetails(err))
		case errors.Is(err, service.ErrClassNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "class not found")
		case errors.Is(err, service.ErrNotClassOwner):
			return utils.SendError(c, fiber.StatusForbidden, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create announcement")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "announcement created", item)
}
