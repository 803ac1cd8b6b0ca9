package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/service"
	"github.com/noah-isme/lynx-api/internal/utils"
)

// ClassHandler serves class management for teachers and class membership for students.
type ClassHandler struct {
	service service.ClassService
	logger  zerolog.Logger
}

// NewClassHandler constructs a class handler.
func NewClassHandler(service service.ClassService, logger zerolog.Logger) *ClassHandler {
	return &ClassHandler{
		service: service,
		logger:  logger.With().Str("component", "class_handler").Logger(),
	}
}

// RegisterStudent binds the student class routes.
func (h *ClassHandler) RegisterStudent(router fiber.Router) {
	router.Get("", h.listJoined)
	router.Post("/join", h.join)
}

// RegisterTeacher binds the teacher class routes.
func (h *ClassHandler) RegisterTeacher(router fiber.Router) {
	router.Get("", h.listOwned)
	router.Post("", h.create)
	router.Get("/:id", h.detail)
}

func (h *ClassHandler) listJoined(c *fiber.Ctx) error {
	studentID := userIDStringFromContext(c)
	if studentID == "" {
		return unauthorized(c)
	}

	classes, err := h.service.ListForStudent(requestContext(c), studentID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *ClassHandler) join(c *fiber.Ctx) error {
	student, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.JoinClassRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.service.Join(requestContext(c), student, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "class joined", class)
}

func (h *ClassHandler) listOwned(c *fiber.Ctx) error {
	teacherID := userIDStringFromContext(c)
	if teacherID == "" {
		return unauthorized(c)
	}

	classes, err := h.service.ListForTeacher(requestContext(c), teacherID)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "classes retrieved", classes)
}

func (h *ClassHandler) create(c *fiber.Ctx) error {
	teacher, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.ClassCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	class, err := h.service.Create(requestContext(c), teacher, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "class created", class)
}

func (h *ClassHandler) detail(c *fiber.Ctx) error {
	teacher, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	detail, err := h.service.Detail(requestContext(c), teacher, c.Params("id"))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "class retrieved", detail)
}

func (h *ClassHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "invalid class payload", validationDetails(err))
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrNotClassOwner):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAlreadyJoined):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("class request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
