package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/service"
	"github.com/noah-isme/lynx-api/internal/utils"
)

// StudentDashboardHandler exposes the student dashboard and grade summary.
type StudentDashboardHandler struct {
	dashboard service.StudentDashboardService
	grades    service.GradesService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentDashboardHandler creates a new handler instance.
func NewStudentDashboardHandler(dashboard service.StudentDashboardService, grades service.GradesService, validator *validator.Validate, logger zerolog.Logger) *StudentDashboardHandler {
	return &StudentDashboardHandler{
		dashboard: dashboard,
		grades:    grades,
		validator: validator,
		logger:    logger.With().Str("component", "student_dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoints.
func (h *StudentDashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.getDashboard)
	router.Get("/grades", h.getGrades)
}

func (h *StudentDashboardHandler) getDashboard(c *fiber.Ctx) error {
	studentID := userIDStringFromContext(c)
	if studentID == "" {
		return unauthorized(c)
	}

	var query dto.DashboardQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validator.Struct(query); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid query parameters", validationDetails(err))
	}

	dashboard, err := h.dashboard.GetDashboard(requestContext(c), studentID, query)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("student_id", studentID).Msg("failed to load dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	message := "dashboard retrieved"
	if len(dashboard.Failures) > 0 {
		message = "dashboard partially retrieved"
	}
	return utils.SendSuccess(c, message, dashboard)
}

func (h *StudentDashboardHandler) getGrades(c *fiber.Ctx) error {
	studentID := userIDStringFromContext(c)
	if studentID == "" {
		return unauthorized(c)
	}

	grades, err := h.grades.Grades(requestContext(c), studentID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Str("student_id", studentID).Msg("failed to load grades")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load grades")
	}

	return utils.SendSuccess(c, "grades retrieved", grades)
}
