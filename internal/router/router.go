package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/lynx-api/internal/config"
	"github.com/noah-isme/lynx-api/internal/handler"
	"github.com/noah-isme/lynx-api/internal/middleware"
	"github.com/noah-isme/lynx-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentDashboardHandler *handler.StudentDashboardHandler
	AssignmentHandler       *handler.AssignmentHandler
	SubmissionHandler       *handler.SubmissionHandler
	ClassHandler            *handler.ClassHandler
	AnnouncementHandler     *handler.AnnouncementHandler
	GradingHandler          *handler.GradingHandler
	UploadHandler           *handler.UploadHandler
	ProfileHandler          *handler.ProfileHandler
	AnalysisHandler         *handler.AnalysisHandler
	ChatHandler             *handler.ChatHandler
	LiveHandler             *handler.LiveHandler
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	secured := api.Group("", jwtMiddleware)
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(secured)
	}

	student := secured.Group("/student", middleware.RequireRole(middleware.AuthRoleStudent))
	if deps.StudentDashboardHandler != nil {
		deps.StudentDashboardHandler.Register(student)
	}
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(student.Group("/assignments"))
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(student.Group("/submissions", middleware.RateLimit("submissions", 10, 0)))
	}
	if deps.ClassHandler != nil {
		deps.ClassHandler.RegisterStudent(student.Group("/classes"))
	}
	if deps.AnnouncementHandler != nil {
		deps.AnnouncementHandler.RegisterStudent(student.Group("/announcements"))
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.Register(student)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.Register(student.Group("/chat", middleware.RateLimit("chat", 5, 0)))
	}
	if deps.LiveHandler != nil {
		deps.LiveHandler.Register(student)
	}

	teacher := secured.Group("/teacher", teacherOnly())
	if deps.ClassHandler != nil {
		deps.ClassHandler.RegisterTeacher(teacher.Group("/classes"))
	}
	if deps.AnnouncementHandler != nil {
		deps.AnnouncementHandler.RegisterTeacher(teacher.Group("/announcements"))
	}
	if deps.GradingHandler != nil {
		deps.GradingHandler.Register(teacher.Group("/submissions"))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(teacher.Group("/uploads"))
	}
}

// teacherOnly admits teachers and admins.
func teacherOnly() fiber.Handler {
	return middleware.WithAuth(func(c *fiber.Ctx) error {
		return c.Next()
	}, middleware.AuthOptions{Role: middleware.AuthRoleTeacher})
}
