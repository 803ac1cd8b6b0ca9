package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/middleware"
	"github.com/noah-isme/lynx-api/internal/service"
)

// LiveHandler upgrades students to the live assignment board stream.
type LiveHandler struct {
	service service.LiveService
	logger  zerolog.Logger
}

// NewLiveHandler creates a live board handler.
func NewLiveHandler(service service.LiveService, logger zerolog.Logger) *LiveHandler {
	return &LiveHandler{
		service: service,
		logger:  logger.With().Str("component", "live_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
func (h *LiveHandler) Register(router fiber.Router) {
	router.Use("/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("correlation_id", middleware.GetCorrelationID(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/live", websocket.New(h.handleConnection))
}

func (h *LiveHandler) handleConnection(conn *websocket.Conn) {
	studentID := websocketUserID(conn)
	if studentID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "user id missing"))
		_ = conn.Close()
		return
	}

	correlation, _ := conn.Locals("correlation_id").(string)

	// The request context is recycled once the upgrade completes.
	opts := service.LiveConnectionOptions{
		StudentID:     studentID,
		CorrelationID: correlation,
		Context:       middleware.ContextWithCorrelation(context.Background(), correlation),
	}

	h.logger.Info().Str("student_id", studentID).Str("correlation_id", correlation).Msg("live board connected")
	h.service.ServeBoard(conn, opts)
	h.logger.Info().Str("student_id", studentID).Msg("live board disconnected")
}

func websocketUserID(conn *websocket.Conn) string {
	if value := conn.Locals("user_id"); value != nil {
		switch v := value.(type) {
		case string:
			return strings.TrimSpace(v)
		case int:
			return fmt.Sprintf("%d", v)
		}
	}
	return ""
}
