package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/service"
	"github.com/noah-isme/lynx-api/internal/utils"
	"github.com/noah-isme/lynx-api/pkg/ai"
)

// ChatHandler wires the AI tutor chat endpoints.
type ChatHandler struct {
	service   service.ChatService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewChatHandler creates a chat handler instance.
func NewChatHandler(service service.ChatService, validator *validator.Validate, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "chat_handler").Logger(),
	}
}

// Register binds chat routes under the provided router group.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Get("/sessions", h.sessions)
	router.Get("/sessions/:id/messages", h.messages)
	router.Post("/messages", h.send)
}

func (h *ChatHandler) sessions(c *fiber.Ctx) error {
	userID := userIDStringFromContext(c)
	if userID == "" {
		return unauthorized(c)
	}

	sessions, err := h.service.Sessions(requestContext(c), userID)
	if err != nil {
		return h.handleError(c, err, nil)
	}
	return utils.SendSuccess(c, "chat sessions", sessions)
}

func (h *ChatHandler) messages(c *fiber.Ctx) error {
	userID := userIDStringFromContext(c)
	if userID == "" {
		return unauthorized(c)
	}

	messages, err := h.service.Messages(requestContext(c), userID, c.Params("id"))
	if err != nil {
		return h.handleError(c, err, nil)
	}
	return utils.SendSuccess(c, "chat history", messages)
}

func (h *ChatHandler) send(c *fiber.Ctx) error {
	user, ok := actorFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var payload dto.ChatSendRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "invalid chat message", validationDetails(err))
	}

	var file *dto.ChatFile
	if header, err := c.FormFile("file"); err == nil {
		file, err = readChatFile(header)
		if err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "unable to read file")
		}
	}

	response, err := h.service.Send(requestContext(c), user, payload, file)
	if err != nil {
		return h.handleError(c, err, &response)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message sent", response)
}

// handleError reports a relay failure with the stored user message as details.
func (h *ChatHandler) handleError(c *fiber.Ctx, err error, partial *dto.ChatSendResponse) error {
	logger := requestLogger(h.logger, c)
	switch {
	case errors.Is(err, service.ErrChatEmptyMessage):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrChatSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, ai.ErrUnavailable), errors.Is(err, service.ErrAIUnavailable):
		logger.Warn().Err(err).Msg("tutor relay unavailable")
		var details interface{}
		if partial != nil && partial.SessionID != "" {
			details = partial
		}
		return utils.Fail(c, fiber.StatusBadGateway, "Gagal terhubung ke AI", details)
	default:
		return handleUploadError(c, logger, err)
	}
}

func readChatFile(header *multipart.FileHeader) (*dto.ChatFile, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &dto.ChatFile{
		Name:     strings.TrimSpace(header.Filename),
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	}, nil
}
