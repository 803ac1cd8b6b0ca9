package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/observability"
	"github.com/noah-isme/lynx-api/internal/repository"
	"github.com/noah-isme/lynx-api/pkg/ai"
)

const (
	// DefaultAttachmentMessage is sent when a student attaches a file without text.
	DefaultAttachmentMessage = "Lampiran File"
	chatSessionLimit         = 20
	chatTitleLength          = 40
)

// ChatService stores AI tutoring sessions and relays messages to the tutor backend.
type ChatService interface {
	Sessions(ctx context.Context, userID string) ([]dto.ChatSessionResponse, error)
	Messages(ctx context.Context, userID, sessionID string) ([]dto.ChatMessageResponse, error)
	Send(ctx context.Context, user Actor, payload dto.ChatSendRequest, file *dto.ChatFile) (dto.ChatSendResponse, error)
}

type chatService struct {
	repo      repository.ChatRepository
	relay     ai.ChatRelay
	maxFile   int64
	timeout   time.Duration
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewChatService creates the AI chat service.
func NewChatService(repo repository.ChatRepository, relay ai.ChatRelay, maxFileMB int, timeout time.Duration, logger zerolog.Logger) ChatService {
	if maxFileMB <= 0 {
		maxFileMB = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowElements("br")

	return &chatService{
		repo:      repo,
		relay:     relay,
		maxFile:   int64(maxFileMB) * 1024 * 1024,
		timeout:   timeout,
		sanitizer: sanitizer,
		logger:    logger.With().Str("component", "chat_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/lynx-api/internal/service/chat"),
		now:       time.Now,
	}
}

func (s *chatService) Sessions(ctx context.Context, userID string) ([]dto.ChatSessionResponse, error) {
	rooms, err := s.repo.ListRooms(ctx, userID, chatSessionLimit)
	if err != nil {
		return nil, err
	}

	sessions := make([]dto.ChatSessionResponse, 0, len(rooms))
	for _, room := range rooms {
		sessions = append(sessions, dto.ChatSessionResponse{ID: room.ID, Title: room.Title, LastUpdated: room.LastUpdated})
	}
	return sessions, nil
}

func (s *chatService) Messages(ctx context.Context, userID, sessionID string) ([]dto.ChatMessageResponse, error) {
	if _, err := s.ownedRoom(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ChatMessageResponse, 0, len(messages))
	for _, message := range messages {
		responses = append(responses, newChatMessageResponse(message))
	}
	return responses, nil
}

// Send stores the user message before relaying it. A relay failure is returned
// after the message is stored; the relay reports nothing beyond accepted or failed.
func (s *chatService) Send(ctx context.Context, user Actor, payload dto.ChatSendRequest, file *dto.ChatFile) (dto.ChatSendResponse, error) {
	text := strings.TrimSpace(s.sanitizer.Sanitize(payload.Message))
	if text == "" && file == nil {
		return dto.ChatSendResponse{}, ErrChatEmptyMessage
	}
	if text == "" {
		text = DefaultAttachmentMessage
	}

	var encoded, mimeType string
	if file != nil {
		var err error
		mimeType, err = s.checkFile(file)
		if err != nil {
			observability.ChatMessages().WithLabelValues("rejected").Inc()
			return dto.ChatSendResponse{}, err
		}
		encoded = base64.StdEncoding.EncodeToString(file.Data)
	}

	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	} else if err := s.claimSession(ctx, user.ID, sessionID); err != nil {
		return dto.ChatSendResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "chat.send", trace.WithAttributes(
		attribute.String("chat.session_id", sessionID),
		attribute.Bool("chat.has_file", file != nil),
	))
	defer span.End()

	now := s.now().UTC()
	room := models.ChatRoom{
		ID:          sessionID,
		UserID:      user.ID,
		Title:       makeExcerpt(text, chatTitleLength),
		LastUpdated: now,
		CreatedAt:   now,
	}
	if err := s.repo.UpsertRoom(ctx, &room); err != nil {
		span.RecordError(err)
		return dto.ChatSendResponse{}, err
	}

	message := models.ChatMessage{
		RoomID:    sessionID,
		Role:      models.ChatRoleUser,
		Content:   text,
		Type:      messageType(mimeType),
		MimeType:  mimeType,
		CreatedAt: now,
	}
	if file != nil {
		message.FileName = strings.TrimSpace(file.Name)
	}
	if err := s.repo.SaveMessage(ctx, &message); err != nil {
		span.RecordError(err)
		return dto.ChatSendResponse{}, err
	}

	response := dto.ChatSendResponse{SessionID: sessionID, Message: newChatMessageResponse(message)}

	if s.relay == nil {
		observability.ChatMessages().WithLabelValues("failed").Inc()
		return response, ErrAIUnavailable
	}

	relayCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.relay.Send(relayCtx, ai.ChatRequest{
		Message:    text,
		SessionID:  sessionID,
		UserID:     user.ID,
		History:    []string{},
		FileBase64: encoded,
		MimeType:   mimeType,
	})
	if err != nil {
		observability.ChatMessages().WithLabelValues("failed").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "relay failed")
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("chat relay failed")
		return response, err
	}
	observability.ChatMessages().WithLabelValues("accepted").Inc()

	if answer := strings.TrimSpace(reply.Reply); answer != "" {
		stored := models.ChatMessage{
			RoomID:    sessionID,
			Role:      models.ChatRoleModel,
			Content:   s.sanitizer.Sanitize(answer),
			Type:      "text",
			CreatedAt: s.now().UTC(),
		}
		if err := s.repo.SaveMessage(ctx, &stored); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to store tutor reply")
		} else {
			replyResponse := newChatMessageResponse(stored)
			response.Reply = &replyResponse
			room.LastUpdated = stored.CreatedAt
			if err := s.repo.UpsertRoom(ctx, &room); err != nil {
				s.logger.Warn().Err(err).Msg("failed to bump chat session")
			}
		}
	}

	return response, nil
}

func (s *chatService) checkFile(file *dto.ChatFile) (string, error) {
	if int64(len(file.Data)) > s.maxFile {
		return "", ErrUploadTooLarge
	}
	if len(file.Data) == 0 {
		return "", ErrUploadMissing
	}

	detected := normalizeMime(mimetype.Detect(file.Data).String())
	if !strings.HasPrefix(detected, "image/") && detected != "application/pdf" {
		return "", ErrUploadTypeNotAllowed
	}
	return detected, nil
}

func (s *chatService) ownedRoom(ctx context.Context, userID, sessionID string) (models.ChatRoom, error) {
	room, err := s.repo.GetRoom(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return models.ChatRoom{}, ErrChatSessionNotFound
		}
		return models.ChatRoom{}, fmt.Errorf("load chat session: %w", err)
	}
	if room.UserID != userID {
		return models.ChatRoom{}, ErrChatSessionNotFound
	}
	return room, nil
}

// claimSession allows a client-chosen id for a new session but refuses ids owned
// by another user.
func (s *chatService) claimSession(ctx context.Context, userID, sessionID string) error {
	room, err := s.repo.GetRoom(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("load chat session: %w", err)
	}
	if room.UserID != userID {
		return ErrChatSessionNotFound
	}
	return nil
}

func messageType(mimeType string) string {
	switch {
	case mimeType == "":
		return "text"
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	default:
		return "file"
	}
}

func newChatMessageResponse(message models.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		ID:        message.ID,
		SessionID: message.RoomID,
		Role:      message.Role,
		Content:   message.Content,
		Type:      message.Type,
		FileName:  message.FileName,
		MimeType:  message.MimeType,
		CreatedAt: message.CreatedAt,
	}
}
