package dto

import (
	"time"

	"github.com/noah-isme/lynx-api/pkg/ai"
)

// AnalysisResponse holds the learning analysis or, when it failed, a message. Analysis
// is null whenever Error is set.
type AnalysisResponse struct {
	Analysis    *ai.Analysis `json:"analysis"`
	Error       string       `json:"error,omitempty"`
	Cached      bool         `json:"cached"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ChatSendRequest is a student message to the AI tutor. File fields come from the
// multipart form.
type ChatSendRequest struct {
	Message   string `json:"message" form:"message" validate:"omitempty,max=4000"`
	SessionID string `json:"session_id" form:"session_id" validate:"omitempty,uuid"`
}

// ChatFile is an optional attachment of a chat message.
type ChatFile struct {
	Name     string
	MimeType string
	Data     []byte
}

// ChatSessionResponse lists a tutoring session in the sidebar.
type ChatSessionResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	LastUpdated time.Time `json:"last_updated"`
}

// ChatMessageResponse is one message of a session.
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	FileName  string    `json:"file_name,omitempty"`
	MimeType  string    `json:"mime_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSendResponse reports the stored user message and, when the backend answered
// inline, the stored reply.
type ChatSendResponse struct {
	SessionID string               `json:"session_id"`
	Message   ChatMessageResponse  `json:"message"`
	Reply     *ChatMessageResponse `json:"reply"`
}
