package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// ChatRoleUser marks messages typed by the student.
	ChatRoleUser = "user"
	// ChatRoleModel marks replies produced by the AI tutor.
	ChatRoleModel = "model"
)

// ChatRoom is one AI tutoring session. Its id doubles as the session id sent upstream.
type ChatRoom struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	UserID      string    `gorm:"size:64;index;not null" json:"user_id"`
	Title       string    `gorm:"size:255" json:"title"`
	LastUpdated time.Time `gorm:"index" json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatMessage is a single message within a chat room.
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	RoomID    string    `gorm:"size:64;index;not null" json:"room_id"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	Content   string    `gorm:"type:text" json:"content"`
	Type      string    `gorm:"size:32;default:text" json:"type"`
	FileName  string    `gorm:"size:255" json:"file_name"`
	MimeType  string    `gorm:"size:128" json:"mime_type"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
