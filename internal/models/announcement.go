package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Announcement is a message a teacher posts to one class.
type Announcement struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	ClassID   string    `gorm:"size:64;index;not null" json:"class_id"`
	AuthorID  string    `gorm:"size:64" json:"author_id"`
	Title     string    `gorm:"size:255" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	FileURL   string    `gorm:"size:512" json:"file_url"`
	FileName  string    `gorm:"size:255" json:"file_name"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (a *Announcement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
