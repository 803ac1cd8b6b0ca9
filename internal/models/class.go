package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Class is a teacher-owned group students join with a short code.
type Class struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Subject      string    `gorm:"size:128" json:"subject"`
	Code         string    `gorm:"size:16;uniqueIndex" json:"code"`
	TeacherID    string    `gorm:"size:64;index" json:"teacher_id"`
	TeacherName  string    `gorm:"size:255" json:"teacher_name"`
	Schedule     string    `gorm:"size:255" json:"schedule"`
	Description  string    `gorm:"type:text" json:"description"`
	ImageURL     string    `gorm:"size:512" json:"image_url"`
	StudentCount int       `gorm:"not null;default:0" json:"student_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ClassMember links a student to a joined class.
type ClassMember struct {
	ClassID     string    `gorm:"primaryKey;size:64" json:"class_id"`
	StudentID   string    `gorm:"primaryKey;size:64;index" json:"student_id"`
	StudentName string    `gorm:"size:255" json:"student_name"`
	JoinedAt    time.Time `json:"joined_at"`
}
