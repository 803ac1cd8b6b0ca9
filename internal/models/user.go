package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// RoleStudent identifies learners.
	RoleStudent = "student"
	// RoleTeacher identifies class owners.
	RoleTeacher = "teacher"
)

// DefaultGradeLevel is assumed for profiles that never filled in a grade.
const DefaultGradeLevel = "12 SMA"

// User is a profile document keyed by the auth subject.
type User struct {
	ID         string     `gorm:"primaryKey;size:64" json:"id"`
	Name       string     `gorm:"size:255" json:"name"`
	Email      string     `gorm:"size:255;index" json:"email"`
	Role       string     `gorm:"size:32;index" json:"role"`
	GradeLevel string     `gorm:"size:64" json:"grade_level"`
	Phone      string     `gorm:"size:64" json:"phone"`
	BirthDate  *time.Time `json:"birth_date"`
	PhotoURL   string     `gorm:"size:512" json:"photo_url"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
