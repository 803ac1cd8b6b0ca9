package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// SubmissionStatusSubmitted indicates the submission has been uploaded but not graded.
	SubmissionStatusSubmitted = "SUBMITTED"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "GRADED"
	// SubmissionStatusLate marks uploads accepted after the deadline.
	SubmissionStatusLate = "LATE"
)

// Submission represents a file a student submitted for an assignment.
// Uniqueness per (assignment, student) is not enforced by the table.
type Submission struct {
	ID              string     `gorm:"primaryKey;size:64" json:"id"`
	AssignmentID    string     `gorm:"size:64;index;not null" json:"assignment_id"`
	AssignmentTitle string     `gorm:"size:255" json:"assignment_title"`
	ClassID         string     `gorm:"size:64;index" json:"class_id"`
	StudentID       string     `gorm:"size:64;index;not null" json:"student_id"`
	StudentName     string     `gorm:"size:255" json:"student_name"`
	Status          string     `gorm:"size:32;not null" json:"status"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	FileURL         string     `gorm:"size:512" json:"file_url"`
	FileName        string     `gorm:"size:255" json:"file_name"`
	Score           *float64   `json:"score"`
	Feedback        string     `gorm:"type:text" json:"feedback"`
	GradedBy        string     `gorm:"size:64" json:"graded_by"`
	GradedAt        *time.Time `json:"graded_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return strings.EqualFold(s.Status, SubmissionStatusGraded)
}
