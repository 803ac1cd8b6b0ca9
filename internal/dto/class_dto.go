package dto

import (
	"time"

	"github.com/noah-isme/lynx-api/internal/models"
)

// ClassCreateRequest is used by teachers to open a class.
type ClassCreateRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=255"`
	Subject     string `json:"subject" validate:"omitempty,max=128"`
	Schedule    string `json:"schedule" validate:"omitempty,max=255"`
	Description string `json:"description" validate:"omitempty,max=4000"`
	ImageURL    string `json:"image_url" validate:"required,url"`
}

// JoinClassRequest carries the class code a student typed.
type JoinClassRequest struct {
	Code string `json:"code" validate:"required,len=6,alphanum"`
}

// ClassResponse is the public view of a class.
type ClassResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Subject      string    `json:"subject"`
	Code         string    `json:"code"`
	TeacherID    string    `json:"teacher_id"`
	TeacherName  string    `json:"teacher_name"`
	Schedule     string    `json:"schedule"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image_url"`
	StudentCount int       `json:"student_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClassDetailResponse is the teacher's class page.
type ClassDetailResponse struct {
	Class         ClassResponse          `json:"class"`
	Announcements []AnnouncementResponse `json:"announcements"`
	Submissions   []SubmissionResponse   `json:"submissions"`
}

// NewClassResponse converts a Class model into a DTO.
func NewClassResponse(model models.Class) ClassResponse {
	return ClassResponse{
		ID:           model.ID,
		Name:         model.Name,
		Subject:      model.Subject,
		Code:         model.Code,
		TeacherID:    model.TeacherID,
		TeacherName:  model.TeacherName,
		Schedule:     model.Schedule,
		Description:  model.Description,
		ImageURL:     model.ImageURL,
		StudentCount: model.StudentCount,
		CreatedAt:    model.CreatedAt,
	}
}

// NewClassResponseSlice converts class models into DTOs.
func NewClassResponseSlice(items []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewClassResponse(item))
	}
	return responses
}
