package dto

import (
	"time"

	"github.com/noah-isme/lynx-api/internal/models"
)

// SubmissionCreateRequest describes the multipart payload for submission upload.
type SubmissionCreateRequest struct {
	AssignmentID string `form:"assignment_id" validate:"required,max=64"`
}

// GradeSubmissionRequest is sent by teachers to grade a submission.
type GradeSubmissionRequest struct {
	Score    *float64 `json:"score" validate:"required,gte=0,lte=100"`
	Feedback string   `json:"feedback" validate:"omitempty,max=4000"`
}

// SubmissionFilter describes query string filters for the teacher submission list.
type SubmissionFilter struct {
	AssignmentID string `query:"assignment_id" validate:"omitempty,max=64"`
	ClassID      string `query:"class_id" validate:"omitempty,max=64"`
	Status       string `query:"status" validate:"omitempty,oneof=SUBMITTED GRADED LATE submitted graded late"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID              string     `json:"id"`
	AssignmentID    string     `json:"assignment_id"`
	AssignmentTitle string     `json:"assignment_title"`
	ClassID         string     `json:"class_id"`
	StudentID       string     `json:"student_id"`
	StudentName     string     `json:"student_name"`
	Status          string     `json:"status"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	FileURL         string     `json:"file_url"`
	FileName        string     `json:"file_name"`
	Score           *float64   `json:"score"`
	Feedback        string     `json:"feedback"`
	GradedBy        string     `json:"graded_by,omitempty"`
	GradedAt        *time.Time `json:"graded_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// UploadResponse describes the stored asset metadata returned to the client.
type UploadResponse struct {
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
	Checksum  string `json:"checksum"`
	FileName  string `json:"file_name"`
}

// SubmissionCreatedResponse pairs the new record with its stored file.
type SubmissionCreatedResponse struct {
	Submission SubmissionResponse `json:"submission"`
	Upload     UploadResponse     `json:"upload"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:              model.ID,
		AssignmentID:    model.AssignmentID,
		AssignmentTitle: model.AssignmentTitle,
		ClassID:         model.ClassID,
		StudentID:       model.StudentID,
		StudentName:     model.StudentName,
		Status:          model.Status,
		SubmittedAt:     model.SubmittedAt,
		FileURL:         model.FileURL,
		FileName:        model.FileName,
		Score:           model.Score,
		Feedback:        model.Feedback,
		GradedBy:        model.GradedBy,
		GradedAt:        model.GradedAt,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(items []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(items))
	for _, submission := range items {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
