package dto

import "time"

// Grading states shown on the grade page.
const (
	GradingStatusGraded  = "graded"
	GradingStatusPending = "pending"
)

// GradeItem is one completed assignment on the My Grade page.
type GradeItem struct {
	AssignmentID    string     `json:"assignment_id"`
	Title           string     `json:"title"`
	ClassID         string     `json:"class_id"`
	ClassName       string     `json:"class_name"`
	Deadline        *time.Time `json:"deadline"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	FinishedOn      string     `json:"finished_on"`
	Score           *float64   `json:"score"`
	FeedbackSummary string     `json:"feedback_summary"`
	GradingStatus   string     `json:"grading_status"`
}

// GradesResponse lists completed assignments, most recent first.
type GradesResponse struct {
	Items        []GradeItem `json:"items"`
	GradedCount  int         `json:"graded_count"`
	PendingCount int         `json:"pending_count"`
	Average      *float64    `json:"average"`
}
