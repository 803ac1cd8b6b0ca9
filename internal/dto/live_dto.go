package dto

import "time"

// Live event types.
const (
	LiveEventSubmissionCreated = "submission.created"
	LiveEventSubmissionGraded  = "submission.graded"
	LiveEventAssignmentChanged = "assignment.changed"
)

// LiveEvent signals that data behind a student's board changed.
type LiveEvent struct {
	Type         string    `json:"type"`
	StudentID    string    `json:"student_id"`
	ClassID      string    `json:"class_id,omitempty"`
	AssignmentID string    `json:"assignment_id,omitempty"`
	SubmissionID string    `json:"submission_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// LiveBoardMessage is pushed over the board stream after every resolution pass.
type LiveBoardMessage struct {
	Type  string                  `json:"type"`
	Board AssignmentBoardResponse `json:"board"`
	Event *LiveEvent              `json:"event,omitempty"`
}
