package dto

import (
	"time"

	"github.com/noah-isme/lynx-api/internal/resolver"
)

// DisplayTimeLayout renders instants shown to students.
const DisplayTimeLayout = "02 Jan 2006 - 15:04"

// AssignmentListQuery filters the full assignment list of the My Classes page.
type AssignmentListQuery struct {
	Status string `query:"status" validate:"omitempty,oneof=on-going submitted graded"`
	Search string `query:"search" validate:"omitempty,max=120"`
}

// AttachmentResponse is one downloadable file attached to an assignment.
type AttachmentResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// AssignmentCard is one assignment as seen by a student.
type AssignmentCard struct {
	ID           string               `json:"id"`
	ClassID      string               `json:"class_id"`
	ClassName    string               `json:"class_name"`
	Title        string               `json:"title"`
	Instructions string               `json:"instructions"`
	Deadline     *time.Time           `json:"deadline"`
	Status       string               `json:"status"`
	Inferred     bool                 `json:"inferred"`
	SubmissionID string               `json:"submission_id,omitempty"`
	SubmittedAt  *time.Time           `json:"submitted_at"`
	FileURL      string               `json:"file_url,omitempty"`
	Score        *float64             `json:"score"`
	Feedback     string               `json:"feedback,omitempty"`
	FinishedOn   string               `json:"finished_on"`
	Attachments  []AttachmentResponse `json:"attachments"`
}

// BoardCounts reports bucket sizes before truncation.
type BoardCounts struct {
	OnGoing   int `json:"on_going"`
	Submitted int `json:"submitted"`
	Graded    int `json:"graded"`
}

// AssignmentBoardResponse is the compact three-bucket board.
type AssignmentBoardResponse struct {
	OnGoing     []AssignmentCard `json:"on_going"`
	Submitted   []AssignmentCard `json:"submitted"`
	Graded      []AssignmentCard `json:"graded"`
	Counts      BoardCounts      `json:"counts"`
	MarkedDays  []string         `json:"marked_days"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// NewAssignmentCard converts a resolved assignment into its API shape.
func NewAssignmentCard(item resolver.ResolvedAssignment, className string, loc *time.Location) AssignmentCard {
	def := item.Definition
	card := AssignmentCard{
		ID:           def.ID,
		ClassID:      def.ClassID,
		ClassName:    className,
		Title:        def.Title,
		Instructions: def.Instructions,
		Deadline:     def.Deadline,
		Status:       string(item.Status),
		Inferred:     item.Inferred,
		SubmittedAt:  item.SubmittedAt(),
		Score:        item.Score(),
		FinishedOn:   item.FinishedOn(DisplayTimeLayout, loc),
		Attachments:  make([]AttachmentResponse, 0, len(def.Attachments)),
	}

	for _, attachment := range def.Attachments {
		card.Attachments = append(card.Attachments, AttachmentResponse{Name: attachment.Name, URL: attachment.URL})
	}

	if item.Submission != nil {
		card.SubmissionID = item.Submission.ID
		card.FileURL = item.Submission.FileURL
		card.Feedback = item.Submission.Feedback
	}

	return card
}

// NewAssignmentCards converts a bucket, resolving class names through names.
func NewAssignmentCards(items []resolver.ResolvedAssignment, names map[string]string, loc *time.Location) []AssignmentCard {
	cards := make([]AssignmentCard, 0, len(items))
	for _, item := range items {
		cards = append(cards, NewAssignmentCard(item, names[item.Definition.ClassID], loc))
	}
	return cards
}
