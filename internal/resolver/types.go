// Package resolver joins assignment definitions with a student's submissions and
// derives the on-going / submitted / graded buckets shown on the student pages.
package resolver

import (
	"strings"
	"time"
)

// Status is the lifecycle bucket a resolved assignment occupies for one student.
type Status string

const (
	StatusOnGoing   Status = "on-going"
	StatusSubmitted Status = "submitted"
	StatusGraded    Status = "graded"
)

// ParseStatus maps loose user input ("ongoing", "On Going", "graded") to a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(normalized)
	switch normalized {
	case "ongoing":
		return StatusOnGoing, true
	case "submitted":
		return StatusSubmitted, true
	case "graded":
		return StatusGraded, true
	default:
		return "", false
	}
}

const (
	// VisibilityPublished marks definitions that students may see.
	VisibilityPublished = "published"
	// VisibilityDraft marks definitions still being prepared by a teacher.
	VisibilityDraft = "draft"
)

const (
	// SubmissionSubmitted is the stored status of an uploaded, ungraded answer.
	SubmissionSubmitted = "SUBMITTED"
	// SubmissionGraded is the stored status once a teacher has scored the answer.
	SubmissionGraded = "GRADED"
)

// Attachment is a named link published alongside an assignment.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// AssignmentDefinition is a task published by a class. Read-only to the resolver.
type AssignmentDefinition struct {
	ID           string
	ClassID      string
	Title        string
	Instructions string
	Deadline     *time.Time
	PublishedAt  *time.Time
	Attachments  []Attachment
	Visibility   string
}

// Published reports whether students may see the definition. A missing visibility
// flag counts as published.
func (d AssignmentDefinition) Published() bool {
	visibility := strings.ToLower(strings.TrimSpace(d.Visibility))
	return visibility == "" || visibility == VisibilityPublished
}

// SubmissionRecord is one student's answer to one assignment.
type SubmissionRecord struct {
	ID           string
	AssignmentID string
	StudentID    string
	Status       string
	SubmittedAt  *time.Time
	Score        *float64
	Feedback     string
	FileName     string
	FileURL      string
}

// IsGraded reports whether a teacher has graded the record.
func (s SubmissionRecord) IsGraded() bool {
	return strings.EqualFold(strings.TrimSpace(s.Status), SubmissionGraded)
}

// ResolvedAssignment is the view-only join of a definition, its optional submission
// and the computed status. It is never persisted.
type ResolvedAssignment struct {
	Definition AssignmentDefinition
	Submission *SubmissionRecord
	Status     Status
	// Inferred is set when the status was derived from a passed deadline rather
	// than from a stored submission.
	Inferred bool
}

// SubmittedAt returns the submission instant, if any.
func (r ResolvedAssignment) SubmittedAt() *time.Time {
	if r.Submission == nil {
		return nil
	}
	return r.Submission.SubmittedAt
}

// Score returns the graded score, if any.
func (r ResolvedAssignment) Score() *float64 {
	if r.Submission == nil || !r.Submission.IsGraded() {
		return nil
	}
	return r.Submission.Score
}

// FinishedOn renders the submission instant in loc, or "-" when nothing was submitted.
func (r ResolvedAssignment) FinishedOn(layout string, loc *time.Location) string {
	submittedAt := r.SubmittedAt()
	if submittedAt == nil {
		return "-"
	}
	if loc == nil {
		loc = time.UTC
	}
	return submittedAt.In(loc).Format(layout)
}
