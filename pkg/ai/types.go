package ai

import (
	"context"
	"errors"
	"strings"
)

// ErrFormatMismatch is returned when a provider answers with a body that does not
// carry both weaknesses and recommendations.
var ErrFormatMismatch = errors.New("format data tidak sesuai")

// ErrUnavailable wraps transport and non-2xx failures from an AI backend.
var ErrUnavailable = errors.New("gagal terhubung ke AI")

// AnalysisInput identifies the student a learning analysis is requested for.
type AnalysisInput struct {
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	GradeLevel  string `json:"grade_level"`
}

// Recommendation is one study suggestion.
type Recommendation struct {
	Subject      string `json:"subject"`
	Advice       string `json:"advice"`
	ResourceLink string `json:"resource_link,omitempty"`
}

// Analysis is the structured result of a learning analysis.
type Analysis struct {
	Weaknesses      []string         `json:"weaknesses"`
	Recommendations []Recommendation `json:"recommendations"`
}

// Validate enforces the response contract: both lists must be present.
func (a *Analysis) Validate() error {
	if a == nil || a.Weaknesses == nil || a.Recommendations == nil {
		return ErrFormatMismatch
	}
	for i := range a.Recommendations {
		a.Recommendations[i].Subject = strings.TrimSpace(a.Recommendations[i].Subject)
		a.Recommendations[i].Advice = strings.TrimSpace(a.Recommendations[i].Advice)
	}
	return nil
}

// ChatRequest is one student message relayed to the tutor backend.
type ChatRequest struct {
	Message    string   `json:"message"`
	SessionID  string   `json:"session_id"`
	UserID     string   `json:"user_id"`
	History    []string `json:"history"`
	FileBase64 string   `json:"file_base64,omitempty"`
	MimeType   string   `json:"mime_type,omitempty"`
}

// ChatReply carries the tutor answer when the backend returns one inline. An empty
// Reply only means the message was accepted.
type ChatReply struct {
	Reply string `json:"reply"`
}

// Analyzer produces learning analyses.
type Analyzer interface {
	Analyze(ctx context.Context, input AnalysisInput) (Analysis, error)
}

// ChatRelay forwards chat messages to the tutor backend.
type ChatRelay interface {
	Send(ctx context.Context, request ChatRequest) (ChatReply, error)
}
