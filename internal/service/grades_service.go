package service

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/resolver"
)

// GradesService lists a student's completed assignments for the grade page.
type GradesService interface {
	Grades(ctx context.Context, studentID string) (dto.GradesResponse, error)
}

type gradesService struct {
	board  AssignmentBoardService
	loc    *time.Location
	logger zerolog.Logger
}

// NewGradesService constructs the grades service.
func NewGradesService(board AssignmentBoardService, loc *time.Location, logger zerolog.Logger) GradesService {
	if loc == nil {
		loc = time.UTC
	}
	return &gradesService{
		board:  board,
		loc:    loc,
		logger: logger.With().Str("component", "grades_service").Logger(),
	}
}

// Grades merges the untruncated submitted and graded buckets, most recent first.
// Inferred entries have no submission and stay pending.
func (s *gradesService) Grades(ctx context.Context, studentID string) (dto.GradesResponse, error) {
	snapshot, err := s.board.Snapshot(ctx, studentID)
	if err != nil {
		return dto.GradesResponse{}, err
	}

	full := snapshot.Result.Full
	completed := make([]resolver.ResolvedAssignment, 0, len(full.Submitted)+len(full.Graded))
	completed = append(completed, full.Submitted...)
	completed = append(completed, full.Graded...)
	resolver.SortByRecency(completed)

	response := dto.GradesResponse{Items: make([]dto.GradeItem, 0, len(completed))}
	var total float64
	scored := 0
	for _, item := range completed {
		grade := dto.GradeItem{
			AssignmentID:  item.Definition.ID,
			Title:         item.Definition.Title,
			ClassID:       item.Definition.ClassID,
			ClassName:     snapshot.ClassNames[item.Definition.ClassID],
			Deadline:      item.Definition.Deadline,
			SubmittedAt:   item.SubmittedAt(),
			FinishedOn:    item.FinishedOn(dto.DisplayTimeLayout, s.loc),
			Score:         item.Score(),
			GradingStatus: dto.GradingStatusPending,
		}
		if item.Submission != nil {
			grade.FeedbackSummary = makeExcerpt(item.Submission.Feedback, excerptLength)
		}

		if item.Status == resolver.StatusGraded {
			grade.GradingStatus = dto.GradingStatusGraded
			response.GradedCount++
			if grade.Score != nil {
				total += *grade.Score
				scored++
			}
		} else {
			response.PendingCount++
		}

		response.Items = append(response.Items, grade)
	}

	if scored > 0 {
		average := math.Round(total/float64(scored)*100) / 100
		response.Average = &average
	}

	return response, nil
}
