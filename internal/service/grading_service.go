package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/repository"
)

// GradingService lets teachers review and grade submissions of their classes.
type GradingService interface {
	List(ctx context.Context, teacher Actor, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Grade(ctx context.Context, teacher Actor, submissionID string, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error)
}

type gradingService struct {
	submissions repository.SubmissionRepository
	classes     repository.ClassRepository
	events      EventPublisher
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradingService constructs the grading service.
func NewGradingService(submissions repository.SubmissionRepository, classes repository.ClassRepository, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) GradingService {
	return &gradingService{
		submissions: submissions,
		classes:     classes,
		events:      events,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "grading_service").Logger(),
		now:         time.Now,
	}
}

func (s *gradingService) List(ctx context.Context, teacher Actor, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	query := repository.SubmissionFilter{}
	if filter.ClassID != "" {
		if err := s.ensureOwner(ctx, teacher, filter.ClassID); err != nil {
			return nil, err
		}
		query.ClassID = &filter.ClassID
	} else {
		classes, err := s.classes.ListByTeacher(ctx, teacher.ID)
		if err != nil {
			return nil, err
		}
		query.ClassIDs = make([]string, 0, len(classes))
		for _, class := range classes {
			query.ClassIDs = append(query.ClassIDs, class.ID)
		}
	}
	if filter.AssignmentID != "" {
		query.AssignmentID = &filter.AssignmentID
	}
	if filter.Status != "" {
		query.Status = &filter.Status
	}

	items, err := s.submissions.List(ctx, query)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(items), nil
}

// Grade moves a submission to GRADED. Re-grading overwrites score and feedback.
func (s *gradingService) Grade(ctx context.Context, teacher Actor, submissionID string, payload dto.GradeSubmissionRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/lynx-api/internal/service/grading")
	ctx, span := tracer.Start(ctx, "grading.update")
	span.SetAttributes(
		attribute.String("grading.submission_id", submissionID),
		attribute.String("grading.actor_id", teacher.ID),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if isNotFound(err) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if err := s.ensureOwner(ctx, teacher, submission.ClassID); err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	gradedAt := s.now().UTC()
	score := *payload.Score
	submission.Score = &score
	submission.Feedback = strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	submission.Status = models.SubmissionStatusGraded
	submission.GradedBy = teacher.ID
	submission.GradedAt = &gradedAt

	if err := s.submissions.Update(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.SubmissionResponse{}, err
	}

	if s.events != nil {
		s.events.PublishEvent(ctx, dto.LiveEvent{
			Type:         dto.LiveEventSubmissionGraded,
			StudentID:    submission.StudentID,
			ClassID:      submission.ClassID,
			AssignmentID: submission.AssignmentID,
			SubmissionID: submission.ID,
			OccurredAt:   gradedAt,
		})
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Float64("score", score).
		Str("teacher_id", teacher.ID).
		Msg("submission graded")

	span.SetStatus(codes.Ok, "graded")
	return dto.NewSubmissionResponse(submission), nil
}

func (s *gradingService) ensureOwner(ctx context.Context, teacher Actor, classID string) error {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if isNotFound(err) {
			return ErrClassNotFound
		}
		return err
	}
	if class.TeacherID != teacher.ID {
		return ErrNotClassOwner
	}
	return nil
}
