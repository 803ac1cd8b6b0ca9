package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/repository"
)

// Actor identifies the authenticated caller.
type Actor struct {
	ID   string
	Name string
	Role string
}

// SubmissionService handles student uploads for assignments.
type SubmissionService interface {
	Submit(ctx context.Context, student Actor, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionCreatedResponse, error)
	ListForStudent(ctx context.Context, studentID string) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	board       AssignmentBoardService
	uploads     UploadService
	events      EventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService instantiates the submission service.
func NewSubmissionService(submissions repository.SubmissionRepository, board AssignmentBoardService, uploads UploadService, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		board:       board,
		uploads:     uploads,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/lynx-api/internal/service/submission"),
		now:         time.Now,
	}
}

// Submit accepts one file per assignment and student. The store has no unique
// constraint, so the check here is the only guard.
func (s *submissionService) Submit(ctx context.Context, student Actor, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionCreatedResponse, error) {
	payload.AssignmentID = strings.TrimSpace(payload.AssignmentID)
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionCreatedResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "submissions.create", trace.WithAttributes(
		attribute.String("assignment_id", payload.AssignmentID),
		attribute.String("student_id", student.ID),
	))
	defer span.End()

	definition, err := s.board.Definition(ctx, student.ID, payload.AssignmentID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionCreatedResponse{}, err
	}

	existing, err := s.submissions.GetByAssignmentAndStudent(ctx, definition.ID, student.ID)
	switch {
	case err == nil:
		s.logger.Info().Str("submission_id", existing.ID).Str("assignment_id", definition.ID).Msg("duplicate submission refused")
		return dto.SubmissionCreatedResponse{}, ErrAlreadySubmitted
	case !isNotFound(err):
		span.RecordError(err)
		return dto.SubmissionCreatedResponse{}, err
	}

	upload, err := s.uploads.Upload(ctx, file, UploadOptions{OwnerID: student.ID, Purpose: UploadPurposeSubmission})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return dto.SubmissionCreatedResponse{}, err
	}

	submittedAt := s.now().UTC()
	model := models.Submission{
		AssignmentID:    definition.ID,
		AssignmentTitle: definition.Title,
		ClassID:         definition.ClassID,
		StudentID:       student.ID,
		StudentName:     student.Name,
		Status:          models.SubmissionStatusSubmitted,
		SubmittedAt:     &submittedAt,
		FileURL:         upload.URL,
		FileName:        upload.FileName,
	}

	if err := s.submissions.Create(ctx, &model); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.SubmissionCreatedResponse{}, err
	}

	if s.events != nil {
		s.events.PublishEvent(ctx, dto.LiveEvent{
			Type:         dto.LiveEventSubmissionCreated,
			StudentID:    student.ID,
			ClassID:      model.ClassID,
			AssignmentID: model.AssignmentID,
			SubmissionID: model.ID,
			OccurredAt:   submittedAt,
		})
	}

	s.logger.Info().
		Str("submission_id", model.ID).
		Str("assignment_id", model.AssignmentID).
		Str("student_id", student.ID).
		Msg("submission stored")

	return dto.SubmissionCreatedResponse{
		Submission: dto.NewSubmissionResponse(model),
		Upload:     upload,
	}, nil
}

func (s *submissionService) ListForStudent(ctx context.Context, studentID string) ([]dto.SubmissionResponse, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, errors.New("student id is required")
	}

	items, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(items), nil
}
