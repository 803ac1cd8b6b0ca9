package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/lynx-api/internal/document"
	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/observability"
	"github.com/noah-isme/lynx-api/internal/repository"
	"github.com/noah-isme/lynx-api/internal/resolver"
)

// BoardSnapshot is one resolution pass plus the class data it was computed from.
type BoardSnapshot struct {
	Result     resolver.Result
	Classes    []models.Class
	ClassNames map[string]string
}

// AssignmentBoardService resolves a student's assignments into the three board buckets.
type AssignmentBoardService interface {
	Snapshot(ctx context.Context, studentID string) (BoardSnapshot, error)
	Board(ctx context.Context, studentID string) (dto.AssignmentBoardResponse, error)
	List(ctx context.Context, studentID string, query dto.AssignmentListQuery) ([]dto.AssignmentCard, error)
	Definition(ctx context.Context, studentID, assignmentID string) (resolver.AssignmentDefinition, error)
}

type assignmentBoardService struct {
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	decoder     *document.Decoder
	resolver    *resolver.Resolver
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewAssignmentBoardService wires the board use case.
func NewAssignmentBoardService(
	classes repository.ClassRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
	decoder *document.Decoder,
	res *resolver.Resolver,
	logger zerolog.Logger,
) AssignmentBoardService {
	return &assignmentBoardService{
		classes:     classes,
		assignments: assignments,
		submissions: submissions,
		decoder:     decoder,
		resolver:    res,
		logger:      logger.With().Str("component", "assignment_board_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/lynx-api/internal/service/assignment_board"),
	}
}

// Snapshot performs every read before classifying, then runs a single pass.
func (s *assignmentBoardService) Snapshot(ctx context.Context, studentID string) (BoardSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "assignments.resolve", trace.WithAttributes(
		attribute.String("student_id", studentID),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.ResolverPassDuration().Observe(time.Since(start).Seconds())
	}()

	classes, definitions, err := s.loadDefinitions(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load definitions failed")
		return BoardSnapshot{}, err
	}

	filter := repository.SubmissionFilter{StudentID: &studentID}
	submissions, err := s.submissions.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load submissions failed")
		return BoardSnapshot{}, fmt.Errorf("load submissions: %w", err)
	}

	classIDs := make([]string, 0, len(classes))
	names := make(map[string]string, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ID)
		names[class.ID] = className(class)
	}

	result := s.resolver.Resolve(resolver.Input{
		StudentID:   studentID,
		ClassIDs:    classIDs,
		Definitions: definitions,
		Submissions: toSubmissionRecords(submissions),
	})

	if result.Hidden > 0 {
		observability.ResolverHiddenAssignments().Add(float64(result.Hidden))
	}
	if len(result.Duplicates) > 0 {
		observability.ResolverDuplicateSubmissions().Add(float64(len(result.Duplicates)))
	}

	span.SetAttributes(
		attribute.Int("assignments.total", len(result.Items)),
		attribute.Int("assignments.hidden", result.Hidden),
	)

	return BoardSnapshot{Result: result, Classes: classes, ClassNames: names}, nil
}

func (s *assignmentBoardService) Board(ctx context.Context, studentID string) (dto.AssignmentBoardResponse, error) {
	snapshot, err := s.Snapshot(ctx, studentID)
	if err != nil {
		return dto.AssignmentBoardResponse{}, err
	}

	return newBoardResponse(snapshot, s.resolver.Location()), nil
}

// List returns the untruncated bucket, or every visible assignment when no status is given.
func (s *assignmentBoardService) List(ctx context.Context, studentID string, query dto.AssignmentListQuery) ([]dto.AssignmentCard, error) {
	snapshot, err := s.Snapshot(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var items []resolver.ResolvedAssignment
	if query.Status == "" {
		full := snapshot.Result.Full
		items = make([]resolver.ResolvedAssignment, 0, len(snapshot.Result.Items))
		items = append(items, full.OnGoing...)
		items = append(items, full.Submitted...)
		items = append(items, full.Graded...)
	} else {
		status, ok := resolver.ParseStatus(query.Status)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", query.Status)
		}
		items = snapshot.Result.Full.Bucket(status)
	}

	search := strings.ToLower(strings.TrimSpace(query.Search))
	if search != "" {
		filtered := make([]resolver.ResolvedAssignment, 0, len(items))
		for _, item := range items {
			if strings.Contains(strings.ToLower(item.Definition.Title), search) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	return dto.NewAssignmentCards(items, snapshot.ClassNames, s.resolver.Location()), nil
}

// Definition finds a published assignment in one of the student's classes.
func (s *assignmentBoardService) Definition(ctx context.Context, studentID, assignmentID string) (resolver.AssignmentDefinition, error) {
	_, definitions, err := s.loadDefinitions(ctx, studentID)
	if err != nil {
		return resolver.AssignmentDefinition{}, err
	}

	for _, def := range definitions {
		if def.ID == assignmentID && def.Published() {
			return def, nil
		}
	}

	return resolver.AssignmentDefinition{}, ErrAssignmentNotFound
}

func (s *assignmentBoardService) loadDefinitions(ctx context.Context, studentID string) ([]models.Class, []resolver.AssignmentDefinition, error) {
	classes, err := s.classes.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, fmt.Errorf("load classes: %w", err)
	}

	classIDs := make([]string, 0, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ID)
	}

	modules, err := s.assignments.ListModules(ctx, classIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load modules: %w", err)
	}

	chapters, err := s.assignments.ListChapters(ctx, classIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load chapters: %w", err)
	}

	definitions, _ := s.decoder.FromModules(modules)
	nested, _ := s.decoder.FromChapters(chapters)
	definitions = append(definitions, nested...)

	return classes, definitions, nil
}

func newBoardResponse(snapshot BoardSnapshot, loc *time.Location) dto.AssignmentBoardResponse {
	result := snapshot.Result
	return dto.AssignmentBoardResponse{
		OnGoing:   dto.NewAssignmentCards(result.Display.OnGoing, snapshot.ClassNames, loc),
		Submitted: dto.NewAssignmentCards(result.Display.Submitted, snapshot.ClassNames, loc),
		Graded:    dto.NewAssignmentCards(result.Display.Graded, snapshot.ClassNames, loc),
		Counts: dto.BoardCounts{
			OnGoing:   len(result.Full.OnGoing),
			Submitted: len(result.Full.Submitted),
			Graded:    len(result.Full.Graded),
		},
		MarkedDays:  result.Calendar.Keys(),
		GeneratedAt: result.Now,
	}
}

func toSubmissionRecords(items []models.Submission) []resolver.SubmissionRecord {
	records := make([]resolver.SubmissionRecord, 0, len(items))
	for _, item := range items {
		records = append(records, resolver.SubmissionRecord{
			ID:           item.ID,
			AssignmentID: item.AssignmentID,
			StudentID:    item.StudentID,
			Status:       item.Status,
			SubmittedAt:  item.SubmittedAt,
			Score:        item.Score,
			Feedback:     item.Feedback,
			FileName:     item.FileName,
			FileURL:      item.FileURL,
		})
	}
	return records
}

func className(class models.Class) string {
	if strings.TrimSpace(class.Subject) != "" {
		return class.Subject
	}
	return class.Name
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
