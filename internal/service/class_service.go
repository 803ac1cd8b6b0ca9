package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/repository"
)

const (
	// DefaultClassDescription is stored when a teacher leaves the description empty.
	DefaultClassDescription = "Belum ada deskripsi kelas."
	classCodeLength         = 6
	classCodeAttempts       = 5
	classCodeAlphabet       = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	classDetailAnnouncement = 20
)

// ClassService manages classes and memberships.
type ClassService interface {
	ListForTeacher(ctx context.Context, teacherID string) ([]dto.ClassResponse, error)
	Create(ctx context.Context, teacher Actor, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	Detail(ctx context.Context, teacher Actor, classID string) (dto.ClassDetailResponse, error)
	ListForStudent(ctx context.Context, studentID string) ([]dto.ClassResponse, error)
	Join(ctx context.Context, student Actor, payload dto.JoinClassRequest) (dto.ClassResponse, error)
}

type classService struct {
	classes       repository.ClassRepository
	submissions   repository.SubmissionRepository
	announcements AnnouncementService
	events        EventPublisher
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
	now           func() time.Time
	newCode       func() string
}

// NewClassService constructs the class service.
func NewClassService(classes repository.ClassRepository, submissions repository.SubmissionRepository, announcements AnnouncementService, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		classes:       classes,
		submissions:   submissions,
		announcements: announcements,
		events:        events,
		validator:     validate,
		sanitizer:     bluemonday.StrictPolicy(),
		logger:        logger.With().Str("component", "class_service").Logger(),
		now:           time.Now,
		newCode:       generateClassCode,
	}
}

func (s *classService) ListForTeacher(ctx context.Context, teacherID string) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return dto.NewClassResponseSlice(classes), nil
}

func (s *classService) Create(ctx context.Context, teacher Actor, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return dto.ClassResponse{}, err
	}

	description := strings.TrimSpace(s.sanitizer.Sanitize(payload.Description))
	if description == "" {
		description = DefaultClassDescription
	}

	class := models.Class{
		Name:        strings.TrimSpace(s.sanitizer.Sanitize(payload.Name)),
		Subject:     strings.TrimSpace(s.sanitizer.Sanitize(payload.Subject)),
		Code:        code,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Schedule:    strings.TrimSpace(payload.Schedule),
		Description: description,
		ImageURL:    strings.TrimSpace(payload.ImageURL),
	}

	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.logger.Info().Str("class_id", class.ID).Str("code", class.Code).Str("teacher_id", teacher.ID).Msg("class created")

	return dto.NewClassResponse(class), nil
}

func (s *classService) Detail(ctx context.Context, teacher Actor, classID string) (dto.ClassDetailResponse, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if isNotFound(err) {
			return dto.ClassDetailResponse{}, ErrClassNotFound
		}
		return dto.ClassDetailResponse{}, err
	}
	if class.TeacherID != teacher.ID {
		return dto.ClassDetailResponse{}, ErrNotClassOwner
	}

	announcements, err := s.announcements.Latest(ctx, []models.Class{class}, classDetailAnnouncement)
	if err != nil {
		return dto.ClassDetailResponse{}, err
	}

	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{ClassID: &class.ID})
	if err != nil {
		return dto.ClassDetailResponse{}, err
	}

	return dto.ClassDetailResponse{
		Class:         dto.NewClassResponse(class),
		Announcements: announcements,
		Submissions:   dto.NewSubmissionResponseSlice(submissions),
	}, nil
}

func (s *classService) ListForStudent(ctx context.Context, studentID string) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewClassResponseSlice(classes), nil
}

// Join adds the student to the class holding code. Codes are case-insensitive.
func (s *classService) Join(ctx context.Context, student Actor, payload dto.JoinClassRequest) (dto.ClassResponse, error) {
	payload.Code = strings.ToUpper(strings.TrimSpace(payload.Code))
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	class, err := s.classes.GetByCode(ctx, payload.Code)
	if err != nil {
		if isNotFound(err) {
			return dto.ClassResponse{}, ErrClassNotFound
		}
		return dto.ClassResponse{}, err
	}

	member, err := s.classes.IsMember(ctx, class.ID, student.ID)
	if err != nil {
		return dto.ClassResponse{}, err
	}
	if member {
		return dto.ClassResponse{}, ErrAlreadyJoined
	}

	joinedAt := s.now().UTC()
	if err := s.classes.AddMember(ctx, &models.ClassMember{
		ClassID:     class.ID,
		StudentID:   student.ID,
		StudentName: student.Name,
		JoinedAt:    joinedAt,
	}); err != nil {
		return dto.ClassResponse{}, err
	}
	class.StudentCount++

	if s.events != nil {
		s.events.PublishEvent(ctx, dto.LiveEvent{
			Type:       dto.LiveEventAssignmentChanged,
			StudentID:  student.ID,
			ClassID:    class.ID,
			OccurredAt: joinedAt,
		})
	}

	return dto.NewClassResponse(class), nil
}

func (s *classService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < classCodeAttempts; attempt++ {
		code := s.newCode()
		exists, err := s.classes.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique class code after %d attempts", classCodeAttempts)
}

func generateClassCode() string {
	random := uuid.New()
	code := make([]byte, classCodeLength)
	for i := range code {
		code[i] = classCodeAlphabet[int(random[i])%len(classCodeAlphabet)]
	}
	return string(code)
}
