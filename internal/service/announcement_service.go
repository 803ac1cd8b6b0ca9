package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/repository"
)

const (
	// DashboardAnnouncementLimit caps announcements on the student dashboard.
	DashboardAnnouncementLimit = 5
	excerptLength              = 180
)

// AnnouncementService exposes class announcement operations.
type AnnouncementService interface {
	Latest(ctx context.Context, classes []models.Class, limit int) ([]dto.AnnouncementResponse, error)
	ListForStudent(ctx context.Context, studentID string, limit int) ([]dto.AnnouncementResponse, error)
	Create(ctx context.Context, teacherID string, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error)
}

type announcementService struct {
	repo      repository.AnnouncementRepository
	classes   repository.ClassRepository
	validator *validator.Validate
	logger    zerolog.Logger
	content   *bluemonday.Policy
	plain     *bluemonday.Policy
}

// NewAnnouncementService constructs the announcement service.
func NewAnnouncementService(repo repository.AnnouncementRepository, classes repository.ClassRepository, validate *validator.Validate, logger zerolog.Logger) AnnouncementService {
	content := bluemonday.UGCPolicy()
	content.AllowElements("p", "strong", "em", "a", "ul", "ol", "li", "br")
	content.AllowAttrs("href", "title", "target").OnElements("a")

	return &announcementService{
		repo:      repo,
		classes:   classes,
		validator: validate,
		logger:    logger.With().Str("component", "announcement_service").Logger(),
		content:   content,
		plain:     bluemonday.StrictPolicy(),
	}
}

// Latest returns the newest announcements across classes, newest first.
func (s *announcementService) Latest(ctx context.Context, classes []models.Class, limit int) ([]dto.AnnouncementResponse, error) {
	if limit <= 0 {
		limit = DashboardAnnouncementLimit
	}

	classIDs := make([]string, 0, len(classes))
	names := make(map[string]string, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ID)
		names[class.ID] = className(class)
	}

	items, err := s.repo.LatestForClasses(ctx, classIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("load announcements: %w", err)
	}

	responses := make([]dto.AnnouncementResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, s.toResponse(item, names[item.ClassID]))
	}

	return responses, nil
}

func (s *announcementService) ListForStudent(ctx context.Context, studentID string, limit int) ([]dto.AnnouncementResponse, error) {
	classes, err := s.classes.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}

	return s.Latest(ctx, classes, limit)
}

func (s *announcementService) Create(ctx context.Context, teacherID string, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, payload.ClassID)
	if err != nil {
		if isNotFound(err) {
			return dto.AnnouncementResponse{}, ErrClassNotFound
		}
		return dto.AnnouncementResponse{}, err
	}
	if class.TeacherID != teacherID {
		return dto.AnnouncementResponse{}, ErrNotClassOwner
	}

	model := models.Announcement{
		ClassID:   class.ID,
		AuthorID:  teacherID,
		Title:     strings.TrimSpace(s.plain.Sanitize(payload.Title)),
		Content:   strings.TrimSpace(s.content.Sanitize(payload.Content)),
		FileURL:   strings.TrimSpace(payload.FileURL),
		FileName:  strings.TrimSpace(payload.FileName),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	s.logger.Info().Str("class_id", class.ID).Str("announcement_id", model.ID).Msg("announcement posted")

	return s.toResponse(model, className(class)), nil
}

func (s *announcementService) toResponse(model models.Announcement, className string) dto.AnnouncementResponse {
	return dto.AnnouncementResponse{
		ID:        model.ID,
		ClassID:   model.ClassID,
		ClassName: className,
		Title:     model.Title,
		Excerpt:   makeExcerpt(html.UnescapeString(s.plain.Sanitize(model.Content)), excerptLength),
		Content:   s.content.Sanitize(model.Content),
		FileURL:   model.FileURL,
		FileName:  model.FileName,
		CreatedAt: model.CreatedAt,
	}
}

// makeExcerpt cuts text to max runes and marks the cut with an ellipsis.
func makeExcerpt(text string, max int) string {
	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= max {
		return trimmed
	}
	return strings.TrimRightFunc(string(runes[:max]), unicode.IsSpace) + "..."
}
