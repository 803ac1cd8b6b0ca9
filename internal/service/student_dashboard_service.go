package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/observability"
	"github.com/noah-isme/lynx-api/internal/repository"
	"github.com/noah-isme/lynx-api/internal/resolver"
)

const (
	dashboardChipLimit = 3
	monthKeyLayout     = "2006-01"
	reminderTimeLayout = "15:04"
)

// StudentDashboardService assembles the student dashboard. Sections fail
// independently; a failed section is empty and named in Failures.
type StudentDashboardService interface {
	GetDashboard(ctx context.Context, studentID string, query dto.DashboardQuery) (dto.StudentDashboardResponse, error)
	Invalidate(ctx context.Context, studentID string)
}

type studentDashboardService struct {
	classes       repository.ClassRepository
	announcements AnnouncementService
	board         AssignmentBoardService
	cache         *redis.Client
	cacheTTL      time.Duration
	loc           *time.Location
	logger        zerolog.Logger
	now           func() time.Time
}

// NewStudentDashboardService builds the dashboard aggregator.
func NewStudentDashboardService(classes repository.ClassRepository, announcements AnnouncementService, board AssignmentBoardService, cache *redis.Client, ttl time.Duration, loc *time.Location, logger zerolog.Logger) StudentDashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &studentDashboardService{
		classes:       classes,
		announcements: announcements,
		board:         board,
		cache:         cache,
		cacheTTL:      ttl,
		loc:           loc,
		logger:        logger.With().Str("component", "student_dashboard_service").Logger(),
		now:           time.Now,
	}
}

func (s *studentDashboardService) GetDashboard(ctx context.Context, studentID string, query dto.DashboardQuery) (dto.StudentDashboardResponse, error) {
	today := s.now().In(s.loc)
	year, month, err := s.selectedMonth(query.Month, today)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	selected, err := s.selectedDay(query.Date, today)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	cacheKey := fmt.Sprintf("dashboard:student:%s:%s:%04d-%02d:%s",
		studentID, resolver.DayKey(today, s.loc), year, int(month), resolver.DayKey(selected, s.loc))

	if cached, ok := s.readCache(ctx, cacheKey); ok {
		observability.DashboardCache().WithLabelValues("hit").Inc()
		return cached, nil
	}
	observability.DashboardCache().WithLabelValues("miss").Inc()

	response := dto.StudentDashboardResponse{
		Classes:       []dto.ClassChip{},
		Announcements: []dto.AnnouncementResponse{},
		Assignments:   emptyBoard(),
		Calendar: dto.CalendarResponse{
			Month:        fmt.Sprintf("%04d-%02d", year, int(month)),
			Timezone:     s.loc.String(),
			MarkedDays:   []string{},
			SelectedDate: resolver.DayKey(selected, s.loc),
			Reminders:    []dto.ReminderResponse{},
		},
		Failures: []string{},
	}

	classes, err := s.classes.ListByStudent(ctx, studentID)
	if err != nil {
		s.fail(&response, err, dto.SectionClasses, dto.SectionAnnouncements)
	} else {
		response.Classes = classChips(classes)

		announcements, err := s.announcements.Latest(ctx, classes, DashboardAnnouncementLimit)
		if err != nil {
			s.fail(&response, err, dto.SectionAnnouncements)
		} else {
			response.Announcements = announcements
		}
	}

	ttl := s.cacheTTL
	snapshot, err := s.board.Snapshot(ctx, studentID)
	if err != nil {
		s.fail(&response, err, dto.SectionAssignments)
		response.GeneratedAt = today.UTC()
	} else {
		response.Assignments = newBoardResponse(snapshot, s.loc)
		response.GeneratedAt = snapshot.Result.Now
		ttl = ttlUntilNextDeadline(ttl, snapshot.Result)

		marks := snapshot.Result.Calendar
		response.Calendar.MarkedDays = marks.KeysInMonth(year, month)
		for _, item := range marks.Reminders(selected) {
			response.Calendar.Reminders = append(response.Calendar.Reminders, dto.ReminderResponse{
				AssignmentID: item.Definition.ID,
				Title:        item.Definition.Title,
				ClassName:    snapshot.ClassNames[item.Definition.ClassID],
				Deadline:     item.Definition.Deadline,
				DueTime:      item.Definition.Deadline.In(s.loc).Format(reminderTimeLayout),
			})
		}
	}

	if len(response.Failures) == 0 {
		s.writeCache(ctx, studentID, cacheKey, response, ttl)
	}

	return response, nil
}

// Invalidate drops every cached dashboard variant of the student.
func (s *studentDashboardService) Invalidate(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}

	index := dashboardIndexKey(studentID)
	keys, err := s.cache.SMembers(ctx, index).Result()
	if err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to read dashboard cache index")
		return
	}

	keys = append(keys, index)
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Str("student_id", studentID).Msg("failed to invalidate dashboard cache")
		return
	}

	s.logger.Debug().Str("student_id", studentID).Int("keys", len(keys)-1).Msg("dashboard cache invalidated")
}

func (s *studentDashboardService) readCache(ctx context.Context, key string) (dto.StudentDashboardResponse, bool) {
	if s.cache == nil {
		return dto.StudentDashboardResponse{}, false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
		return dto.StudentDashboardResponse{}, false
	}

	var response dto.StudentDashboardResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		return dto.StudentDashboardResponse{}, false
	}

	return response, true
}

func (s *studentDashboardService) writeCache(ctx context.Context, studentID, key string, response dto.StudentDashboardResponse, ttl time.Duration) {
	if s.cache == nil || ttl <= 0 {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	index := dashboardIndexKey(studentID)
	pipe := s.cache.TxPipeline()
	pipe.Set(ctx, key, payload, ttl)
	pipe.SAdd(ctx, index, key)
	pipe.Expire(ctx, index, s.cacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
	}
}

// ttlUntilNextDeadline shortens ttl so a cached dashboard expires no later than
// the moment its nearest on-going assignment would turn submitted.
func ttlUntilNextDeadline(ttl time.Duration, result resolver.Result) time.Duration {
	for _, item := range result.Full.OnGoing {
		if item.Definition.Deadline == nil {
			continue
		}
		if until := item.Definition.Deadline.Sub(result.Now); until < ttl {
			ttl = until
		}
	}
	return ttl
}

func (s *studentDashboardService) fail(response *dto.StudentDashboardResponse, err error, sections ...string) {
	for _, section := range sections {
		observability.DashboardSectionFailures().WithLabelValues(section).Inc()
		response.Failures = append(response.Failures, section)
	}
	s.logger.Error().Err(err).Strs("sections", sections).Msg("dashboard section failed to load")
}

func (s *studentDashboardService) selectedMonth(value string, today time.Time) (int, time.Month, error) {
	if value == "" {
		return today.Year(), today.Month(), nil
	}
	parsed, err := time.ParseInLocation(monthKeyLayout, value, s.loc)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: %w", value, err)
	}
	return parsed.Year(), parsed.Month(), nil
}

func (s *studentDashboardService) selectedDay(value string, today time.Time) (time.Time, error) {
	if value == "" {
		return today, nil
	}
	parsed, err := time.ParseInLocation(resolver.DayKeyLayout, value, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return parsed, nil
}

func dashboardIndexKey(studentID string) string {
	return fmt.Sprintf("dashboard:student:%s:keys", studentID)
}

func classChips(classes []models.Class) []dto.ClassChip {
	limit := dashboardChipLimit
	if len(classes) < limit {
		limit = len(classes)
	}
	chips := make([]dto.ClassChip, 0, limit)
	for _, class := range classes[:limit] {
		chips = append(chips, dto.ClassChip{ID: class.ID, Name: className(class)})
	}
	return chips
}

func emptyBoard() dto.AssignmentBoardResponse {
	return dto.AssignmentBoardResponse{
		OnGoing:    []dto.AssignmentCard{},
		Submitted:  []dto.AssignmentCard{},
		Graded:     []dto.AssignmentCard{},
		MarkedDays: []string{},
	}
}
