package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/repository"
	"github.com/noah-isme/lynx-api/pkg/ai"
)

const (
	analysisErrorUnavailable = "Gagal terhubung ke AI"
	analysisErrorFormat      = "Format data tidak sesuai"
)

// AnalysisService produces the AI learning analysis shown on the dashboard.
type AnalysisService interface {
	Analyze(ctx context.Context, student Actor, refresh bool) dto.AnalysisResponse
}

type analysisService struct {
	analyzer ai.Analyzer
	users    repository.UserRepository
	cache    *redis.Client
	ttl      time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAnalysisService constructs the analysis service. A nil analyzer makes every
// call degrade to an error message.
func NewAnalysisService(analyzer ai.Analyzer, users repository.UserRepository, cache *redis.Client, ttl, timeout time.Duration, logger zerolog.Logger) AnalysisService {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &analysisService{
		analyzer: analyzer,
		users:    users,
		cache:    cache,
		ttl:      ttl,
		timeout:  timeout,
		logger:   logger.With().Str("component", "analysis_service").Logger(),
		now:      time.Now,
	}
}

// Analyze never fails the caller: any problem yields a null analysis and a message.
func (s *analysisService) Analyze(ctx context.Context, student Actor, refresh bool) dto.AnalysisResponse {
	cacheKey := fmt.Sprintf("analysis:student:%s", student.ID)

	if !refresh {
		if cached, ok := s.readCache(ctx, cacheKey); ok {
			return dto.AnalysisResponse{Analysis: &cached, Cached: true, GeneratedAt: s.now().UTC()}
		}
	}

	if s.analyzer == nil {
		return s.failure(ErrAIUnavailable, student.ID)
	}

	input := s.input(ctx, student)
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	analysis, err := s.analyzer.Analyze(callCtx, input)
	if err != nil {
		return s.failure(err, student.ID)
	}

	s.writeCache(ctx, cacheKey, analysis)

	return dto.AnalysisResponse{Analysis: &analysis, GeneratedAt: s.now().UTC()}
}

func (s *analysisService) input(ctx context.Context, student Actor) ai.AnalysisInput {
	input := ai.AnalysisInput{
		StudentID:   student.ID,
		StudentName: student.Name,
		GradeLevel:  models.DefaultGradeLevel,
	}

	if s.users == nil {
		return input
	}

	user, err := s.users.GetByID(ctx, student.ID)
	if err != nil {
		if !isNotFound(err) {
			s.logger.Warn().Err(err).Str("student_id", student.ID).Msg("profile lookup failed, using token claims")
		}
		return input
	}

	if name := strings.TrimSpace(user.Name); name != "" {
		input.StudentName = name
	}
	if grade := strings.TrimSpace(user.GradeLevel); grade != "" {
		input.GradeLevel = grade
	}
	return input
}

func (s *analysisService) failure(err error, studentID string) dto.AnalysisResponse {
	message := analysisErrorUnavailable
	if errors.Is(err, ai.ErrFormatMismatch) {
		message = analysisErrorFormat
	}
	s.logger.Warn().Err(err).Str("student_id", studentID).Msg("learning analysis failed")
	return dto.AnalysisResponse{Error: message, GeneratedAt: s.now().UTC()}
}

func (s *analysisService) readCache(ctx context.Context, key string) (ai.Analysis, bool) {
	if s.cache == nil {
		return ai.Analysis{}, false
	}

	cached, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read analysis cache")
		}
		return ai.Analysis{}, false
	}

	var analysis ai.Analysis
	if err := json.Unmarshal([]byte(cached), &analysis); err != nil {
		return ai.Analysis{}, false
	}
	if err := analysis.Validate(); err != nil {
		return ai.Analysis{}, false
	}
	return analysis, true
}

func (s *analysisService) writeCache(ctx context.Context, key string, analysis ai.Analysis) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}

	payload, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store analysis cache")
	}
}
