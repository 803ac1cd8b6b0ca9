package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/lynx-api/internal/dto"
	"github.com/noah-isme/lynx-api/internal/models"
	"github.com/noah-isme/lynx-api/internal/repository"
)

// ProfileService reads user profiles.
type ProfileService interface {
	Get(ctx context.Context, userID string) (dto.ProfileResponse, error)
}

type profileService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(users repository.UserRepository, logger zerolog.Logger) ProfileService {
	return &profileService{
		users:  users,
		logger: logger.With().Str("component", "profile_service").Logger(),
	}
}

func (s *profileService) Get(ctx context.Context, userID string) (dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return dto.ProfileResponse{}, ErrProfileNotFound
		}
		return dto.ProfileResponse{}, err
	}

	return newProfileResponse(user), nil
}

func newProfileResponse(user models.User) dto.ProfileResponse {
	grade := strings.TrimSpace(user.GradeLevel)
	if grade == "" {
		grade = models.DefaultGradeLevel
	}
	role := strings.ToLower(strings.TrimSpace(user.Role))
	if role == "" {
		role = models.RoleStudent
	}

	return dto.ProfileResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Phone:      user.Phone,
		BirthDate:  user.BirthDate,
		Role:       role,
		PhotoURL:   user.PhotoURL,
		GradeLevel: grade,
	}
}
