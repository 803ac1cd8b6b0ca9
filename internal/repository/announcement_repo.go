package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lynx-api/internal/models"
)

// AnnouncementRepository exposes persistence helpers for class announcements.
type AnnouncementRepository interface {
	LatestForClasses(ctx context.Context, classIDs []string, limit int) ([]models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository constructs the repository implementation.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) LatestForClasses(ctx context.Context, classIDs []string, limit int) ([]models.Announcement, error) {
	if len(classIDs) == 0 {
		return []models.Announcement{}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 5
	}

	var items []models.Announcement
	if err := r.db.WithContext(ctx).
		Where("class_id IN ?", classIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return r.db.WithContext(ctx).Create(announcement).Error
}
