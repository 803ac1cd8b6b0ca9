package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lynx-api/internal/models"
)

// AssignmentRepository reads the two layouts assignment documents live in:
// flat assignment modules and chapters with nested subchapters.
type AssignmentRepository interface {
	ListModules(ctx context.Context, classIDs []string) ([]models.Module, error)
	ListChapters(ctx context.Context, classIDs []string) ([]models.Chapter, error)
	GetModule(ctx context.Context, id string) (models.Module, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListModules(ctx context.Context, classIDs []string) ([]models.Module, error) {
	if len(classIDs) == 0 {
		return []models.Module{}, nil
	}

	var modules []models.Module
	if err := r.db.WithContext(ctx).
		Where("class_id IN ?", classIDs).
		Where("type = ?", models.ModuleTypeAssignment).
		Order("created_at ASC").
		Find(&modules).Error; err != nil {
		return nil, err
	}

	return modules, nil
}

func (r *assignmentRepository) ListChapters(ctx context.Context, classIDs []string) ([]models.Chapter, error) {
	if len(classIDs) == 0 {
		return []models.Chapter{}, nil
	}

	var chapters []models.Chapter
	if err := r.db.WithContext(ctx).
		Where("class_id IN ?", classIDs).
		Order("position ASC, created_at ASC").
		Find(&chapters).Error; err != nil {
		return nil, err
	}

	return chapters, nil
}

func (r *assignmentRepository) GetModule(ctx context.Context, id string) (models.Module, error) {
	var module models.Module
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&module).Error; err != nil {
		return models.Module{}, err
	}

	return module, nil
}
