package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/lynx-api/internal/models"
)

// ClassRepository exposes class and membership queries.
type ClassRepository interface {
	GetByID(ctx context.Context, id string) (models.Class, error)
	GetByCode(ctx context.Context, code string) (models.Class, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Class, error)
	IsMember(ctx context.Context, classID, studentID string) (bool, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	AddMember(ctx context.Context, member *models.ClassMember) error
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository constructs a class repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) GetByID(ctx context.Context, id string) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&class).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) GetByCode(ctx context.Context, code string) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&class).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

// ListByStudent returns joined classes in join order.
func (r *classRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Model(&models.Class{}).
		Joins("JOIN class_members ON class_members.class_id = classes.id").
		Where("class_members.student_id = ?", studentID).
		Order("class_members.joined_at ASC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) IsMember(ctx context.Context, classID, studentID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClassMember{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *classRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Class{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

// AddMember stores the membership and bumps the class student count atomically.
func (r *classRepository) AddMember(ctx context.Context, member *models.ClassMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return tx.Model(&models.Class{}).
			Where("id = ?", member.ClassID).
			UpdateColumn("student_count", gorm.Expr("student_count + ?", 1)).Error
	})
}
