package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-api/internal/models"
)

// ClassRepository reads classes and enrolment. Roster management lives elsewhere.
type ClassRepository interface {
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error)
	GetByIDs(ctx context.Context, ids []uint) ([]models.Class, error)
	ListRegistrationsByStudent(ctx context.Context, studentID uint) ([]models.ClassRegistration, error)
	ListRegistrationsByClasses(ctx context.Context, classIDs []uint) ([]models.ClassRegistration, error)
	IsRegistered(ctx context.Context, studentID uint, classIDs []uint) (bool, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository instantiates the repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("name ASC").
		Order("id ASC").
		Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *classRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.Class, error) {
	if len(ids) == 0 {
		return []models.Class{}, nil
	}

	var classes []models.Class
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&classes).Error; err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *classRepository) ListRegistrationsByStudent(ctx context.Context, studentID uint) ([]models.ClassRegistration, error) {
	var registrations []models.ClassRegistration
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("class_id ASC").
		Find(&registrations).Error; err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *classRepository) ListRegistrationsByClasses(ctx context.Context, classIDs []uint) ([]models.ClassRegistration, error) {
	if len(classIDs) == 0 {
		return []models.ClassRegistration{}, nil
	}

	var registrations []models.ClassRegistration
	if err := r.db.WithContext(ctx).
		Where("class_id IN ?", classIDs).
		Order("student_name ASC").
		Order("id ASC").
		Find(&registrations).Error; err != nil {
		return nil, err
	}

	return registrations, nil
}

func (r *classRepository) IsRegistered(ctx context.Context, studentID uint, classIDs []uint) (bool, error) {
	if len(classIDs) == 0 {
		return false, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClassRegistration{}).
		Where("student_id = ?", studentID).
		Where("class_id IN ?", classIDs).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
