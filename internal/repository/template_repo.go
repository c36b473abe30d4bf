package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-api/internal/models"
)

// TemplateRepository persists assignment templates.
type TemplateRepository interface {
	ListByOwner(ctx context.Context, teacherID uint) ([]models.AssignmentTemplate, error)
	GetByID(ctx context.Context, id uint) (models.AssignmentTemplate, error)
	Create(ctx context.Context, template *models.AssignmentTemplate) error
}

type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository instantiates the repository.
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) ListByOwner(ctx context.Context, teacherID uint) ([]models.AssignmentTemplate, error) {
	var templates []models.AssignmentTemplate
	if err := r.db.WithContext(ctx).
		Where("created_by = ?", teacherID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&templates).Error; err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *templateRepository) GetByID(ctx context.Context, id uint) (models.AssignmentTemplate, error) {
	var template models.AssignmentTemplate
	if err := r.db.WithContext(ctx).First(&template, id).Error; err != nil {
		return models.AssignmentTemplate{}, err
	}

	return template, nil
}

func (r *templateRepository) Create(ctx context.Context, template *models.AssignmentTemplate) error {
	return r.db.WithContext(ctx).Create(template).Error
}
