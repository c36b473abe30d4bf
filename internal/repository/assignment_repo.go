package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-api/internal/models"
)

// AssignmentFilter describes pagination options for a teacher's assignments.
type AssignmentFilter struct {
	CreatedBy uint
	Page      int
	PageSize  int
}

// AssignmentRepository defines persistence operations for assignments.
type AssignmentRepository interface {
	ListByOwner(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error)
	ListByClasses(ctx context.Context, classIDs []uint) ([]models.Assignment, error)
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	ReplaceClasses(ctx context.Context, assignmentID uint, classIDs []uint) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) ListByOwner(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{}).Where("created_by = ?", filter.CreatedBy)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Classes").Order("created_at DESC").Order("id DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var assignments []models.Assignment
	if err := query.Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

func (r *assignmentRepository) ListByClasses(ctx context.Context, classIDs []uint) ([]models.Assignment, error) {
	if len(classIDs) == 0 {
		return []models.Assignment{}, nil
	}

	subQuery := r.db.Model(&models.AssignmentClass{}).Select("assignment_id").Where("class_id IN ?", classIDs)

	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Preload("Classes").
		Where("id IN (?)", subQuery).
		Order("created_at DESC").
		Order("id DESC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Preload("Classes").First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit("Classes").Create(assignment).Error
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ?", assignment.ID).
		Updates(map[string]interface{}{
			"title":      assignment.Title,
			"questions":  assignment.Questions,
			"updated_at": assignment.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) ReplaceClasses(ctx context.Context, assignmentID uint, classIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", assignmentID).Delete(&models.AssignmentClass{}).Error; err != nil {
			return err
		}
		if len(classIDs) == 0 {
			return nil
		}

		links := make([]models.AssignmentClass, 0, len(classIDs))
		for _, classID := range classIDs {
			links = append(links, models.AssignmentClass{AssignmentID: assignmentID, ClassID: classID})
		}
		return tx.Create(&links).Error
	})
}
