package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-tutor-api/internal/models"
)

// RosterRepository provisions classes and registrations in bulk.
type RosterRepository interface {
	UpsertClasses(ctx context.Context, classes []models.Class) (int64, error)
	UpsertRegistrations(ctx context.Context, registrations []models.ClassRegistration) (int64, error)
}

type rosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository constructs the repository implementation.
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) UpsertClasses(ctx context.Context, classes []models.Class) (int64, error) {
	if len(classes) == 0 {
		return 0, nil
	}

	now := time.Now()
	for i := range classes {
		classes[i].UpdatedAt = now
	}

	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "teacher_id", "updated_at"}),
		}).
		Create(&classes)
	return result.RowsAffected, result.Error
}

func (r *rosterRepository) UpsertRegistrations(ctx context.Context, registrations []models.ClassRegistration) (int64, error) {
	if len(registrations) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"student_name"}),
		}).
		Create(&registrations)
	return result.RowsAffected, result.Error
}
