package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-tutor-api/internal/models"
)

// SubmissionRepository defines data operations for graded submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error)
	ListByAssignments(ctx context.Context, assignmentIDs []uint) ([]models.Submission, error)
	// CreateIfAbsent inserts the submission unless one already exists for the
	// same (assignment, student). It reports whether a row was written.
	CreateIfAbsent(ctx context.Context, submission *models.Submission) (bool, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).Preload("Assignment").First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Where("student_id = ?", studentID).
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Preload("Assignment").
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Order("id DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) ListByAssignments(ctx context.Context, assignmentIDs []uint) ([]models.Submission, error) {
	if len(assignmentIDs) == 0 {
		return []models.Submission{}, nil
	}

	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("assignment_id IN ?", assignmentIDs).
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) CreateIfAbsent(ctx context.Context, submission *models.Submission) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
			DoNothing: true,
		}).
		Create(submission)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
