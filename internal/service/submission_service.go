package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
)

// SubmissionService exposes graded submissions to their student and to the
// teacher who owns the assignment.
type SubmissionService interface {
	Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	repo   repository.SubmissionRepository
	logger zerolog.Logger
}

// NewSubmissionService builds the submission read service.
func NewSubmissionService(repo repository.SubmissionRepository, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repo:   repo,
		logger: logger.With().Str("component", "submission_service").Logger(),
	}
}

func (s *submissionService) Get(ctx context.Context, actor Actor, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	switch {
	case actor.IsStudent() && submission.StudentID == actor.ID:
	case actor.IsTeacher() && submission.Assignment.OwnedBy(actor.ID):
	default:
		return dto.SubmissionResponse{}, ErrForbidden
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListMine(ctx context.Context, actor Actor) ([]dto.SubmissionResponse, error) {
	if !actor.IsStudent() {
		return nil, ErrForbidden
	}

	submissions, err := s.repo.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}
