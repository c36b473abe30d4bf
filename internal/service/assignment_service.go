package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/models"
	"github.com/noah-isme/gema-tutor-api/internal/quiz"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
)

const (
	defaultAssignmentPageSize = 5
	maxAssignmentPageSize     = 50
)

// AssignmentService exposes assignment authoring use cases.
type AssignmentService interface {
	List(ctx context.Context, actor Actor, page, pageSize int) (dto.AssignmentListResponse, error)
	Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	AssignClasses(ctx context.Context, actor Actor, id uint, payload dto.AssignClassesRequest) (dto.AssignmentResponse, error)
}

// DashboardInvalidator drops cached dashboards after the data behind them changed.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, studentIDs ...uint)
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	classes   repository.ClassRepository
	dashboard DashboardInvalidator
	validator *validator.Validate
	sanitizer textSanitizer
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, classes repository.ClassRepository, dashboard DashboardInvalidator, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		classes:   classes,
		dashboard: dashboard,
		validator: validate,
		sanitizer: newTextSanitizer(),
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentService) List(ctx context.Context, actor Actor, page, pageSize int) (dto.AssignmentListResponse, error) {
	if !actor.IsTeacher() {
		return dto.AssignmentListResponse{}, ErrForbidden
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultAssignmentPageSize
	}
	if pageSize > maxAssignmentPageSize {
		pageSize = maxAssignmentPageSize
	}

	assignments, total, err := s.repo.ListByOwner(ctx, repository.AssignmentFilter{
		CreatedBy: actor.ID,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return dto.AssignmentListResponse{}, err
	}

	return dto.AssignmentListResponse{
		Items: dto.NewAssignmentResponseSlice(assignments),
		Pagination: dto.PaginationMeta{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
		},
	}, nil
}

func (s *assignmentService) Get(ctx context.Context, actor Actor, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.ownedAssignment(ctx, actor, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Create(ctx context.Context, actor Actor, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if !actor.IsTeacher() {
		return dto.AssignmentResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	title, questions, err := s.prepare(payload.Title, payload.Questions)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{
		Title:     title,
		CreatedBy: actor.ID,
		CreatedAt: s.now(),
	}
	assignment.SetQuestions(questions)

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("teacher_id", actor.ID).
		Int("questions", len(questions)).
		Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Update(ctx context.Context, actor Actor, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.ownedAssignment(ctx, actor, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	title, questions, err := s.prepare(payload.Title, payload.Questions)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment.Title = title
	assignment.SetQuestions(questions)
	assignment.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, &assignment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrAssignmentNotFound
		}
		return dto.AssignmentResponse{}, err
	}

	s.invalidateClasses(ctx, assignment.ClassIDs())
	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) AssignClasses(ctx context.Context, actor Actor, id uint, payload dto.AssignClassesRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.ownedAssignment(ctx, actor, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	classIDs := uniqueIDs(payload.ClassIDs)
	classes, err := s.classes.GetByIDs(ctx, classIDs)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}
	if len(classes) != len(classIDs) {
		return dto.AssignmentResponse{}, fmt.Errorf("%w: unknown class", ErrForbidden)
	}
	for _, class := range classes {
		if class.TeacherID != actor.ID {
			return dto.AssignmentResponse{}, fmt.Errorf("%w: class %d belongs to another teacher", ErrForbidden, class.ID)
		}
	}

	previous := assignment.ClassIDs()
	if err := s.repo.ReplaceClasses(ctx, assignment.ID, classIDs); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment.Classes = make([]models.AssignmentClass, 0, len(classIDs))
	for _, classID := range classIDs {
		assignment.Classes = append(assignment.Classes, models.AssignmentClass{AssignmentID: assignment.ID, ClassID: classID})
	}

	s.invalidateClasses(ctx, uniqueIDs(append(previous, classIDs...)))
	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Interface("class_ids", classIDs).
		Msg("assignment classes updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) ownedAssignment(ctx context.Context, actor Actor, id uint) (models.Assignment, error) {
	if !actor.IsTeacher() {
		return models.Assignment{}, ErrForbidden
	}

	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	if !assignment.OwnedBy(actor.ID) {
		return models.Assignment{}, ErrForbidden
	}

	return assignment, nil
}

func (s *assignmentService) prepare(title string, payloads []dto.QuestionPayload) (string, []quiz.Question, error) {
	return prepareQuestions(s.sanitizer, title, payloads)
}

func (s *assignmentService) invalidateClasses(ctx context.Context, classIDs []uint) {
	if s.dashboard == nil || len(classIDs) == 0 {
		return
	}

	registrations, err := s.classes.ListRegistrationsByClasses(ctx, classIDs)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to resolve students for dashboard invalidation")
		return
	}

	studentIDs := make([]uint, 0, len(registrations))
	for _, registration := range registrations {
		studentIDs = append(studentIDs, registration.StudentID)
	}
	s.dashboard.Invalidate(ctx, uniqueIDs(studentIDs)...)
}

// prepareQuestions sanitizes authored text and enforces the question invariants.
func prepareQuestions(sanitizer textSanitizer, title string, payloads []dto.QuestionPayload) (string, []quiz.Question, error) {
	cleanTitle := sanitizer.text(title)
	if cleanTitle == "" {
		return "", nil, &quiz.ValidationError{Index: -1, Reason: "title is required"}
	}

	questions := sanitizer.questions(dto.ToQuestions(payloads))
	if err := quiz.ValidateQuestions(questions); err != nil {
		return "", nil, err
	}

	return cleanTitle, questions, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}
