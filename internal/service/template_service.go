package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/models"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
)

// TemplateService manages reusable assignment templates.
type TemplateService interface {
	List(ctx context.Context, actor Actor) ([]dto.TemplateResponse, error)
	Create(ctx context.Context, actor Actor, payload dto.TemplateCreateRequest) (dto.TemplateResponse, error)
	GenerateAssignment(ctx context.Context, actor Actor, templateID uint) (dto.AssignmentResponse, error)
}

type templateService struct {
	templates   repository.TemplateRepository
	assignments repository.AssignmentRepository
	validator   *validator.Validate
	sanitizer   textSanitizer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewTemplateService builds the template service.
func NewTemplateService(templates repository.TemplateRepository, assignments repository.AssignmentRepository, validate *validator.Validate, logger zerolog.Logger) TemplateService {
	return &templateService{
		templates:   templates,
		assignments: assignments,
		validator:   validate,
		sanitizer:   newTextSanitizer(),
		logger:      logger.With().Str("component", "template_service").Logger(),
		now:         time.Now,
	}
}

func (s *templateService) List(ctx context.Context, actor Actor) ([]dto.TemplateResponse, error) {
	if !actor.IsTeacher() {
		return nil, ErrForbidden
	}

	templates, err := s.templates.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	return dto.NewTemplateResponseSlice(templates), nil
}

func (s *templateService) Create(ctx context.Context, actor Actor, payload dto.TemplateCreateRequest) (dto.TemplateResponse, error) {
	if !actor.IsTeacher() {
		return dto.TemplateResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.TemplateResponse{}, err
	}

	title, questions, err := prepareQuestions(s.sanitizer, payload.Title, payload.Questions)
	if err != nil {
		return dto.TemplateResponse{}, err
	}

	template := models.AssignmentTemplate{
		Title:     title,
		CreatedBy: actor.ID,
		CreatedAt: s.now(),
	}
	template.SetQuestions(questions)

	if err := s.templates.Create(ctx, &template); err != nil {
		return dto.TemplateResponse{}, err
	}

	s.logger.Info().Uint("template_id", template.ID).Uint("teacher_id", actor.ID).Msg("template created")

	return dto.NewTemplateResponse(template), nil
}

func (s *templateService) GenerateAssignment(ctx context.Context, actor Actor, templateID uint) (dto.AssignmentResponse, error) {
	if !actor.IsTeacher() {
		return dto.AssignmentResponse{}, ErrForbidden
	}

	template, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AssignmentResponse{}, ErrTemplateNotFound
		}
		return dto.AssignmentResponse{}, err
	}
	if template.CreatedBy != actor.ID {
		return dto.AssignmentResponse{}, ErrForbidden
	}

	id := template.ID
	assignment := models.Assignment{
		Title:      template.Title,
		Questions:  template.Questions,
		CreatedBy:  actor.ID,
		TemplateID: &id,
		CreatedAt:  s.now(),
	}

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("template_id", template.ID).
		Msg("assignment generated from template")

	return dto.NewAssignmentResponse(assignment), nil
}
