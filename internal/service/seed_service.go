package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/models"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// SeedService provisions rosters for environments without a school system feed.
type SeedService interface {
	SeedRoster(ctx context.Context, token string, payload dto.RosterSeedRequest) (dto.RosterSeedResponse, error)
}

type seedService struct {
	roster    repository.RosterRepository
	dashboard DashboardInvalidator
	validator *validator.Validate
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(roster repository.RosterRepository, dashboard DashboardInvalidator, validate *validator.Validate, enabled bool, token string, logger zerolog.Logger) SeedService {
	return &seedService{
		roster:    roster,
		dashboard: dashboard,
		validator: validate,
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}
}

func (s *seedService) SeedRoster(ctx context.Context, token string, payload dto.RosterSeedRequest) (dto.RosterSeedResponse, error) {
	if !s.enabled {
		return dto.RosterSeedResponse{}, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return dto.RosterSeedResponse{}, ErrSeedUnauthorized
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.RosterSeedResponse{}, err
	}

	classes := make([]models.Class, 0, len(payload.Classes))
	var registrations []models.ClassRegistration
	var studentIDs []uint
	for _, class := range payload.Classes {
		classes = append(classes, models.Class{
			ID:        class.ID,
			Name:      strings.TrimSpace(class.Name),
			TeacherID: class.TeacherID,
		})
		for _, student := range class.Students {
			registrations = append(registrations, models.ClassRegistration{
				ClassID:     class.ID,
				StudentID:   student.ID,
				StudentName: strings.TrimSpace(student.Name),
			})
			studentIDs = append(studentIDs, student.ID)
		}
	}

	classCount, err := s.roster.UpsertClasses(ctx, classes)
	if err != nil {
		return dto.RosterSeedResponse{}, err
	}
	registrationCount, err := s.roster.UpsertRegistrations(ctx, registrations)
	if err != nil {
		return dto.RosterSeedResponse{}, err
	}

	if s.dashboard != nil && len(studentIDs) > 0 {
		s.dashboard.Invalidate(ctx, uniqueIDs(studentIDs)...)
	}

	s.logger.Info().Int64("classes", classCount).Int64("registrations", registrationCount).Msg("roster seeded")

	return dto.RosterSeedResponse{Classes: classCount, Registrations: registrationCount}, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}
