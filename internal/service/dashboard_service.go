package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/models"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
)

// StudentDashboardService lists a student's assignments with their status.
type StudentDashboardService interface {
	DashboardInvalidator
	GetDashboard(ctx context.Context, actor Actor) (dto.StudentDashboardResponse, error)
}

type studentDashboardService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	classes     repository.ClassRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewStudentDashboardService builds the dashboard aggregator. A nil cache disables caching.
func NewStudentDashboardService(assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, classes repository.ClassRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StudentDashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &studentDashboardService{
		assignments: assignments,
		submissions: submissions,
		classes:     classes,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "student_dashboard_service").Logger(),
	}
}

func dashboardCacheKey(studentID uint) string {
	return fmt.Sprintf("dashboard:student:%d", studentID)
}

func (s *studentDashboardService) GetDashboard(ctx context.Context, actor Actor) (dto.StudentDashboardResponse, error) {
	if !actor.IsStudent() {
		return dto.StudentDashboardResponse{}, ErrForbidden
	}
	cacheKey := dashboardCacheKey(actor.ID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StudentDashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("student_id", actor.ID).Msg("dashboard cache hit")
				response.CacheHit = true
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	registrations, err := s.classes.ListRegistrationsByStudent(ctx, actor.ID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}
	classIDs := make([]uint, 0, len(registrations))
	for _, registration := range registrations {
		classIDs = append(classIDs, registration.ClassID)
	}

	assignments, err := s.assignments.ListByClasses(ctx, classIDs)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	submissions, err := s.submissions.ListByStudent(ctx, actor.ID)
	if err != nil {
		return dto.StudentDashboardResponse{}, err
	}

	response := buildDashboard(assignments, submissions)

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *studentDashboardService) Invalidate(ctx context.Context, studentIDs ...uint) {
	if s.cache == nil || len(studentIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(studentIDs))
	for _, id := range studentIDs {
		keys = append(keys, dashboardCacheKey(id))
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Int("students", len(keys)).Msg("failed to invalidate dashboard cache")
	}
}

func buildDashboard(assignments []models.Assignment, submissions []models.Submission) dto.StudentDashboardResponse {
	submissionByAssignment := make(map[uint]models.Submission, len(submissions))
	for _, submission := range submissions {
		submissionByAssignment[submission.AssignmentID] = submission
	}

	summary := dto.DashboardSummary{}
	items := make([]dto.DashboardAssignment, 0, len(assignments))
	var ratioTotal float64

	for _, assignment := range assignments {
		summary.TotalAssignments++
		item := dto.DashboardAssignment{
			AssignmentID: assignment.ID,
			Title:        assignment.Title,
			ClassIDs:     assignment.ClassIDs(),
			Status:       dto.DashboardStatusPending,
		}

		if submission, ok := submissionByAssignment[assignment.ID]; ok {
			id := submission.ID
			score := submission.Score
			total := submission.TotalQuestions
			submittedAt := submission.SubmittedAt
			item.Status = dto.DashboardStatusSubmitted
			item.SubmissionID = &id
			item.Score = &score
			item.TotalQuestions = &total
			item.SubmittedAt = &submittedAt

			summary.Submitted++
			if total > 0 {
				ratioTotal += float64(score) / float64(total)
			}
		} else {
			summary.Pending++
		}

		items = append(items, item)
	}

	if summary.Submitted > 0 {
		summary.AverageScore = ratioTotal / float64(summary.Submitted) * 100
	}

	return dto.StudentDashboardResponse{Summary: summary, Assignments: items}
}
