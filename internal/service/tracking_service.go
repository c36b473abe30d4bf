package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/models"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
)

// TrackingService builds the teacher's class-by-class submission overview.
type TrackingService interface {
	Track(ctx context.Context, actor Actor) (dto.TrackingResponse, error)
}

type trackingService struct {
	classes     repository.ClassRepository
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	logger      zerolog.Logger
}

// NewTrackingService builds the tracking service.
func NewTrackingService(classes repository.ClassRepository, assignments repository.AssignmentRepository, submissions repository.SubmissionRepository, logger zerolog.Logger) TrackingService {
	return &trackingService{
		classes:     classes,
		assignments: assignments,
		submissions: submissions,
		logger:      logger.With().Str("component", "tracking_service").Logger(),
	}
}

func (s *trackingService) Track(ctx context.Context, actor Actor) (dto.TrackingResponse, error) {
	if !actor.IsTeacher() {
		return dto.TrackingResponse{}, ErrForbidden
	}

	classes, err := s.classes.ListByTeacher(ctx, actor.ID)
	if err != nil {
		return dto.TrackingResponse{}, err
	}
	if len(classes) == 0 {
		return dto.TrackingResponse{Classes: []dto.ClassTracking{}}, nil
	}

	classIDs := make([]uint, 0, len(classes))
	for _, class := range classes {
		classIDs = append(classIDs, class.ID)
	}

	assignments, err := s.assignments.ListByClasses(ctx, classIDs)
	if err != nil {
		return dto.TrackingResponse{}, err
	}
	registrations, err := s.classes.ListRegistrationsByClasses(ctx, classIDs)
	if err != nil {
		return dto.TrackingResponse{}, err
	}

	assignmentIDs := make([]uint, 0, len(assignments))
	for _, assignment := range assignments {
		assignmentIDs = append(assignmentIDs, assignment.ID)
	}
	submissions, err := s.submissions.ListByAssignments(ctx, assignmentIDs)
	if err != nil {
		return dto.TrackingResponse{}, err
	}

	type cellKey struct{ assignmentID, studentID uint }
	cells := make(map[cellKey]models.Submission, len(submissions))
	for _, submission := range submissions {
		cells[cellKey{submission.AssignmentID, submission.StudentID}] = submission
	}

	response := dto.TrackingResponse{Classes: make([]dto.ClassTracking, 0, len(classes))}
	for _, class := range classes {
		var classAssignments []models.Assignment
		for _, assignment := range assignments {
			for _, linked := range assignment.ClassIDs() {
				if linked == class.ID {
					classAssignments = append(classAssignments, assignment)
					break
				}
			}
		}

		tracking := dto.ClassTracking{
			ClassID:     class.ID,
			Name:        class.Name,
			Assignments: make([]dto.TrackedAssignment, 0, len(classAssignments)),
			Students:    []dto.TrackedStudent{},
		}
		columns := make(map[uint]int, len(classAssignments))
		for i, assignment := range classAssignments {
			columns[assignment.ID] = i
			tracking.Assignments = append(tracking.Assignments, dto.TrackedAssignment{
				AssignmentID: assignment.ID,
				Title:        assignment.Title,
			})
		}

		for _, registration := range registrations {
			if registration.ClassID != class.ID {
				continue
			}

			student := dto.TrackedStudent{
				StudentID: registration.StudentID,
				Name:      registration.StudentName,
				Results:   make([]dto.TrackedResult, 0, len(classAssignments)),
			}
			for _, assignment := range classAssignments {
				result := dto.TrackedResult{AssignmentID: assignment.ID}
				if submission, ok := cells[cellKey{assignment.ID, registration.StudentID}]; ok {
					id := submission.ID
					score := submission.Score
					total := submission.TotalQuestions
					result.Submitted = true
					result.SubmissionID = &id
					result.Score = &score
					result.TotalQuestions = &total
					tracking.Assignments[columns[assignment.ID]].Submitted++
				}
				student.Results = append(student.Results, result)
			}
			tracking.Students = append(tracking.Students, student)
		}

		response.Classes = append(response.Classes, tracking)
	}

	s.logger.Debug().Uint("teacher_id", actor.ID).Int("classes", len(classes)).Msg("tracking built")

	return response, nil
}
