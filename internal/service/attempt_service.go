package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-tutor-api/internal/attempt"
	"github.com/noah-isme/gema-tutor-api/internal/dto"
	"github.com/noah-isme/gema-tutor-api/internal/events"
	"github.com/noah-isme/gema-tutor-api/internal/middleware"
	"github.com/noah-isme/gema-tutor-api/internal/models"
	"github.com/noah-isme/gema-tutor-api/internal/observability"
	"github.com/noah-isme/gema-tutor-api/internal/quiz"
	"github.com/noah-isme/gema-tutor-api/internal/repository"
)

// AttemptService drives the render-then-grade lifecycle of an assignment
// attempt: NOT_STARTED -> RENDERED -> SUBMITTED.
type AttemptService interface {
	Start(ctx context.Context, actor Actor, assignmentID uint) (dto.AttemptResponse, error)
	Submit(ctx context.Context, actor Actor, assignmentID uint, payload dto.SubmitAttemptRequest) (dto.SubmissionResponse, error)
}

// AttemptServiceConfig groups the collaborators of the attempt service.
type AttemptServiceConfig struct {
	Assignments repository.AssignmentRepository
	Submissions repository.SubmissionRepository
	Classes     repository.ClassRepository
	Store       attempt.Store
	Publisher   events.Publisher
	Dashboard   DashboardInvalidator
	Validator   *validator.Validate
	Source      quiz.Source
	Logger      zerolog.Logger
}

type attemptService struct {
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	classes     repository.ClassRepository
	store       attempt.Store
	publisher   events.Publisher
	dashboard   DashboardInvalidator
	validator   *validator.Validate
	source      quiz.Source
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAttemptService builds the attempt service.
func NewAttemptService(cfg AttemptServiceConfig) AttemptService {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	source := cfg.Source
	if source == nil {
		source = quiz.DefaultSource
	}

	return &attemptService{
		assignments: cfg.Assignments,
		submissions: cfg.Submissions,
		classes:     cfg.Classes,
		store:       cfg.Store,
		publisher:   publisher,
		dashboard:   cfg.Dashboard,
		validator:   cfg.Validator,
		source:      source,
		tracer:      otel.Tracer("github.com/noah-isme/gema-tutor-api/internal/service/attempt"),
		logger:      cfg.Logger.With().Str("component", "attempt_service").Logger(),
		now:         time.Now,
	}
}

func (s *attemptService) Start(ctx context.Context, actor Actor, assignmentID uint) (dto.AttemptResponse, error) {
	if !actor.IsStudent() {
		return dto.AttemptResponse{}, ErrForbidden
	}

	spanCtx, span := s.tracer.Start(ctx, "attempts.render", trace.WithAttributes(
		attribute.Int64("assignment.id", int64(assignmentID)),
		attribute.Int64("student.id", int64(actor.ID)),
	))
	defer span.End()

	assignment, err := s.eligibleAssignment(spanCtx, actor, assignmentID)
	if err != nil {
		span.RecordError(err)
		s.recordRejection(err)
		return dto.AttemptResponse{}, err
	}

	questions := assignment.QuestionList()
	rendering := quiz.Render(questions, s.source)

	issuedAt := s.now().UTC()
	handle, err := s.store.Save(spanCtx, attempt.Attempt{
		AssignmentID: assignment.ID,
		StudentID:    actor.ID,
		Fingerprint:  attempt.Fingerprint(questions),
		Variables:    rendering.Variables,
		IssuedAt:     issuedAt,
	})
	if err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Uint("assignment_id", assignment.ID).Msg("failed to store attempt")
		return dto.AttemptResponse{}, fmt.Errorf("store attempt: %w", err)
	}

	observability.AttemptsStarted().Inc()
	s.logger.Debug().
		Uint("assignment_id", assignment.ID).
		Uint("student_id", actor.ID).
		Int("variables", len(rendering.Variables)).
		Msg("attempt started")

	return dto.AttemptResponse{
		AttemptID:    handle,
		AssignmentID: assignment.ID,
		Title:        assignment.Title,
		Questions:    dto.NewRenderedQuestionResponses(rendering.Questions),
		IssuedAt:     issuedAt,
	}, nil
}

func (s *attemptService) Submit(ctx context.Context, actor Actor, assignmentID uint, payload dto.SubmitAttemptRequest) (dto.SubmissionResponse, error) {
	if !actor.IsStudent() {
		return dto.SubmissionResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	spanCtx, span := s.tracer.Start(ctx, "attempts.grade", trace.WithAttributes(
		attribute.Int64("assignment.id", int64(assignmentID)),
		attribute.Int64("student.id", int64(actor.ID)),
	))
	defer span.End()

	response, err := s.submit(spanCtx, actor, assignmentID, payload)
	if err != nil {
		span.RecordError(err)
		s.recordRejection(err)
		return dto.SubmissionResponse{}, err
	}

	span.SetAttributes(attribute.Int("submission.score", response.Score))
	return response, nil
}

func (s *attemptService) submit(ctx context.Context, actor Actor, assignmentID uint, payload dto.SubmitAttemptRequest) (dto.SubmissionResponse, error) {
	carried, err := s.store.Load(ctx, payload.AttemptID)
	if err != nil {
		if errors.Is(err, attempt.ErrNotFound) {
			return dto.SubmissionResponse{}, &quiz.InvalidAttemptError{Reason: "attempt not found or expired"}
		}
		return dto.SubmissionResponse{}, fmt.Errorf("load attempt: %w", err)
	}
	if carried.AssignmentID != assignmentID || carried.StudentID != actor.ID {
		return dto.SubmissionResponse{}, &quiz.InvalidAttemptError{Reason: "attempt belongs to another assignment or student"}
	}

	assignment, err := s.eligibleAssignment(ctx, actor, assignmentID)
	if err != nil {
		if errors.Is(err, ErrAlreadySubmitted) {
			s.discard(ctx, payload.AttemptID)
		}
		return dto.SubmissionResponse{}, err
	}

	questions := assignment.QuestionList()
	if attempt.Fingerprint(questions) != carried.Fingerprint {
		return dto.SubmissionResponse{}, &quiz.InvalidAttemptError{Reason: "assignment changed after the attempt started"}
	}

	result, err := quiz.Grade(questions, carried.Variables, payload.Answers)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	for _, fallback := range result.Fallbacks {
		observability.FormulaFallbacks().Inc()
		s.logger.Debug().
			Uint("assignment_id", assignment.ID).
			Int("question_index", fallback.Index).
			Err(fallback.Err).
			Msg("answer compared literally")
	}

	submission := models.Submission{
		AssignmentID:   assignment.ID,
		StudentID:      actor.ID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		SubmittedAt:    s.now().UTC(),
	}
	submission.SetAnswers(result.Answers)

	created, err := s.submissions.CreateIfAbsent(ctx, &submission)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	if !created {
		duplicate := &DuplicateSubmissionError{}
		if existing, lookupErr := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, actor.ID); lookupErr == nil {
			duplicate.SubmissionID = existing.ID
		}
		return dto.SubmissionResponse{}, duplicate
	}
	submission.Assignment = assignment

	s.discard(ctx, payload.AttemptID)
	s.afterSubmit(ctx, submission)

	return dto.NewSubmissionResponse(submission), nil
}

// eligibleAssignment loads the assignment and checks the student may attempt
// it and has not already submitted it.
func (s *attemptService) eligibleAssignment(ctx context.Context, actor Actor, assignmentID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	registered, err := s.classes.IsRegistered(ctx, actor.ID, assignment.ClassIDs())
	if err != nil {
		return models.Assignment{}, err
	}
	if !registered {
		return models.Assignment{}, ErrNotEnrolled
	}

	existing, err := s.submissions.GetByAssignmentAndStudent(ctx, assignment.ID, actor.ID)
	switch {
	case err == nil:
		return models.Assignment{}, &AlreadySubmittedError{SubmissionID: existing.ID}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (s *attemptService) afterSubmit(ctx context.Context, submission models.Submission) {
	observability.SubmissionsGraded().Inc()
	if submission.TotalQuestions > 0 {
		observability.SubmissionScoreRatio().Observe(float64(submission.Score) / float64(submission.TotalQuestions))
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", submission.AssignmentID).
		Uint("student_id", submission.StudentID).
		Int("score", submission.Score).
		Int("total_questions", submission.TotalQuestions).
		Msg("submission graded")

	event := events.SubmissionGraded{
		SubmissionID:   submission.ID,
		AssignmentID:   submission.AssignmentID,
		StudentID:      submission.StudentID,
		Score:          submission.Score,
		TotalQuestions: submission.TotalQuestions,
		SubmittedAt:    submission.SubmittedAt,
		CorrelationID:  middleware.CorrelationIDFromContext(ctx),
	}
	if err := s.publisher.PublishSubmissionGraded(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("failed to publish submission event")
	}

	if s.dashboard != nil {
		s.dashboard.Invalidate(ctx, submission.StudentID)
	}
}

func (s *attemptService) discard(ctx context.Context, handle string) {
	if err := s.store.Discard(ctx, handle); err != nil {
		s.logger.Warn().Err(err).Msg("failed to discard attempt")
	}
}

func (s *attemptService) recordRejection(err error) {
	reason := ""
	switch {
	case errors.Is(err, quiz.ErrInvalidAttempt):
		reason = "invalid_attempt"
	case errors.Is(err, ErrAlreadySubmitted), errors.Is(err, ErrDuplicateSubmission):
		reason = "already_submitted"
	case errors.Is(err, ErrNotEnrolled):
		reason = "not_enrolled"
	}
	if reason != "" {
		observability.AttemptsRejected().WithLabelValues(reason).Inc()
	}
}
