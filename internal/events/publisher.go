package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-tutor-api/internal/observability"
)

// DefaultSubmissionGradedSubject is used when no subject is configured.
const DefaultSubmissionGradedSubject = "tutor.submission.graded"

const correlationHeader = "X-Correlation-ID"

// SubmissionGraded is emitted once a submission has been persisted.
type SubmissionGraded struct {
	SubmissionID   uint      `json:"submission_id"`
	AssignmentID   uint      `json:"assignment_id"`
	StudentID      uint      `json:"student_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
	CorrelationID  string    `json:"correlation_id,omitempty"`
}

// Publisher delivers domain events to interested consumers.
type Publisher interface {
	PublishSubmissionGraded(ctx context.Context, event SubmissionGraded) error
}

type msgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

type natsPublisher struct {
	conn    msgPublisher
	subject string
	logger  zerolog.Logger
}

// NewNATSPublisher publishes events on the given NATS connection. A nil
// connection yields a publisher that drops events.
func NewNATSPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) Publisher {
	if conn == nil {
		return NopPublisher{}
	}
	return newNATSPublisher(conn, subject, logger)
}

func newNATSPublisher(conn msgPublisher, subject string, logger zerolog.Logger) *natsPublisher {
	if subject == "" {
		subject = DefaultSubmissionGradedSubject
	}
	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) PublishSubmissionGraded(_ context.Context, event SubmissionGraded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode submission event: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = payload
	if event.CorrelationID != "" {
		msg.Header.Set(correlationHeader, event.CorrelationID)
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		observability.EventsPublished().WithLabelValues(p.subject, "error").Inc()
		return fmt.Errorf("publish submission event: %w", err)
	}

	observability.EventsPublished().WithLabelValues(p.subject, "ok").Inc()
	p.logger.Debug().
		Uint("submission_id", event.SubmissionID).
		Str("subject", p.subject).
		Msg("submission event published")
	return nil
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishSubmissionGraded(context.Context, SubmissionGraded) error { return nil }
