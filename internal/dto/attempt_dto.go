package dto

import "time"

// AttemptResponse is returned when a student starts an attempt. AttemptID must
// be sent back unchanged with the answers.
type AttemptResponse struct {
	AttemptID    string                     `json:"attempt_id"`
	AssignmentID uint                       `json:"assignment_id"`
	Title        string                     `json:"title"`
	Questions    []RenderedQuestionResponse `json:"questions"`
	IssuedAt     time.Time                  `json:"issued_at"`
}

// SubmitAttemptRequest carries raw answers keyed by question index. Signed
// attempt handles grow with the variable count and are bounded by the body limit.
type SubmitAttemptRequest struct {
	AttemptID string         `json:"attempt_id" validate:"required"`
	Answers   map[int]string `json:"answers" validate:"omitempty,max=200,dive,max=1000"`
}
