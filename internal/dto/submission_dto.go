package dto

import (
	"time"

	"github.com/noah-isme/gema-tutor-api/internal/models"
	"github.com/noah-isme/gema-tutor-api/internal/quiz"
)

// SubmissionResponse is the graded result of an attempt.
type SubmissionResponse struct {
	ID              uint                `json:"id"`
	AssignmentID    uint                `json:"assignment_id"`
	AssignmentTitle string              `json:"assignment_title,omitempty"`
	StudentID       uint                `json:"student_id"`
	SubmittedAt     time.Time           `json:"submitted_at"`
	Score           int                 `json:"score"`
	TotalQuestions  int                 `json:"total_questions"`
	Answers         []quiz.AnswerResult `json:"answers"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	answers := model.AnswerList()
	if answers == nil {
		answers = []quiz.AnswerResult{}
	}

	return SubmissionResponse{
		ID:              model.ID,
		AssignmentID:    model.AssignmentID,
		AssignmentTitle: model.Assignment.Title,
		StudentID:       model.StudentID,
		SubmittedAt:     model.SubmittedAt,
		Score:           model.Score,
		TotalQuestions:  model.TotalQuestions,
		Answers:         answers,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}
