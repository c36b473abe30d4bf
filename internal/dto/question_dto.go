package dto

import "github.com/noah-isme/gema-tutor-api/internal/quiz"

// QuestionPayload is a question as authored by a teacher.
type QuestionPayload struct {
	Text    string      `json:"text" validate:"required,max=4000"`
	Type    string      `json:"type" validate:"required,oneof=single_response multiple_choice"`
	Answer  quiz.Answer `json:"answer"`
	Options []string    `json:"options" validate:"omitempty,max=26,dive,required,max=1000"`
}

// ToQuestions converts authored payloads into engine questions.
func ToQuestions(payloads []QuestionPayload) []quiz.Question {
	questions := make([]quiz.Question, 0, len(payloads))
	for _, payload := range payloads {
		questions = append(questions, quiz.Question{
			Text:    payload.Text,
			Type:    quiz.QuestionType(payload.Type),
			Answer:  payload.Answer,
			Options: payload.Options,
		})
	}
	return questions
}

// QuestionResponse exposes a question including its answer. Only the owning
// teacher receives it.
type QuestionResponse struct {
	Text    string      `json:"text"`
	Type    string      `json:"type"`
	Answer  quiz.Answer `json:"answer"`
	Options []string    `json:"options,omitempty"`
}

// NewQuestionResponses converts engine questions into DTOs.
func NewQuestionResponses(questions []quiz.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, QuestionResponse{
			Text:    q.Text,
			Type:    string(q.Type),
			Answer:  q.Answer,
			Options: q.Options,
		})
	}
	return responses
}

// RenderedQuestionResponse is a question as shown to a student: markers
// substituted and no answer.
type RenderedQuestionResponse struct {
	Index   int      `json:"index"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

// NewRenderedQuestionResponses converts a rendering into DTOs.
func NewRenderedQuestionResponses(questions []quiz.RenderedQuestion) []RenderedQuestionResponse {
	responses := make([]RenderedQuestionResponse, 0, len(questions))
	for i, q := range questions {
		responses = append(responses, RenderedQuestionResponse{
			Index:   i,
			Text:    q.Text,
			Type:    string(q.Type),
			Options: q.Options,
		})
	}
	return responses
}
