package dto

import (
	"time"

	"github.com/noah-isme/gema-tutor-api/internal/models"
)

// TemplateCreateRequest describes the payload for creating an assignment template.
type TemplateCreateRequest struct {
	Title     string            `json:"title" validate:"required,max=255"`
	Questions []QuestionPayload `json:"questions" validate:"required,min=1,max=200,dive"`
}

// TemplateResponse is the serialized template.
type TemplateResponse struct {
	ID        uint               `json:"id"`
	Title     string             `json:"title"`
	Questions []QuestionResponse `json:"questions"`
	CreatedBy uint               `json:"created_by"`
	CreatedAt time.Time          `json:"created_at"`
}

// NewTemplateResponse converts a model into a DTO.
func NewTemplateResponse(model models.AssignmentTemplate) TemplateResponse {
	return TemplateResponse{
		ID:        model.ID,
		Title:     model.Title,
		Questions: NewQuestionResponses(model.QuestionList()),
		CreatedBy: model.CreatedBy,
		CreatedAt: model.CreatedAt,
	}
}

// NewTemplateResponseSlice converts a slice of models into DTOs.
func NewTemplateResponseSlice(templates []models.AssignmentTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, 0, len(templates))
	for _, template := range templates {
		responses = append(responses, NewTemplateResponse(template))
	}
	return responses
}
