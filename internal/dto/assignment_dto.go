package dto

import (
	"time"

	"github.com/noah-isme/gema-tutor-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating an assignment.
type AssignmentCreateRequest struct {
	Title     string            `json:"title" validate:"required,max=255"`
	Questions []QuestionPayload `json:"questions" validate:"required,min=1,max=200,dive"`
}

// AssignmentUpdateRequest replaces the title and questions of an assignment.
type AssignmentUpdateRequest struct {
	Title     string            `json:"title" validate:"required,max=255"`
	Questions []QuestionPayload `json:"questions" validate:"required,min=1,max=200,dive"`
}

// AssignClassesRequest replaces the set of classes an assignment is assigned to.
type AssignClassesRequest struct {
	ClassIDs []uint `json:"class_ids" validate:"omitempty,max=100,dive,gt=0"`
}

// PaginationMeta captures pagination metadata for list responses.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// AssignmentResponse is the teacher view of an assignment.
type AssignmentResponse struct {
	ID         uint               `json:"id"`
	Title      string             `json:"title"`
	Questions  []QuestionResponse `json:"questions"`
	CreatedBy  uint               `json:"created_by"`
	TemplateID *uint              `json:"template_id,omitempty"`
	ClassIDs   []uint             `json:"class_ids"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// AssignmentListResponse wraps a page of assignments.
type AssignmentListResponse struct {
	Items      []AssignmentResponse `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:         model.ID,
		Title:      model.Title,
		Questions:  NewQuestionResponses(model.QuestionList()),
		CreatedBy:  model.CreatedBy,
		TemplateID: model.TemplateID,
		ClassIDs:   model.ClassIDs(),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
