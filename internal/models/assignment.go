package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/gema-tutor-api/internal/quiz"
)

// Assignment is a teacher-authored list of questions that students attempt once.
type Assignment struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Title      string            `gorm:"size:255;not null" json:"title"`
	Questions  datatypes.JSON    `gorm:"type:json;not null" json:"-"`
	CreatedBy  uint              `gorm:"not null;index" json:"created_by"`
	TemplateID *uint             `gorm:"index" json:"template_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Classes    []AssignmentClass `gorm:"foreignKey:AssignmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// SetQuestions serializes the question list into the JSON storage column.
func (a *Assignment) SetQuestions(questions []quiz.Question) {
	a.Questions = encodeQuestions(questions)
}

// QuestionList deserializes the stored questions.
func (a Assignment) QuestionList() []quiz.Question {
	return decodeQuestions(a.Questions)
}

// OwnedBy reports whether the teacher created the assignment.
func (a Assignment) OwnedBy(teacherID uint) bool {
	return a.CreatedBy == teacherID
}

// ClassIDs lists the classes the assignment is assigned to.
func (a Assignment) ClassIDs() []uint {
	ids := make([]uint, 0, len(a.Classes))
	for _, link := range a.Classes {
		ids = append(ids, link.ClassID)
	}
	return ids
}

// AssignmentClass links an assignment to a class it is assigned to.
type AssignmentClass struct {
	AssignmentID uint      `gorm:"primaryKey" json:"assignment_id"`
	ClassID      uint      `gorm:"primaryKey;index" json:"class_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// AssignmentTemplate is a reusable question list that assignments can be generated from.
type AssignmentTemplate struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Questions datatypes.JSON `gorm:"type:json;not null" json:"-"`
	CreatedBy uint           `gorm:"not null;index" json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SetQuestions serializes the question list into the JSON storage column.
func (t *AssignmentTemplate) SetQuestions(questions []quiz.Question) {
	t.Questions = encodeQuestions(questions)
}

// QuestionList deserializes the stored questions.
func (t AssignmentTemplate) QuestionList() []quiz.Question {
	return decodeQuestions(t.Questions)
}

func encodeQuestions(questions []quiz.Question) datatypes.JSON {
	if questions == nil {
		questions = []quiz.Question{}
	}
	data, err := json.Marshal(questions)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(data)
}

func decodeQuestions(raw datatypes.JSON) []quiz.Question {
	if len(raw) == 0 {
		return nil
	}

	var questions []quiz.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil
	}
	return questions
}
