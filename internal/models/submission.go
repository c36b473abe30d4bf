package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/noah-isme/gema-tutor-api/internal/quiz"
)

// Submission is the graded, immutable result of one student's attempt.
// At most one exists per (assignment, student).
type Submission struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	AssignmentID   uint           `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID      uint           `gorm:"not null;uniqueIndex:idx_submission_assignment_student;index" json:"student_id"`
	Answers        datatypes.JSON `gorm:"type:json;not null" json:"-"`
	Score          int            `gorm:"not null" json:"score"`
	TotalQuestions int            `gorm:"not null" json:"total_questions"`
	SubmittedAt    time.Time      `gorm:"not null" json:"submitted_at"`
	CreatedAt      time.Time      `json:"created_at"`
	Assignment     Assignment     `gorm:"foreignKey:AssignmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// SetAnswers serializes the graded answers into the JSON storage column.
func (s *Submission) SetAnswers(answers []quiz.AnswerResult) {
	if answers == nil {
		answers = []quiz.AnswerResult{}
	}
	data, err := json.Marshal(answers)
	if err != nil {
		s.Answers = datatypes.JSON([]byte("[]"))
		return
	}
	s.Answers = datatypes.JSON(data)
}

// AnswerList deserializes the stored graded answers.
func (s Submission) AnswerList() []quiz.AnswerResult {
	if len(s.Answers) == 0 {
		return nil
	}

	var answers []quiz.AnswerResult
	if err := json.Unmarshal(s.Answers, &answers); err != nil {
		return nil
	}
	return answers
}
