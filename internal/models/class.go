package models

import "time"

// Class groups students under a teacher. Assignments reach students through classes.
type Class struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	Name          string              `gorm:"size:255;not null" json:"name"`
	TeacherID     uint                `gorm:"not null;index" json:"teacher_id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Registrations []ClassRegistration `gorm:"foreignKey:ClassID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// ClassRegistration records a student enrolled in a class.
type ClassRegistration struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClassID     uint      `gorm:"not null;uniqueIndex:idx_registration_class_student" json:"class_id"`
	StudentID   uint      `gorm:"not null;uniqueIndex:idx_registration_class_student;index" json:"student_id"`
	StudentName string    `gorm:"size:255;not null" json:"student_name"`
	CreatedAt   time.Time `json:"created_at"`
}
