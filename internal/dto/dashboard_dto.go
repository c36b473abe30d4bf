package dto

import "time"

// Dashboard assignment statuses.
const (
	DashboardStatusPending   = "pending"
	DashboardStatusSubmitted = "submitted"
)

// StudentDashboardResponse lists the assignments reachable by a student.
type StudentDashboardResponse struct {
	Summary     DashboardSummary      `json:"summary"`
	Assignments []DashboardAssignment `json:"assignments"`
	CacheHit    bool                  `json:"cache_hit"`
}

// DashboardSummary aggregates the student's progress.
type DashboardSummary struct {
	TotalAssignments int     `json:"total_assignments"`
	Submitted        int     `json:"submitted"`
	Pending          int     `json:"pending"`
	AverageScore     float64 `json:"average_score"`
}

// DashboardAssignment describes one assignment relative to the student.
type DashboardAssignment struct {
	AssignmentID   uint       `json:"assignment_id"`
	Title          string     `json:"title"`
	ClassIDs       []uint     `json:"class_ids"`
	Status         string     `json:"status"`
	SubmissionID   *uint      `json:"submission_id,omitempty"`
	Score          *int       `json:"score,omitempty"`
	TotalQuestions *int       `json:"total_questions,omitempty"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
}
