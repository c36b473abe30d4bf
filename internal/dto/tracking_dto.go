package dto

// TrackingResponse is the teacher's per-class submission matrix.
type TrackingResponse struct {
	Classes []ClassTracking `json:"classes"`
}

// ClassTracking holds one class's assignments and students.
type ClassTracking struct {
	ClassID     uint                `json:"class_id"`
	Name        string              `json:"name"`
	Assignments []TrackedAssignment `json:"assignments"`
	Students    []TrackedStudent    `json:"students"`
}

// TrackedAssignment is an assignment column of the matrix.
type TrackedAssignment struct {
	AssignmentID uint   `json:"assignment_id"`
	Title        string `json:"title"`
	Submitted    int    `json:"submitted"`
}

// TrackedStudent is a row of the matrix.
type TrackedStudent struct {
	StudentID uint            `json:"student_id"`
	Name      string          `json:"name"`
	Results   []TrackedResult `json:"results"`
}

// TrackedResult is one cell: the student's result for one assignment.
type TrackedResult struct {
	AssignmentID   uint  `json:"assignment_id"`
	Submitted      bool  `json:"submitted"`
	SubmissionID   *uint `json:"submission_id,omitempty"`
	Score          *int  `json:"score,omitempty"`
	TotalQuestions *int  `json:"total_questions,omitempty"`
}
