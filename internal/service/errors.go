package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrTemplateNotFound indicates the requested template does not exist.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrSubmissionNotFound indicates the requested submission does not exist.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrForbidden indicates the actor may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotEnrolled indicates the student is not registered in any class the assignment is assigned to.
	ErrNotEnrolled = errors.New("student is not enrolled for this assignment")
	// ErrAlreadySubmitted matches AlreadySubmittedError.
	ErrAlreadySubmitted = errors.New("assignment already submitted")
	// ErrDuplicateSubmission matches DuplicateSubmissionError.
	ErrDuplicateSubmission = errors.New("duplicate submission")
)

// AlreadySubmittedError is returned when a student starts or submits an
// assignment they have already completed.
type AlreadySubmittedError struct {
	SubmissionID uint
}

func (e *AlreadySubmittedError) Error() string {
	return fmt.Sprintf("assignment already submitted as submission %d", e.SubmissionID)
}

func (e *AlreadySubmittedError) Is(target error) bool {
	return target == ErrAlreadySubmitted
}

// DuplicateSubmissionError is returned when the storage layer refused a
// second submission for the same (assignment, student).
type DuplicateSubmissionError struct {
	SubmissionID uint
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("duplicate submission, existing submission %d", e.SubmissionID)
}

func (e *DuplicateSubmissionError) Is(target error) bool {
	return target == ErrDuplicateSubmission
}

// ExistingSubmissionID extracts the id of the submission that blocked the
// operation, if err carries one.
func ExistingSubmissionID(err error) (uint, bool) {
	var already *AlreadySubmittedError
	if errors.As(err, &already) {
		return already.SubmissionID, true
	}
	var duplicate *DuplicateSubmissionError
	if errors.As(err, &duplicate) {
		return duplicate.SubmissionID, true
	}
	return 0, false
}
