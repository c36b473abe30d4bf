package attempt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/noah-isme/gema-tutor-api/internal/quiz"
)

// ErrNotFound indicates the attempt handle is unknown, expired or tampered with.
var ErrNotFound = errors.New("attempt not found")

// Attempt is the context carried from rendering an assignment to grading it.
type Attempt struct {
	ID           string         `json:"id"`
	AssignmentID uint           `json:"assignment_id"`
	StudentID    uint           `json:"student_id"`
	Fingerprint  string         `json:"fingerprint"`
	Variables    quiz.Variables `json:"variables"`
	IssuedAt     time.Time      `json:"issued_at"`
}

// Store persists attempts between the render and the grade request. Save
// returns the opaque handle the client echoes back on submission.
type Store interface {
	Save(ctx context.Context, attempt Attempt) (string, error)
	Load(ctx context.Context, handle string) (Attempt, error)
	Discard(ctx context.Context, handle string) error
}

// Fingerprint identifies a question list so an attempt rendered before the
// assignment was edited can be detected.
func Fingerprint(questions []quiz.Question) string {
	data, err := json.Marshal(questions)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
