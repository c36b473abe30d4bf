package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// QuestionType enumerates the supported answer formats.
type QuestionType string

const (
	// TypeSingleResponse expects a free-text answer, optionally computed from a formula.
	TypeSingleResponse QuestionType = "single_response"
	// TypeMultipleChoice expects the index of the correct option.
	TypeMultipleChoice QuestionType = "multiple_choice"
)

// Question is a single authored question embedded in an assignment or template.
type Question struct {
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Answer  Answer       `json:"answer"`
	Options []string     `json:"options,omitempty"`
}

// Answer holds either a text answer (literal or formula) or a concrete
// integer. On the wire it is a JSON string, number or null.
type Answer struct {
	text   string
	number int64
	kind   answerKind
}

type answerKind uint8

const (
	answerNone answerKind = iota
	answerText
	answerNumber
)

// TextAnswer builds a literal or formula answer.
func TextAnswer(value string) Answer {
	return Answer{text: value, kind: answerText}
}

// IndexAnswer builds a concrete integer answer, used for option indexes.
func IndexAnswer(value int) Answer {
	return Answer{number: int64(value), kind: answerNumber}
}

// IsZero reports whether no answer was set.
func (a Answer) IsZero() bool {
	return a.kind == answerNone
}

// Formula returns the text form of the answer when it was authored as a string.
func (a Answer) Formula() (string, bool) {
	return a.text, a.kind == answerText
}

// Number returns the concrete integer answer.
func (a Answer) Number() (int64, bool) {
	return a.number, a.kind == answerNumber
}

func (a Answer) String() string {
	switch a.kind {
	case answerText:
		return a.text
	case answerNumber:
		return strconv.FormatInt(a.number, 10)
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case answerText:
		return json.Marshal(a.text)
	case answerNumber:
		return []byte(strconv.FormatInt(a.number, 10)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = Answer{}
		return nil
	case data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*a = TextAnswer(text)
		return nil
	default:
		number, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("answer must be a string or an integer: %w", err)
		}
		*a = Answer{number: number, kind: answerNumber}
		return nil
	}
}

// ValidationError reports an authoring invariant violated by a question. A
// negative Index refers to the assignment as a whole.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Reason
	}
	return fmt.Sprintf("question %d: %s", e.Index+1, e.Reason)
}

// ValidateQuestions checks the authoring invariants of a question list.
func ValidateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return &ValidationError{Index: 0, Reason: "at least one question is required"}
	}

	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return &ValidationError{Index: i, Reason: "question text is required"}
		}

		switch q.Type {
		case TypeSingleResponse:
			if len(q.Options) > 0 {
				return &ValidationError{Index: i, Reason: "single response questions cannot have options"}
			}
			if strings.TrimSpace(q.Answer.String()) == "" {
				return &ValidationError{Index: i, Reason: "an answer is required"}
			}
		case TypeMultipleChoice:
			if len(q.Options) == 0 {
				return &ValidationError{Index: i, Reason: "a multiple-choice question must have options"}
			}
			index, ok := q.Answer.Number()
			if !ok {
				return &ValidationError{Index: i, Reason: "a multiple-choice question must have a selected correct answer"}
			}
			if index < 0 || index >= int64(len(q.Options)) {
				return &ValidationError{Index: i, Reason: fmt.Sprintf("correct answer index %d is out of range", index)}
			}
		default:
			return &ValidationError{Index: i, Reason: fmt.Sprintf("unsupported question type %q", q.Type)}
		}
	}

	return nil
}
