package quiz

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Expected is the concrete correct answer for one question of an attempt.
type Expected struct {
	text   string
	number *Value
}

// ExpectedText wraps a literal expected answer.
func ExpectedText(text string) Expected {
	return Expected{text: text}
}

// ExpectedValue wraps a numeric expected answer.
func ExpectedValue(v Value) Expected {
	return Expected{text: v.String(), number: &v}
}

// String returns the textual form used for single-response comparison.
func (e Expected) String() string {
	return e.text
}

// Index returns the expected option index when the answer is an integer.
func (e Expected) Index() (int64, bool) {
	if e.number == nil {
		return 0, false
	}
	return e.number.Int64()
}

// Compare reports whether a raw submission matches the expected answer for
// the given question type. Unknown types are never correct.
func Compare(questionType QuestionType, expected Expected, submitted string) bool {
	switch questionType {
	case TypeSingleResponse:
		return compareText(expected.String(), submitted)
	case TypeMultipleChoice:
		return compareIndex(expected, submitted)
	default:
		return false
	}
}

func compareText(expected, submitted string) bool {
	submitted = strings.TrimSpace(submitted)
	if submitted == "" {
		return false
	}
	// cases.Caser is stateful, so each call gets its own.
	fold := cases.Fold()
	return fold.String(submitted) == fold.String(strings.TrimSpace(expected))
}

func compareIndex(expected Expected, submitted string) bool {
	want, ok := expected.Index()
	if !ok {
		return false
	}
	got, err := strconv.ParseInt(strings.TrimSpace(submitted), 10, 64)
	if err != nil {
		return false
	}
	return got == want
}
