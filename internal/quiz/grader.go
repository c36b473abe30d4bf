package quiz

import (
	"errors"
	"fmt"
)

// ErrInvalidAttempt matches every InvalidAttemptError.
var ErrInvalidAttempt = errors.New("invalid attempt")

// InvalidAttemptError reports answers or a variable context that do not
// belong to the assignment being graded.
type InvalidAttemptError struct {
	Reason string
}

func (e *InvalidAttemptError) Error() string {
	return "invalid attempt: " + e.Reason
}

// Is makes errors.Is(err, ErrInvalidAttempt) succeed.
func (e *InvalidAttemptError) Is(target error) bool {
	return target == ErrInvalidAttempt
}

func invalidAttempt(format string, args ...interface{}) error {
	return &InvalidAttemptError{Reason: fmt.Sprintf(format, args...)}
}

// RenderedQuestion is what a student sees: substituted text and options, no answer.
type RenderedQuestion struct {
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
}

// Rendering is the output of one render pass over an assignment.
type Rendering struct {
	Questions []RenderedQuestion
	Variables Variables
}

// Render substitutes random-range markers across all questions with a single
// generator, so variable names are unique for the whole assignment.
func Render(questions []Question, src Source) Rendering {
	gen := NewGenerator(src)
	rendered := make([]RenderedQuestion, 0, len(questions))
	for _, q := range questions {
		var options []string
		if len(q.Options) > 0 {
			options = append([]string(nil), q.Options...)
		}
		rendered = append(rendered, RenderedQuestion{
			Text:    gen.Process(q.Text),
			Type:    q.Type,
			Options: options,
		})
	}

	return Rendering{Questions: rendered, Variables: gen.Variables()}
}

// RenderWith reproduces the question texts a student saw from the variable
// context generated for them. A context that does not fit the questions is an
// InvalidAttemptError.
func RenderWith(questions []Question, vars Variables) ([]string, error) {
	r := &replayer{vars: vars}
	texts := make([]string, 0, len(questions))
	for _, q := range questions {
		texts = append(texts, r.process(q.Text))
	}
	if err := r.finish(); err != nil {
		return nil, err
	}
	return texts, nil
}

// ExpectedAnswer resolves the correct answer of a question for the given
// context. String answers are evaluated as formulas; when evaluation fails
// the literal string is used and the evaluation error is returned alongside.
func ExpectedAnswer(q Question, vars Variables) (Expected, error) {
	if number, ok := q.Answer.Number(); ok {
		return ExpectedValue(IntValue(number)), nil
	}

	formula, ok := q.Answer.Formula()
	if !ok {
		return ExpectedText(""), nil
	}

	value, err := Evaluate(formula, vars)
	if err != nil {
		return ExpectedText(formula), err
	}
	return ExpectedValue(value), nil
}

// AnswerResult is the graded entry for one question.
type AnswerResult struct {
	QuestionText  string  `json:"question_text"`
	StudentAnswer *string `json:"student_answer"`
	IsCorrect     bool    `json:"is_correct"`
}

// FormulaFallback records a question whose formula could not be evaluated.
type FormulaFallback struct {
	Index int
	Err   error
}

// Result is the outcome of grading one attempt.
type Result struct {
	Answers        []AnswerResult
	Score          int
	TotalQuestions int
	Fallbacks      []FormulaFallback
}

// Grade scores raw answers (keyed by question index) against the questions
// using the variable context generated when they were rendered. It either
// scores every question or returns an error.
func Grade(questions []Question, vars Variables, answers map[int]string) (Result, error) {
	for index := range answers {
		if index < 0 || index >= len(questions) {
			return Result{}, invalidAttempt("answer for question %d but assignment has %d questions", index, len(questions))
		}
	}

	texts, err := RenderWith(questions, vars)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Answers:        make([]AnswerResult, 0, len(questions)),
		TotalQuestions: len(questions),
	}

	for i, q := range questions {
		expected, evalErr := ExpectedAnswer(q, vars)
		if evalErr != nil {
			result.Fallbacks = append(result.Fallbacks, FormulaFallback{Index: i, Err: evalErr})
		}

		entry := AnswerResult{QuestionText: texts[i]}
		if raw, ok := answers[i]; ok {
			submitted := raw
			entry.StudentAnswer = &submitted
			entry.IsCorrect = Compare(q.Type, expected, raw)
		}
		if entry.IsCorrect {
			result.Score++
		}

		result.Answers = append(result.Answers, entry)
	}

	return result, nil
}
