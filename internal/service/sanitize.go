package service

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/gema-tutor-api/internal/quiz"
)

var tagStart = regexp.MustCompile(`^<(/?)([A-Za-z][A-Za-z0-9-]*)`)

var voidElements = map[string]struct{}{
	"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
	"input": {}, "link": {}, "meta": {}, "source": {}, "track": {}, "wbr": {},
}

// textSanitizer strips markup from authored text. Entities produced by the
// policy are unescaped again because text is rendered as plain text.
type textSanitizer struct {
	policy *bluemonday.Policy
}

func newTextSanitizer() textSanitizer {
	return textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s textSanitizer) text(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(escapeLooseBrackets(value))))
}

// questions cleans question text and options. Answers are compared against
// student input verbatim, so they are only trimmed.
func (s textSanitizer) questions(questions []quiz.Question) []quiz.Question {
	cleaned := make([]quiz.Question, 0, len(questions))
	for _, q := range questions {
		q.Text = s.text(q.Text)
		if formula, ok := q.Answer.Formula(); ok {
			q.Answer = quiz.TextAnswer(strings.TrimSpace(formula))
		}
		if len(q.Options) > 0 {
			options := make([]string, 0, len(q.Options))
			for _, option := range q.Options {
				options = append(options, s.text(option))
			}
			q.Options = options
		}
		cleaned = append(cleaned, q)
	}
	return cleaned
}

// escapeLooseBrackets escapes every "<" that does not open a real tag so
// inequalities such as "p<q or q>p" survive the policy. A tag is real when it
// is a comment, a closing tag, a void or self-closing element, or an element
// whose closing tag appears later in the text.
func escapeLooseBrackets(value string) string {
	if !strings.Contains(value, "<") {
		return value
	}

	lower := strings.ToLower(value)
	var b strings.Builder
	b.Grow(len(value) + 8)
	for i := 0; i < len(value); i++ {
		if value[i] != '<' {
			b.WriteByte(value[i])
			continue
		}
		if isRealTag(value[i:], lower[i:]) {
			b.WriteByte('<')
			continue
		}
		b.WriteString("&lt;")
	}
	return b.String()
}

func isRealTag(rest, lowerRest string) bool {
	if strings.HasPrefix(rest, "<!--") {
		return true
	}

	match := tagStart.FindStringSubmatch(rest)
	if match == nil {
		return false
	}
	end := strings.IndexByte(rest, '>')
	if end < 0 || strings.IndexByte(rest[1:end], '<') >= 0 {
		return false
	}

	closing := match[1] == "/"
	name := strings.ToLower(match[2])
	if closing {
		return true
	}
	if _, ok := voidElements[name]; ok {
		return true
	}
	if strings.HasSuffix(rest[:end], "/") {
		return true
	}
	return strings.Contains(lowerRest[end:], "</"+name)
}
