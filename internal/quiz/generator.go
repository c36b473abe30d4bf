package quiz

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
)

// markerPattern matches any {{...}} placeholder; only range(...) is understood today.
var markerPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Source yields uniformly distributed random numbers.
type Source interface {
	Uint64() uint64
	Uint64N(n uint64) uint64
}

type globalSource struct{}

func (globalSource) Uint64() uint64          { return rand.Uint64() }
func (globalSource) Uint64N(n uint64) uint64 { return rand.Uint64N(n) }

// DefaultSource is backed by the math/rand/v2 top-level generator, which is
// safe for concurrent use.
var DefaultSource Source = globalSource{}

// Variables maps generated names (var_0, var_1, ...) to their values.
type Variables map[string]int64

// Clone returns an independent copy.
func (v Variables) Clone() Variables {
	out := make(Variables, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// VariableName returns the generated name for the n-th variable of a pass.
func VariableName(n int) string {
	return "var_" + strconv.Itoa(n)
}

type rangeMarker struct {
	min int64
	max int64
}

// parseRangeMarker decodes the inside of a {{...}} placeholder. Anything that
// is not a well-formed range(MIN,MAX) with MIN <= MAX reports false.
func parseRangeMarker(expression string) (rangeMarker, bool) {
	expression = strings.TrimSpace(expression)
	if !strings.HasPrefix(expression, "range(") || !strings.HasSuffix(expression, ")") {
		return rangeMarker{}, false
	}

	args := strings.Split(expression[len("range("):len(expression)-1], ",")
	if len(args) != 2 {
		return rangeMarker{}, false
	}

	lo, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return rangeMarker{}, false
	}
	hi, err := strconv.ParseInt(strings.TrimSpace(args[1]), 10, 64)
	if err != nil {
		return rangeMarker{}, false
	}
	if lo > hi {
		return rangeMarker{}, false
	}

	return rangeMarker{min: lo, max: hi}, true
}

func (m rangeMarker) draw(src Source) int64 {
	span := uint64(m.max-m.min) + 1
	if span == 0 {
		// full int64 range
		return int64(src.Uint64())
	}
	return m.min + int64(src.Uint64N(span))
}

func (m rangeMarker) contains(v int64) bool {
	return v >= m.min && v <= m.max
}

// Generator substitutes random-range markers across one rendering pass. The
// variable counter is shared by every question rendered through it.
type Generator struct {
	src  Source
	vars Variables
}

// NewGenerator starts a new rendering pass. A nil source uses DefaultSource.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = DefaultSource
	}
	return &Generator{src: src, vars: Variables{}}
}

// Process replaces every well-formed marker in text with a fresh random value
// and records it under the next sequential name. Malformed or unknown markers
// are left verbatim.
func (g *Generator) Process(text string) string {
	return markerPattern.ReplaceAllStringFunc(text, func(match string) string {
		marker, ok := parseRangeMarker(match[2 : len(match)-2])
		if !ok {
			return match
		}

		value := marker.draw(g.src)
		g.vars[VariableName(len(g.vars))] = value
		return strconv.FormatInt(value, 10)
	})
}

// Variables returns the context generated so far.
func (g *Generator) Variables() Variables {
	return g.vars.Clone()
}

// replayer substitutes markers with values from an existing context, in the
// same order the Generator consumed them.
type replayer struct {
	vars Variables
	used int
	err  error
}

func (r *replayer) process(text string) string {
	return markerPattern.ReplaceAllStringFunc(text, func(match string) string {
		marker, ok := parseRangeMarker(match[2 : len(match)-2])
		if !ok || r.err != nil {
			return match
		}

		name := VariableName(r.used)
		value, found := r.vars[name]
		if !found {
			r.err = invalidAttempt("variable %s missing from attempt context", name)
			return match
		}
		if !marker.contains(value) {
			r.err = invalidAttempt("variable %s=%d outside range(%d,%d)", name, value, marker.min, marker.max)
			return match
		}

		r.used++
		return strconv.FormatInt(value, 10)
	})
}

func (r *replayer) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.used != len(r.vars) {
		return invalidAttempt("attempt context has %d variables, assignment uses %d", len(r.vars), r.used)
	}
	return nil
}
