package quiz

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

const (
	maxFormulaLength = 1024
	maxFormulaDepth  = 64
)

// EvaluationError is returned when a formula cannot be evaluated.
type EvaluationError struct {
	Formula string
	Pos     int
	Reason  string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %q at %d: %s", e.Formula, e.Pos, e.Reason)
}

// Value is an exact rational result of a formula.
type Value struct {
	rat *big.Rat
}

// IntValue wraps an integer.
func IntValue(v int64) Value {
	return Value{rat: new(big.Rat).SetInt64(v)}
}

// Int64 returns the value when it is integral and fits in an int64.
func (v Value) Int64() (int64, bool) {
	if v.rat == nil || !v.rat.IsInt() || !v.rat.Num().IsInt64() {
		return 0, false
	}
	return v.rat.Num().Int64(), true
}

// String formats integral values as integers and others as the shortest
// decimal that round-trips through float64.
func (v Value) String() string {
	if v.rat == nil {
		return ""
	}
	if v.rat.IsInt() {
		return v.rat.Num().String()
	}
	f, _ := v.rat.Float64()
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Evaluate computes a formula made of integer/decimal literals, bound
// variable names, + - * /, unary signs and parentheses. Nothing else is
// accepted: there are no calls, no member access and no names outside vars.
func Evaluate(formula string, vars Variables) (Value, error) {
	if len(formula) > maxFormulaLength {
		return Value{}, &EvaluationError{Formula: formula, Reason: "formula too long"}
	}

	tokens, err := tokenize(formula)
	if err != nil {
		return Value{}, err
	}

	p := &parser{formula: formula, tokens: tokens, vars: vars}
	result, err := p.expression(0)
	if err != nil {
		return Value{}, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return Value{}, p.fail(tok, fmt.Sprintf("unexpected %q", tok.text))
	}
	if !result.IsInt() {
		if f, _ := result.Float64(); math.IsInf(f, 0) {
			return Value{}, &EvaluationError{Formula: formula, Pos: len(formula), Reason: "result out of range"}
		}
	}

	return Value{rat: result}, nil
}

type tokenKind uint8

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenOperator
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(formula string) ([]token, error) {
	tokens := make([]token, 0, len(formula)/2+1)
	for i := 0; i < len(formula); {
		ch := formula[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case isDigit(ch) || ch == '.':
			start := i
			seenDot := false
			for i < len(formula) && (isDigit(formula[i]) || formula[i] == '.') {
				if formula[i] == '.' {
					if seenDot {
						return nil, &EvaluationError{Formula: formula, Pos: i, Reason: "malformed number"}
					}
					seenDot = true
				}
				i++
			}
			text := formula[start:i]
			if text == "." {
				return nil, &EvaluationError{Formula: formula, Pos: start, Reason: "malformed number"}
			}
			tokens = append(tokens, token{kind: tokenNumber, text: text, pos: start})
		case isIdentStart(ch):
			start := i
			for i < len(formula) && (isIdentStart(formula[i]) || isDigit(formula[i])) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: formula[start:i], pos: start})
		case ch == '+' || ch == '-' || ch == '*' || ch == '/':
			tokens = append(tokens, token{kind: tokenOperator, text: string(ch), pos: i})
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++
		default:
			return nil, &EvaluationError{Formula: formula, Pos: i, Reason: fmt.Sprintf("disallowed character %q", ch)}
		}
	}
	return append(tokens, token{kind: tokenEOF, pos: len(formula)}), nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// parser is a recursive-descent evaluator for:
//
//	expression := term (("+" | "-") term)*
//	term       := unary (("*" | "/") unary)*
//	unary      := ("+" | "-") unary | primary
//	primary    := number | identifier | "(" expression ")"
type parser struct {
	formula string
	tokens  []token
	pos     int
	vars    Variables
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) fail(tok token, reason string) error {
	return &EvaluationError{Formula: p.formula, Pos: tok.pos, Reason: reason}
}

func (p *parser) expression(depth int) (*big.Rat, error) {
	if depth > maxFormulaDepth {
		return nil, p.fail(p.peek(), "formula nested too deeply")
	}

	left, err := p.term(depth)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOperator || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.term(depth)
		if err != nil {
			return nil, err
		}
		if tok.text == "+" {
			left = new(big.Rat).Add(left, right)
		} else {
			left = new(big.Rat).Sub(left, right)
		}
	}
}

func (p *parser) term(depth int) (*big.Rat, error) {
	left, err := p.unary(depth)
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOperator || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.unary(depth)
		if err != nil {
			return nil, err
		}
		if tok.text == "*" {
			left = new(big.Rat).Mul(left, right)
			continue
		}
		if right.Sign() == 0 {
			return nil, p.fail(tok, "division by zero")
		}
		left = new(big.Rat).Quo(left, right)
	}
}

func (p *parser) unary(depth int) (*big.Rat, error) {
	tok := p.peek()
	if tok.kind == tokenOperator && (tok.text == "+" || tok.text == "-") {
		if depth > maxFormulaDepth {
			return nil, p.fail(tok, "formula nested too deeply")
		}
		p.next()
		operand, err := p.unary(depth + 1)
		if err != nil {
			return nil, err
		}
		if tok.text == "-" {
			return new(big.Rat).Neg(operand), nil
		}
		return operand, nil
	}
	return p.primary(depth)
}

func (p *parser) primary(depth int) (*big.Rat, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		value, ok := new(big.Rat).SetString(tok.text)
		if !ok {
			return nil, p.fail(tok, "malformed number")
		}
		return value, nil
	case tokenIdent:
		if next := p.peek(); next.kind == tokenLParen {
			return nil, p.fail(next, fmt.Sprintf("calls are not allowed (%s)", tok.text))
		}
		value, ok := p.vars[tok.text]
		if !ok {
			return nil, p.fail(tok, fmt.Sprintf("undefined name %q", tok.text))
		}
		return new(big.Rat).SetInt64(value), nil
	case tokenLParen:
		inner, err := p.expression(depth + 1)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, p.fail(closing, "missing closing parenthesis")
		}
		return inner, nil
	case tokenEOF:
		return nil, p.fail(tok, "unexpected end of formula")
	default:
		return nil, p.fail(tok, fmt.Sprintf("unexpected %q", tok.text))
	}
}
