package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrConditionInvalid is returned when a guard condition cannot be evaluated:
// the expression is malformed, references an unknown or non-scalar context
// value, mixes incompatible types, or does not produce a boolean.
var ErrConditionInvalid = errors.New("guard condition is malformed or not boolean")

// Evaluate evaluates a guard condition against a flat context map and returns
// its boolean result.
//
// The expression language is deliberately tiny so guards stay side-effect-free
// and sandboxable: comparisons (== != < <= > >=), boolean connectives
// (&& || !), arithmetic (+ - * /), parentheses, numeric/string/boolean
// literals, and bare identifiers resolved from the context map. There are no
// function calls, no indexing, and no access to anything outside the context.
//
// Numeric context values of any Go integer or float type compare as float64.
// A missing identifier, a type mismatch, or a non-boolean result yields an
// error wrapping ErrConditionInvalid.
func Evaluate(condition string, context map[string]any) (bool, error) {
	p := &condParser{input: condition, context: context}
	p.advance()

	value, err := p.parseOr()
	if err != nil {
		return false, conditionError(condition, err)
	}
	if p.tok.kind != tokEOF {
		return false, conditionError(condition, fmt.Errorf("unexpected %q", p.tok.text))
	}

	result, ok := value.(bool)
	if !ok {
		return false, conditionError(condition, fmt.Errorf("result is %T, not boolean", value))
	}
	return result, nil
}

func conditionError(condition string, cause error) error {
	return fmt.Errorf("%w: %q: %s", ErrConditionInvalid, condition, cause)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind tokenKind
	text string
}

type condParser struct {
	input   string
	pos     int
	tok     token
	context map[string]any
}

// advance scans the next token into p.tok. Lexical errors surface later as
// parse errors on the offending text.
func (p *condParser) advance() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF}
		return
	}

	c := p.input[p.pos]
	switch {
	case c == '\'' || c == '"':
		quote := c
		start := p.pos + 1
		end := start
		for end < len(p.input) && p.input[end] != quote {
			end++
		}
		if end >= len(p.input) {
			// Unterminated string: emit the raw text and let the parser fail.
			p.tok = token{kind: tokOp, text: string(quote)}
			p.pos++
			return
		}
		p.tok = token{kind: tokString, text: p.input[start:end]}
		p.pos = end + 1

	case unicode.IsDigit(rune(c)):
		start := p.pos
		for p.pos < len(p.input) && (unicode.IsDigit(rune(p.input[p.pos])) || p.input[p.pos] == '.') {
			p.pos++
		}
		p.tok = token{kind: tokNumber, text: p.input[start:p.pos]}

	case unicode.IsLetter(rune(c)) || c == '_':
		start := p.pos
		for p.pos < len(p.input) &&
			(unicode.IsLetter(rune(p.input[p.pos])) || unicode.IsDigit(rune(p.input[p.pos])) || p.input[p.pos] == '_') {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.input[start:p.pos]}

	default:
		for _, op := range []string{"==", "!=", "<=", ">=", "&&", "||"} {
			if strings.HasPrefix(p.input[p.pos:], op) {
				p.tok = token{kind: tokOp, text: op}
				p.pos += 2
				return
			}
		}
		p.tok = token{kind: tokOp, text: string(c)}
		p.pos++
	}
}

func (p *condParser) acceptOp(ops ...string) (string, bool) {
	if p.tok.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if p.tok.text == op {
			p.advance()
			return op, true
		}
	}
	return "", false
}

func (p *condParser) parseOr() (any, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("||"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lb, rb, err := bothBool(left, right, "||")
		if err != nil {
			return nil, err
		}
		left = lb || rb
	}
}

func (p *condParser) parseAnd() (any, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("&&"); !ok {
			return left, nil
		}
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		lb, rb, err := bothBool(left, right, "&&")
		if err != nil {
			return nil, err
		}
		left = lb && rb
	}
}

func (p *condParser) parseNot() (any, error) {
	if _, ok := p.acceptOp("!"); ok {
		value, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("operand of ! is %T, not boolean", value)
		}
		return !b, nil
	}
	return p.parseComparison()
}

func (p *condParser) parseComparison() (any, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	op, ok := p.acceptOp("==", "!=", "<", "<=", ">", ">=")
	if !ok {
		return left, nil
	}
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return compare(op, left, right)
}

func (p *condParser) parseAdditive() (any, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("+", "-")
		if !ok {
			return left, nil
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		ln, rn, err := bothNumber(left, right, op)
		if err != nil {
			return nil, err
		}
		if op == "+" {
			left = ln + rn
		} else {
			left = ln - rn
		}
	}
}

func (p *condParser) parseTerm() (any, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp("*", "/")
		if !ok {
			return left, nil
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		ln, rn, err := bothNumber(left, right, op)
		if err != nil {
			return nil, err
		}
		if op == "*" {
			left = ln * rn
		} else {
			if rn == 0 {
				return nil, errors.New("division by zero")
			}
			left = ln / rn
		}
	}
}

func (p *condParser) parseFactor() (any, error) {
	switch p.tok.kind {
	case tokNumber:
		n, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", p.tok.text)
		}
		p.advance()
		return n, nil

	case tokString:
		s := p.tok.text
		p.advance()
		return s, nil

	case tokIdent:
		name := p.tok.text
		p.advance()
		switch name {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		raw, ok := p.context[name]
		if !ok {
			return nil, fmt.Errorf("unknown identifier %q", name)
		}
		return contextValue(name, raw)

	case tokOp:
		if _, ok := p.acceptOp("-"); ok {
			value, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			n, isNum := value.(float64)
			if !isNum {
				return nil, fmt.Errorf("operand of unary - is %T, not a number", value)
			}
			return -n, nil
		}
		if _, ok := p.acceptOp("("); ok {
			value, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if _, ok := p.acceptOp(")"); !ok {
				return nil, errors.New("missing closing parenthesis")
			}
			return value, nil
		}
		return nil, fmt.Errorf("unexpected %q", p.tok.text)

	default:
		return nil, errors.New("unexpected end of expression")
	}
}

// contextValue normalizes a context entry to one of the three scalar kinds
// the language understands.
func contextValue(name string, raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return v, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return nil, fmt.Errorf("context value %q has unsupported type %T", name, raw)
	}
}

func compare(op string, left, right any) (bool, error) {
	if ls, ok := left.(string); ok {
		rs, ok := right.(string)
		if !ok {
			return false, fmt.Errorf("cannot compare string with %T", right)
		}
		switch op {
		case "==":
			return ls == rs, nil
		case "!=":
			return ls != rs, nil
		case "<":
			return ls < rs, nil
		case "<=":
			return ls <= rs, nil
		case ">":
			return ls > rs, nil
		case ">=":
			return ls >= rs, nil
		}
	}

	if lb, ok := left.(bool); ok {
		rb, ok := right.(bool)
		if !ok {
			return false, fmt.Errorf("cannot compare boolean with %T", right)
		}
		switch op {
		case "==":
			return lb == rb, nil
		case "!=":
			return lb != rb, nil
		default:
			return false, fmt.Errorf("operator %s is not defined for booleans", op)
		}
	}

	ln, rn, err := bothNumber(left, right, op)
	if err != nil {
		return false, err
	}
	switch op {
	case "==":
		return ln == rn, nil
	case "!=":
		return ln != rn, nil
	case "<":
		return ln < rn, nil
	case "<=":
		return ln <= rn, nil
	case ">":
		return ln > rn, nil
	case ">=":
		return ln >= rn, nil
	}
	return false, fmt.Errorf("unknown comparison operator %q", op)
}

func bothNumber(left, right any, op string) (float64, float64, error) {
	ln, ok := left.(float64)
	if !ok {
		return 0, 0, fmt.Errorf("left operand of %s is %T, not a number", op, left)
	}
	rn, ok := right.(float64)
	if !ok {
		return 0, 0, fmt.Errorf("right operand of %s is %T, not a number", op, right)
	}
	return ln, rn, nil
}

func bothBool(left, right any, op string) (bool, bool, error) {
	lb, ok := left.(bool)
	if !ok {
		return false, false, fmt.Errorf("left operand of %s is %T, not boolean", op, left)
	}
	rb, ok := right.(bool)
	if !ok {
		return false, false, fmt.Errorf("right operand of %s is %T, not boolean", op, right)
	}
	return lb, rb, nil
}
