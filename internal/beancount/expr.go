package beancount

import (
	"strings"

	"github.com/shopspring/decimal"
)

// EvalNumber evaluates the number of an amount: a decimal with optional
// thousands separators, or arithmetic over such decimals using + - * / and
// parentheses. The result is invalid when the expression is malformed or
// divides by zero.
func EvalNumber(expr string) decimal.NullDecimal {
	e := &evaluator{src: expr}
	v, ok := e.sum()
	if !ok || e.peek() != 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(v)
}

type evaluator struct {
	src string
	pos int
}

func (e *evaluator) peek() byte {
	for e.pos < len(e.src) && isSpace(e.src[e.pos]) {
		e.pos++
	}
	if e.pos >= len(e.src) {
		return 0
	}
	return e.src[e.pos]
}

func (e *evaluator) sum() (decimal.Decimal, bool) {
	left, ok := e.product()
	for ok {
		op := e.peek()
		if op != '+' && op != '-' {
			return left, true
		}
		e.pos++
		var right decimal.Decimal
		right, ok = e.product()
		if op == '+' {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
	return decimal.Decimal{}, false
}

func (e *evaluator) product() (decimal.Decimal, bool) {
	left, ok := e.unary()
	for ok {
		op := e.peek()
		if op != '*' && op != '/' {
			return left, true
		}
		e.pos++
		var right decimal.Decimal
		right, ok = e.unary()
		switch {
		case !ok:
		case op == '*':
			left = left.Mul(right)
		case right.IsZero():
			ok = false
		default:
			left = left.Div(right)
		}
	}
	return decimal.Decimal{}, false
}

func (e *evaluator) unary() (decimal.Decimal, bool) {
	switch e.peek() {
	case '-':
		e.pos++
		v, ok := e.unary()
		return v.Neg(), ok
	case '+':
		e.pos++
		return e.unary()
	case '(':
		e.pos++
		v, ok := e.sum()
		if !ok || e.peek() != ')' {
			return decimal.Decimal{}, false
		}
		e.pos++
		return v, true
	}
	return e.number()
}

func (e *evaluator) number() (decimal.Decimal, bool) {
	start := e.pos
	for e.pos < len(e.src) && (isDigit(e.src[e.pos]) || e.src[e.pos] == '.' || e.src[e.pos] == ',') {
		e.pos++
	}
	plain := strings.ReplaceAll(e.src[start:e.pos], ",", "")
	if plain == "" || plain == "." || strings.Count(plain, ".") > 1 {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(plain)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
