package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrDivisionByZero is returned by Evaluate when the right operand of a
// division is zero.
var ErrDivisionByZero = errors.New("division by zero")

// Operator is a pending binary operator. The zero value means none.
type Operator string

const (
	OpNone     Operator = ""
	OpAdd      Operator = "+"
	OpSubtract Operator = "-"
	OpMultiply Operator = "*"
	OpDivide   Operator = "/"
)

// ParseOperator accepts the ASCII operator characters.
func ParseOperator(s string) (Operator, bool) {
	switch op := Operator(s); op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return op, true
	}
	return OpNone, false
}

// Symbol is the glyph shown in expressions.
func (o Operator) Symbol() string {
	switch o {
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	}
	return string(o)
}

// MarshalJSON encodes OpNone as null.
func (o Operator) MarshalJSON() ([]byte, error) {
	if o == OpNone {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(string(o))), nil
}

// Evaluate applies op to a and b with plain float64 arithmetic.
func Evaluate(a, b float64, op Operator) (float64, error) {
	switch op {
	case OpAdd:
		return a + b, nil
	case OpSubtract:
		return a - b, nil
	case OpMultiply:
		return a * b, nil
	case OpDivide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	}
	return b, nil
}

// ParseOperand converts a stored operand string to a number. Text that is not
// a number (an empty string, a lone "-", the Error sentinel) yields NaN.
func ParseOperand(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return f
		}
		return math.NaN()
	}
	return f
}

// FormatNumber renders f the way results are stored: shortest round-trip
// digits, exponent notation outside [1e-6, 1e21).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
