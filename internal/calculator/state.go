// Package calculator implements the keypad calculator: a state machine driven
// by discrete input intents, its history of completed calculations, and the
// HTTP surface that exposes both.
package calculator

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"neonflow/internal/history"
)

const errorValue = "Error"

// ErrEntryNotFound is returned when a history id does not match any entry.
var ErrEntryNotFound = errors.New("history entry not found")

// State is the calculator's working state. Operands are kept as typed text
// and only parsed when evaluated, so "5." stays "5." until more digits follow.
type State struct {
	CurrentValue  string   `json:"currentValue"`
	PreviousValue string   `json:"previousValue"`
	Operator      Operator `json:"operator"`

	// WaitingForNextValue is set after an operator or equals; the next digit
	// starts a new number instead of extending the current one.
	WaitingForNextValue bool `json:"waitingForNextValue"`

	// Expression is display text built alongside the operands. It is never
	// parsed and may drift from PreviousValue/Operator/CurrentValue.
	Expression string `json:"expression"`
}

// InError reports whether the last evaluation divided by zero.
func (s State) InError() bool {
	return s.CurrentValue == errorValue
}

func initialState() State {
	return State{CurrentValue: "0"}
}

// Calculator owns one State and the history log. It is not safe for
// concurrent use; Session serialises access.
type Calculator struct {
	state   State
	history *history.Log
	now     func() time.Time
}

// New returns a cleared calculator whose history starts from entries.
func New(entries []history.Entry) *Calculator {
	return &Calculator{
		state:   initialState(),
		history: history.NewLog(entries),
		now:     time.Now,
	}
}

// State returns a copy of the current state.
func (c *Calculator) State() State {
	return c.state
}

// History returns the log, newest first.
func (c *Calculator) History() []history.Entry {
	return c.history.Entries()
}

// EnterDigit appends d to the current operand, or starts a new operand when
// one is expected. d must be '0' through '9'.
func (c *Calculator) EnterDigit(d byte) {
	s := &c.state
	digit := string(d)

	if s.WaitingForNextValue || s.InError() {
		s.CurrentValue = digit
		s.WaitingForNextValue = false
		s.Expression += digit
		return
	}

	if s.CurrentValue == "0" {
		s.CurrentValue = digit
		return
	}
	s.CurrentValue += digit
}

// EnterDecimal adds a decimal point unless the operand already has one.
func (c *Calculator) EnterDecimal() {
	s := &c.state

	if s.WaitingForNextValue || s.InError() {
		s.CurrentValue = "0."
		s.WaitingForNextValue = false
		s.Expression += "0."
		return
	}

	if !strings.Contains(s.CurrentValue, ".") {
		s.CurrentValue += "."
		s.Expression += "."
	}
}

// EnterOperator queues op. Operators chain left to right without precedence:
// a second operator with no operand in between replaces the first, and an
// operator after a complete "a op b" folds it into the new left operand.
// ErrDivisionByZero is returned after the state has moved to Error.
func (c *Calculator) EnterOperator(op Operator) error {
	s := &c.state
	if s.InError() {
		return nil
	}

	if s.Operator != OpNone && s.WaitingForNextValue {
		s.Operator = op
		return nil
	}

	if s.PreviousValue == "" {
		s.PreviousValue = s.CurrentValue
		s.Operator = op
		s.WaitingForNextValue = true
		s.Expression = s.CurrentValue + " " + op.Symbol() + " "
		return nil
	}

	res, err := Evaluate(ParseOperand(s.PreviousValue), ParseOperand(s.CurrentValue), s.Operator)
	if err != nil {
		c.fail()
		return err
	}

	result := FormatNumber(res)
	s.CurrentValue = result
	s.PreviousValue = result
	s.Operator = op
	s.WaitingForNextValue = true
	s.Expression = result + " " + op.Symbol() + " "
	return nil
}

// Equals evaluates the pending operation and records it in history. It does
// nothing when no operator is pending or no operand was typed after it; ok
// reports whether an entry was recorded.
func (c *Calculator) Equals() (entry history.Entry, ok bool, err error) {
	s := &c.state
	if s.Operator == OpNone || s.WaitingForNextValue {
		return history.Entry{}, false, nil
	}

	left, right := ParseOperand(s.PreviousValue), ParseOperand(s.CurrentValue)
	res, err := Evaluate(left, right, s.Operator)
	if err != nil {
		c.fail()
		return history.Entry{}, false, err
	}

	result := FormatNumber(res)
	expression := FormatNumber(left) + " " + s.Operator.Symbol() + " " + FormatNumber(right)
	entry = history.NewEntry(expression, result, c.now())
	c.history.Prepend(entry)

	s.CurrentValue = result
	s.PreviousValue = ""
	s.Operator = OpNone
	s.WaitingForNextValue = true
	s.Expression = result
	return entry, true, nil
}

// fail moves to the Error display state.
func (c *Calculator) fail() {
	c.state = State{
		CurrentValue:        errorValue,
		WaitingForNextValue: true,
	}
}

// ClearAll resets the working state. History is kept.
func (c *Calculator) ClearAll() {
	c.state = initialState()
}

// DeleteLast removes the last typed character of the current operand. The
// expression is left as is.
func (c *Calculator) DeleteLast() {
	s := &c.state
	if s.WaitingForNextValue || s.InError() {
		return
	}

	if utf8.RuneCountInString(s.CurrentValue) <= 1 || s.CurrentValue == "0" {
		s.CurrentValue = "0"
		return
	}
	_, size := utf8.DecodeLastRuneInString(s.CurrentValue)
	s.CurrentValue = s.CurrentValue[:len(s.CurrentValue)-size]
}

// ToggleSign flips a leading minus on the current operand.
func (c *Calculator) ToggleSign() {
	s := &c.state
	if s.InError() {
		return
	}

	if strings.HasPrefix(s.CurrentValue, "-") {
		s.CurrentValue = s.CurrentValue[1:]
		return
	}
	s.CurrentValue = "-" + s.CurrentValue
}

// ApplyPercent divides the current operand by 100.
func (c *Calculator) ApplyPercent() {
	s := &c.state
	if s.InError() {
		return
	}
	s.CurrentValue = FormatNumber(ParseOperand(s.CurrentValue) / 100)
}

// UseHistoryEntry loads the result of entry id as the current operand. The
// entry stays in history.
func (c *Calculator) UseHistoryEntry(id string) error {
	entry, ok := c.history.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	c.state = State{
		CurrentValue: entry.Result,
		Expression:   entry.Result,
	}
	return nil
}

// ClearHistory empties the history log.
func (c *Calculator) ClearHistory() {
	c.history.Clear()
}
