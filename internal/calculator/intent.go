package calculator

import (
	"errors"
	"fmt"

	"neonflow/internal/history"
)

// ErrInvalidIntent is returned for an intent with an unknown type or a bad
// value.
var ErrInvalidIntent = errors.New("invalid intent")

// IntentType names one discrete user input.
type IntentType string

const (
	IntentDigit         IntentType = "digit"
	IntentDecimalPoint  IntentType = "decimalPoint"
	IntentOperator      IntentType = "operator"
	IntentEquals        IntentType = "equals"
	IntentClear         IntentType = "clear"
	IntentDelete        IntentType = "delete"
	IntentToggleSign    IntentType = "toggleSign"
	IntentPercent       IntentType = "percent"
	IntentSelectHistory IntentType = "selectHistory"
	IntentClearHistory  IntentType = "clearHistory"
)

// Intent is one input event. Value carries the digit, the operator character
// or the history entry id, depending on Type.
type Intent struct {
	Type  IntentType `json:"type"`
	Value string     `json:"value,omitempty"`
}

func Digit(d byte) Intent { return Intent{Type: IntentDigit, Value: string(d)} }
func OperatorIntent(op Operator) Intent { return Intent{Type: IntentOperator, Value: string(op)} }
func SelectHistory(id string) Intent { return Intent{Type: IntentSelectHistory, Value: id} }

// Validate checks that Value fits Type.
func (i Intent) Validate() error {
	switch i.Type {
	case IntentDigit:
		if len(i.Value) != 1 || i.Value[0] < '0' || i.Value[0] > '9' {
			return fmt.Errorf("%w: digit %q", ErrInvalidIntent, i.Value)
		}
	case IntentOperator:
		if _, ok := ParseOperator(i.Value); !ok {
			return fmt.Errorf("%w: operator %q", ErrInvalidIntent, i.Value)
		}
	case IntentSelectHistory:
		if i.Value == "" {
			return fmt.Errorf("%w: missing history entry id", ErrInvalidIntent)
		}
	case IntentDecimalPoint, IntentEquals, IntentClear, IntentDelete,
		IntentToggleSign, IntentPercent, IntentClearHistory:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidIntent, i.Type)
	}
	return nil
}

// IntentForKey maps a keyboard key name to an intent. Keys without a binding
// report false.
func IntentForKey(key string) (Intent, bool) {
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return Digit(key[0]), true
	}
	if op, ok := ParseOperator(key); ok {
		return OperatorIntent(op), true
	}

	switch key {
	case ".":
		return Intent{Type: IntentDecimalPoint}, true
	case "Enter", "=":
		return Intent{Type: IntentEquals}, true
	case "Backspace":
		return Intent{Type: IntentDelete}, true
	case "Escape":
		return Intent{Type: IntentClear}, true
	}
	return Intent{}, false
}

// Outcome describes the side effects of one applied intent.
type Outcome struct {
	// HistoryChanged is set when the log gained an entry or was cleared.
	HistoryChanged bool
	// Recorded is the entry added by a successful equals.
	Recorded *history.Entry
	// DivisionByZero is set when the intent ended in the Error state.
	DivisionByZero bool
}

// Apply validates in and runs the matching transition. Division by zero is
// not an error here; it is reported through Outcome.
func (c *Calculator) Apply(in Intent) (Outcome, error) {
	if err := in.Validate(); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	switch in.Type {
	case IntentDigit:
		c.EnterDigit(in.Value[0])
	case IntentDecimalPoint:
		c.EnterDecimal()
	case IntentOperator:
		op, _ := ParseOperator(in.Value)
		if err := c.EnterOperator(op); errors.Is(err, ErrDivisionByZero) {
			out.DivisionByZero = true
		}
	case IntentEquals:
		entry, ok, err := c.Equals()
		if errors.Is(err, ErrDivisionByZero) {
			out.DivisionByZero = true
		}
		if ok {
			out.HistoryChanged = true
			out.Recorded = &entry
		}
	case IntentClear:
		c.ClearAll()
	case IntentDelete:
		c.DeleteLast()
	case IntentToggleSign:
		c.ToggleSign()
	case IntentPercent:
		c.ApplyPercent()
	case IntentSelectHistory:
		if err := c.UseHistoryEntry(in.Value); err != nil {
			return Outcome{}, err
		}
	case IntentClearHistory:
		c.ClearHistory()
		out.HistoryChanged = true
	}
	return out, nil
}
