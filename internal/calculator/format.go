package calculator

import "strings"

// Format groups the integer part of value in threes for display. Stored state
// keeps the raw string.
func Format(value string) string {
	if value == errorValue {
		return value
	}
	if value == "0" || value == "" {
		return "0"
	}

	intPart, frac, hasFrac := strings.Cut(value, ".")
	intPart = groupThousands(intPart)
	if hasFrac {
		return intPart + "." + frac
	}
	return intPart
}

// groupThousands inserts commas into a run of digits, keeping a leading sign.
// Anything that is not a plain digit run (NaN, Infinity, 1e+21) is returned
// unchanged.
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return sign + s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/3)
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}

// Preview is the live " = <result>" hint shown while an operand is being typed
// after an operator. It is empty otherwise, and on division by zero.
func Preview(s State) string {
	if s.Operator == OpNone || s.WaitingForNextValue {
		return ""
	}
	res, err := Evaluate(ParseOperand(s.PreviousValue), ParseOperand(s.CurrentValue), s.Operator)
	if err != nil {
		return ""
	}
	return " = " + Format(FormatNumber(res))
}
