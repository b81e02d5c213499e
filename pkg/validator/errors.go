package validator

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRules is returned by New for an empty rule sequence
	ErrNoRules = errors.New("rule sequence is empty")
	// ErrInvalidRule is wrapped by New for a rule with an empty group code or negative length
	ErrInvalidRule = errors.New("invalid rule")
	// ErrNoSeparator is returned by New when WithSeparator is given an empty string
	ErrNoSeparator = errors.New("separator is empty")
)

const endOfCodeMarker = "<end of code>"

// Kind classifies a structural violation
type Kind int

const (
	// GroupMismatch means the expected group code is not at the cursor
	GroupMismatch Kind = iota
	// LengthBelowMinimum means a variable-length payload is shorter than its minimum
	LengthBelowMinimum
	// FixedLengthMismatch means fewer characters remain than a fixed-length group needs
	FixedLengthMismatch
	// TrailingContent means input continues after the last group
	TrailingContent
	// MissingSeparator means a non-last variable-length group has no separator (strict mode only)
	MissingSeparator
)

// String returns the snake_case name used in reports
func (k Kind) String() string {
	switch k {
	case GroupMismatch:
		return "group_mismatch"
	case LengthBelowMinimum:
		return "length_below_minimum"
	case FixedLengthMismatch:
		return "fixed_length_mismatch"
	case TrailingContent:
		return "trailing_content"
	case MissingSeparator:
		return "missing_separator"
	default:
		return "unknown"
	}
}

// Error is the verdict for an invalid code list. Position is 1-based and counts
// characters of the original line.
type Error struct {
	Kind     Kind
	Position int
	Group    string // expected group code; empty for TrailingContent
	Found    string // offending text, or "<end of code>"
	Expected int    // required length for length violations
	Actual   int    // payload length found for LengthBelowMinimum
	msg      string
}

func (e *Error) Error() string {
	return e.msg
}

func groupMismatch(group, found string, pos int) *Error {
	return &Error{
		Kind:     GroupMismatch,
		Position: pos,
		Group:    group,
		Found:    found,
		msg:      fmt.Sprintf("expected application group %s, found %s. Position %d.", group, found, pos),
	}
}

func lengthBelowMinimum(group string, minLen, actual, pos int) *Error {
	return &Error{
		Kind:     LengthBelowMinimum,
		Position: pos,
		Group:    group,
		Expected: minLen,
		Actual:   actual,
		msg: fmt.Sprintf("application group %s length below minimum, expected %d+, found %d. Position %d.",
			group, minLen, actual, pos),
	}
}

func fixedLengthMismatch(group string, length, actual, pos int) *Error {
	return &Error{
		Kind:     FixedLengthMismatch,
		Position: pos,
		Group:    group,
		Expected: length,
		Actual:   actual,
		msg: fmt.Sprintf("application group %s has variable length, fixed length %d expected. Position %d.",
			group, length, pos),
	}
}

func trailingContent(found string, pos int) *Error {
	return &Error{
		Kind:     TrailingContent,
		Position: pos,
		Found:    found,
		msg:      fmt.Sprintf("code continues past the terminating application group, found %s. Position %d.", found, pos),
	}
}

func missingSeparator(group, separator string, pos int) *Error {
	return &Error{
		Kind:     MissingSeparator,
		Position: pos,
		Group:    group,
		Found:    endOfCodeMarker,
		msg:      fmt.Sprintf("separator %s not found after application group %s. Position %d.", separator, group, pos),
	}
}

// AsError reports whether err is a validation verdict and returns it
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
