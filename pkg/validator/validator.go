package validator

import (
	"fmt"
	"slices"

	"github.com/fahmitech/codecheck/pkg/types"
)

// DefaultSeparator terminates variable-length groups. It is the literal
// six-character text, not the U+001D control character.
const DefaultSeparator = `\u001d`

// Option configures a Validator
type Option func(*options)

type options struct {
	separator       string
	strictSeparator bool
}

// WithSeparator replaces the variable-length group terminator
func WithSeparator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// WithStrictSeparator makes a variable-length group that is not the last one
// fail with MissingSeparator when no separator follows it
func WithStrictSeparator() Option {
	return func(o *options) {
		o.strictSeparator = true
	}
}

// Validator checks code lists against an immutable rule sequence. It is safe
// for concurrent use.
type Validator struct {
	rules     []compiledRule
	separator []rune
	strict    bool
}

type compiledRule struct {
	group    string
	code     []rune
	variable bool
	length   int
}

// New copies rules into a Validator. It fails on an empty sequence, an empty
// group code, a negative length or an empty separator.
func New(rules []types.Rule, opts ...Option) (*Validator, error) {
	o := options{separator: DefaultSeparator}
	for _, opt := range opts {
		opt(&o)
	}

	if len(rules) == 0 {
		return nil, ErrNoRules
	}
	if o.separator == "" {
		return nil, ErrNoSeparator
	}

	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.GroupCode == "" {
			return nil, fmt.Errorf("rule[%d]: %w: empty group code", i, ErrInvalidRule)
		}
		if r.MinGroupLength < 0 {
			return nil, fmt.Errorf("rule[%d] %s: %w: negative length %d", i, r.GroupCode, ErrInvalidRule, r.MinGroupLength)
		}
		compiled = append(compiled, compiledRule{
			group:    r.GroupCode,
			code:     []rune(r.GroupCode),
			variable: r.IsLengthVariable,
			length:   r.MinGroupLength,
		})
	}

	return &Validator{
		rules:     compiled,
		separator: []rune(o.separator),
		strict:    o.strictSeparator,
	}, nil
}

// Rules returns a copy of the rule sequence
func (v *Validator) Rules() []types.Rule {
	out := make([]types.Rule, len(v.rules))
	for i, r := range v.rules {
		out[i] = types.Rule{GroupCode: r.group, IsLengthVariable: r.variable, MinGroupLength: r.length}
	}
	return out
}

// Validate returns nil when line matches the rule sequence exactly, otherwise
// the first violation as *Error.
func (v *Validator) Validate(line string) error {
	in := []rune(line)
	cur := 0
	last := len(v.rules) - 1

	for i, rule := range v.rules {
		rest := in[cur:]

		prefix := rest
		if len(prefix) > len(rule.code) {
			prefix = prefix[:len(rule.code)]
		}
		if !slices.Equal(prefix, rule.code) {
			if len(rest) == 0 {
				return groupMismatch(rule.group, endOfCodeMarker, len(in)+1)
			}
			return groupMismatch(rule.group, string(prefix), cur+1)
		}

		body := rest[len(rule.code):]
		if rule.variable {
			payload, consumed := body, len(body)
			idx := indexRunes(body, v.separator)
			if idx >= 0 {
				payload, consumed = body[:idx], idx+len(v.separator)
			}
			if idx < 0 && v.strict && i != last {
				return missingSeparator(rule.group, string(v.separator), len(in)+1)
			}
			if len(payload) < rule.length {
				return lengthBelowMinimum(rule.group, rule.length, len(payload), cur+1)
			}
			cur += len(rule.code) + consumed
		} else {
			if len(body) < rule.length {
				return fixedLengthMismatch(rule.group, rule.length, len(body), cur+1)
			}
			cur += len(rule.code) + rule.length
		}

		if i == last && cur < len(in) {
			return trailingContent(string(in[cur:]), cur+1)
		}
	}

	return nil
}

func indexRunes(s, sep []rune) int {
	n := len(sep)
	for i := 0; i+n <= len(s); i++ {
		if slices.Equal(s[i:i+n], sep) {
			return i
		}
	}
	return -1
}
