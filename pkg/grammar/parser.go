package grammar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fahmitech/codecheck/pkg/types"
	"github.com/fahmitech/codecheck/pkg/utils"
)

// ErrMalformed is wrapped by every grammar parsing failure
var ErrMalformed = errors.New("malformed grammar")

// Parse converts grammar text such as "1234 - 7, 123 - 5+; 651" into rules
func Parse(text string) ([]types.Rule, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty grammar", ErrMalformed)
	}

	clauses := strings.FieldsFunc(text, isClauseSeparator)
	// FieldsFunc drops empty fields, so count separators to catch "a,,b" and "a,"
	if n := strings.Count(text, ",") + strings.Count(text, ";") + 1; n != len(clauses) {
		return nil, fmt.Errorf("%w: empty clause", ErrMalformed)
	}

	rules := make([]types.Rule, 0, len(clauses))
	for i, clause := range clauses {
		rule, err := parseClause(clause)
		if err != nil {
			return nil, fmt.Errorf("clause[%d] %q: %w", i, strings.TrimSpace(clause), err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func isClauseSeparator(r rune) bool {
	return r == ',' || r == ';'
}

func parseClause(clause string) (types.Rule, error) {
	if strings.TrimSpace(clause) == "" {
		return types.Rule{}, fmt.Errorf("%w: empty clause", ErrMalformed)
	}

	parts := strings.Split(clause, "-")
	if len(parts) > 2 {
		return types.Rule{}, fmt.Errorf("%w: more than one '-'", ErrMalformed)
	}

	rule := types.Rule{GroupCode: strings.TrimSpace(parts[0])}
	if rule.GroupCode == "" {
		return types.Rule{}, fmt.Errorf("%w: empty group code", ErrMalformed)
	}
	if err := utils.ValidateGroupCode(rule.GroupCode); err != nil {
		return types.Rule{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if len(parts) == 1 {
		rule.IsLengthVariable = true
		return rule, nil
	}

	length := strings.TrimSpace(parts[1])
	if strings.HasSuffix(length, "+") {
		rule.IsLengthVariable = true
		length = strings.TrimSpace(strings.TrimSuffix(length, "+"))
	}

	n, err := parseLength(length)
	if err != nil {
		return types.Rule{}, err
	}
	rule.MinGroupLength = n
	return rule, nil
}

func parseLength(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: missing length", ErrMalformed)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: invalid length %q", ErrMalformed, s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid length %q: %v", ErrMalformed, s, err)
	}
	return n, nil
}

// Format renders rules back into canonical grammar text
func Format(rules []types.Rule) string {
	var sb strings.Builder
	for i, r := range rules {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.GroupCode)
		switch {
		case !r.IsLengthVariable:
			sb.WriteString(fmt.Sprintf(" - %d", r.MinGroupLength))
		case r.MinGroupLength > 0:
			sb.WriteString(fmt.Sprintf(" - %d+", r.MinGroupLength))
		}
	}
	return sb.String()
}
