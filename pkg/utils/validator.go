package utils

import (
	"fmt"
	"regexp"
)

var (
	// Group codes may not contain clause or length separators
	GroupCodeRegex = regexp.MustCompile(`^[^,;\-]+$`)
)

// ValidateGroupCode ensures a group code can be written back into grammar text
func ValidateGroupCode(input string) error {
	if !GroupCodeRegex.MatchString(input) {
		return fmt.Errorf("invalid group code '%s': must match %s", input, GroupCodeRegex.String())
	}
	return nil
}
