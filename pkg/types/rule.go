package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoGrammar       = errors.New("no grammar defined")
)

// Rule describes one application group of a code list
type Rule struct {
	GroupCode        string `yaml:"group" json:"group"`
	IsLengthVariable bool   `yaml:"variable" json:"variable"`
	MinGroupLength   int    `yaml:"length" json:"length"` // exact length when fixed, minimum when variable
}

// RulesFile is the root document of a rules YAML file
type RulesFile struct {
	Version  string             `yaml:"version" json:"version"`
	Grammar  Grammar            `yaml:"grammar" json:"grammar"`
	Profiles map[string]Profile `yaml:"profiles,omitempty" json:"profiles,omitempty"`
}

// Profile is a named grammar inside a rules file
type Profile struct {
	Grammar Grammar `yaml:"grammar" json:"grammar"`
}

// Grammar is the textual rule specification, e.g. "1234 - 7, 123 - 5+"
type Grammar string

// UnmarshalYAML implements custom unmarshaling to support both string and []string
func (g *Grammar) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*g = Grammar(single)
		return nil
	}

	var clauses []string
	if err := unmarshal(&clauses); err == nil {
		*g = Grammar(strings.Join(clauses, ", "))
		return nil
	}

	return fmt.Errorf("grammar must be a string or a list of strings")
}

// SelectGrammar picks the grammar for the named profile. An empty name falls back
// to the "default" profile, then to the top-level grammar.
func (f *RulesFile) SelectGrammar(profile string) (Grammar, error) {
	if f == nil {
		return "", fmt.Errorf("rules file is nil")
	}

	if profile != "" {
		p, ok := f.Profiles[profile]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrProfileNotFound, profile)
		}
		return p.Grammar, nil
	}

	if p, ok := f.Profiles["default"]; ok {
		return p.Grammar, nil
	}
	if strings.TrimSpace(string(f.Grammar)) != "" {
		return f.Grammar, nil
	}
	if len(f.Profiles) > 0 {
		return "", fmt.Errorf("%w: rules file has profiles; specify --profile", ErrNoGrammar)
	}
	return "", ErrNoGrammar
}
