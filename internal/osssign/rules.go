package osssign

import "strings"

// rule decides whether a header name participates in canonicalization.
type rule interface {
	IsValid(value string) bool
}

type rules []rule

// IsValid returns true if any rule in the set matches.
func (r rules) IsValid(value string) bool {
	for _, rule := range r {
		if rule.IsValid(value) {
			return true
		}
	}
	return false
}

type mapRule map[string]struct{}

func (m mapRule) IsValid(value string) bool {
	_, ok := m[value]
	return ok
}

type allowList struct {
	rule
}

func (a allowList) IsValid(value string) bool {
	return a.rule.IsValid(value)
}

type patterns []string

// IsValid returns true if the value matches any pattern prefix.
func (p patterns) IsValid(value string) bool {
	for _, pattern := range p {
		if strings.HasPrefix(strings.ToLower(value), pattern) {
			return true
		}
	}
	return false
}
