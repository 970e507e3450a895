// Package redact scrubs credentials and personal contact details that a model
// may copy from web pages into a report before it is published.
package redact

import (
	"regexp"
	"slices"
)

// Names of the built-in rule sets.
const (
	SetSecrets = "secrets"
	SetPII     = "pii"
)

// Rule is a named pattern. Every match is replaced by [REDACTED:<name>].
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Match is one occurrence of a rule in a string.
type Match struct {
	Rule  string
	Start int
	End   int
}

// Find returns the non-overlapping matches of the rule in s.
func (r Rule) Find(s string) []Match {
	var out []Match
	for _, loc := range r.Pattern.FindAllStringIndex(s, -1) {
		out = append(out, Match{Rule: r.Name, Start: loc[0], End: loc[1]})
	}
	return out
}

func (m Match) replacement() string {
	return "[REDACTED:" + m.Rule + "]"
}

var ruleSets = map[string][]Rule{
	SetSecrets: {
		{"aws_key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
		{"api_key", regexp.MustCompile(`(?:sk-ant-[a-zA-Z0-9_\-]{20,}|sk-[a-zA-Z0-9]{32,}|ghp_[a-zA-Z0-9]{36,}|glpat-[a-zA-Z0-9\-]{20,})`)},
		{"private_key", regexp.MustCompile(`-----BEGIN [A-Z ]+PRIVATE KEY-----`)},
		{"connection_string", regexp.MustCompile(`(?:postgres|mongodb|mysql|redis)://[^\s"'<>)]+`)},
		{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9\-_]+\.eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_.+/=]+`)},
	},
	SetPII: {
		{"email", regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)},
		{"card_number", regexp.MustCompile(`\b(?:\d{4}[ -]?){3}\d{1,4}\b`)},
		{"phone", regexp.MustCompile(`(?:\+\d{1,3}[\s\-]?)?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{4}`)},
		{"ipv4", regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)},
	},
}

// RuleSet returns a copy of the named built-in rule set.
func RuleSet(name string) ([]Rule, bool) {
	rules, ok := ruleSets[name]
	return slices.Clone(rules), ok
}

// SetNames lists the built-in rule sets in sorted order.
func SetNames() []string {
	names := make([]string, 0, len(ruleSets))
	for name := range ruleSets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
