package redact

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/sonnes/cheftrends/core"
)

// Config selects the rules a Redactor applies.
type Config struct {
	Sets      []string // built-in rule set names, see SetNames
	Rules     []Rule   // additional rules
	Allowlist []string // matched values that fully or partly match one of these are kept
}

// Redactor rewrites the body, text blocks and tool inputs of a Report.
type Redactor struct {
	rules     []Rule
	allowlist []*regexp.Regexp
}

// New builds a Redactor. Unknown set names and invalid allowlist patterns are
// errors.
func New(cfg Config) (*Redactor, error) {
	r := &Redactor{}
	for _, name := range cfg.Sets {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		rules, ok := RuleSet(name)
		if !ok {
			return nil, fmt.Errorf("unknown rule set %q (available: %s)", name, strings.Join(SetNames(), ", "))
		}
		r.rules = append(r.rules, rules...)
	}
	r.rules = append(r.rules, cfg.Rules...)

	for _, pattern := range cfg.Allowlist {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("allowlist %q: %w", pattern, err)
		}
		r.allowlist = append(r.allowlist, re)
	}
	return r, nil
}

// Empty reports whether the Redactor has no rules and would change nothing.
func (r *Redactor) Empty() bool {
	return len(r.rules) == 0
}

// Transform implements core.Transformer.
func (r *Redactor) Transform(rep *core.Report) error {
	rep.Body = r.String(rep.Body)
	for i := range rep.Blocks {
		b := &rep.Blocks[i]
		switch b.Type {
		case core.BlockText, core.BlockThinking:
			b.Text = r.String(b.Text)
		case core.BlockServerToolUse, core.BlockToolUse:
			b.Input = walkAny(b.Input, r.String)
		}
	}
	return nil
}

// String redacts s. When matches overlap the earliest wins, and on equal
// starts the longest.
func (r *Redactor) String(s string) string {
	if s == "" || r.Empty() {
		return s
	}

	var matches []Match
	for _, rule := range r.rules {
		for _, m := range rule.Find(s) {
			if !r.allowed(s[m.Start:m.End]) {
				matches = append(matches, m)
			}
		}
	}
	if len(matches) == 0 {
		return s
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(b.End, a.End)
	})

	var sb strings.Builder
	pos := 0
	for _, m := range matches {
		if m.Start < pos {
			continue
		}
		sb.WriteString(s[pos:m.Start])
		sb.WriteString(m.replacement())
		pos = m.End
	}
	sb.WriteString(s[pos:])
	return sb.String()
}

func (r *Redactor) allowed(value string) bool {
	return slices.ContainsFunc(r.allowlist, func(re *regexp.Regexp) bool {
		return re.MatchString(value)
	})
}
