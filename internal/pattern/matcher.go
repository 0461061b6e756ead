package pattern

import (
	"strings"
)

// Matcher evaluates text against a rule table. Matching is a case-insensitive
// substring test of each keyword, rules in table order, keywords in rule order.
type Matcher struct {
	table    Table
	excludes []exclusion
}

type exclusion struct {
	phrase string
	window int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithExclusion rejects a keyword hit when phrase occurs within window
// characters around the keyword's first occurrence.
func WithExclusion(phrase string, window int) Option {
	return func(m *Matcher) {
		m.excludes = append(m.excludes, exclusion{phrase: strings.ToLower(phrase), window: window})
	}
}

// NewMatcher creates a matcher over the given table.
func NewMatcher(table Table, opts ...Option) *Matcher {
	m := &Matcher{table: table}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Table returns the rules this matcher evaluates.
func (m *Matcher) Table() Table {
	return m.table
}

// Match returns the first rule with a keyword occurring in text.
func (m *Matcher) Match(text string) (Match, bool) {
	lower := strings.ToLower(text)
	if lower == "" {
		return Match{}, false
	}

	for i, rule := range m.table {
		if kw, ok := m.matchesRule(lower, rule); ok {
			return Match{Term: rule.Term, Keyword: kw, Index: i}, true
		}
	}
	return Match{}, false
}

// MatchAll returns every rule with a keyword occurring in text, in table order.
func (m *Matcher) MatchAll(text string) []Match {
	lower := strings.ToLower(text)
	if lower == "" {
		return nil
	}

	var matches []Match
	for i, rule := range m.table {
		if kw, ok := m.matchesRule(lower, rule); ok {
			matches = append(matches, Match{Term: rule.Term, Keyword: kw, Index: i})
		}
	}
	return matches
}

// MatchFirst tries each text in order and returns the first hit.
func (m *Matcher) MatchFirst(texts []string) (Match, bool) {
	for _, text := range texts {
		if match, ok := m.Match(text); ok {
			return match, true
		}
	}
	return Match{}, false
}

// matchesRule reports the first keyword of rule found in lower.
func (m *Matcher) matchesRule(lower string, rule Rule) (string, bool) {
	for _, kw := range rule.Keywords {
		needle := strings.ToLower(kw)
		if needle == "" {
			continue
		}
		idx := strings.Index(lower, needle)
		if idx < 0 || m.excluded(lower, idx, len(needle)) {
			continue
		}
		return kw, true
	}
	return "", false
}

func (m *Matcher) excluded(lower string, idx, n int) bool {
	for _, ex := range m.excludes {
		start := max(0, idx-ex.window)
		end := min(len(lower), idx+n+ex.window)
		if strings.Contains(lower[start:end], ex.phrase) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether any of words occurs in text. Comparison is exact
// (case-sensitive) so callers decide on case folding.
func ContainsAny(text string, words ...string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			return true
		}
	}
	return false
}
