// Package pattern provides ordered keyword rule tables and the matcher shared by
// every attribute axis (category, color, material, pattern).
package pattern

import "strings"

// Rule maps a canonical term to the free-text keywords that trigger it.
type Rule struct {
	Term     string   `json:"term" yaml:"term"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Table is an ordered list of rules. Earlier rules win ties.
type Table []Rule

// Terms returns the canonical terms in table order.
func (t Table) Terms() []string {
	terms := make([]string, 0, len(t))
	for _, r := range t {
		terms = append(terms, r.Term)
	}
	return terms
}

// Lookup finds the rule for a canonical term, case-insensitively.
func (t Table) Lookup(term string) (Rule, bool) {
	for _, r := range t {
		if strings.EqualFold(r.Term, term) {
			return r, true
		}
	}
	return Rule{}, false
}

// Match is a rule that fired against some text.
type Match struct {
	Term    string
	Keyword string
	// Index is the position of the rule in its table.
	Index int
}
