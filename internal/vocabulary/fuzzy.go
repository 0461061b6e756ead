package vocabulary

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// closeMatches returns up to n possibilities whose similarity ratio to word is
// at least cutoff, best first. Ties are broken by reverse lexical order, the
// same ordering difflib's get_close_matches produces.
func closeMatches(word string, possibilities []string, n int, cutoff float64) []string {
	if n <= 0 || word == "" {
		return nil
	}

	type scored struct {
		term  string
		score float64
	}

	m := difflib.NewMatcher(nil, nil)
	m.SetSeq2(chars(word))

	var results []scored
	for _, p := range possibilities {
		m.SetSeq1(chars(p))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		if r := m.Ratio(); r >= cutoff {
			results = append(results, scored{term: p, score: r})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].term > results[j].term
	})

	if len(results) > n {
		results = results[:n]
	}
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.term)
	}
	return out
}

// Similarity returns the difflib ratio between two strings.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
