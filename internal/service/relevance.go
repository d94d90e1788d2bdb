package service

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// RelevanceThreshold is the minimum score for a phrase match to qualify.
	RelevanceThreshold = 0.6

	prefixBonus   = 0.2
	containsBonus = 0.1
)

// Relevance scores how well query matches candidate, in [0, 1].
// The base is the Ratcliff/Obershelp similarity of the lower-cased strings;
// a candidate starting with the query earns a prefix bonus and one merely
// containing it a smaller bonus. Both bonuses stack.
func Relevance(query, candidate string) float64 {
	q := strings.ToLower(query)
	c := strings.ToLower(candidate)

	matcher := difflib.NewMatcher(strings.Split(q, ""), strings.Split(c, ""))
	score := matcher.Ratio()
	if strings.HasPrefix(c, q) {
		score += prefixBonus
	}
	if strings.Contains(c, q) {
		score += containsBonus
	}
	if score > 1 {
		return 1
	}
	return score
}

// Qualifies reports whether the phrase score reaches RelevanceThreshold.
func Qualifies(score float64) bool {
	return score >= RelevanceThreshold
}
