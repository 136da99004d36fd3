// Package fuzzy ranks candidate names by edit distance.
// Used by optparse/errors.go for "did you mean" hints on unknown options
// and mistyped subcommands.
package fuzzy

import (
	"slices"
	"strings"
)

// Matcher ranks candidates against a mistyped input
type Matcher struct {
	maxDistance int
	minLength   int
}

// NewMatcher creates a matcher accepting candidates within maxDistance edits.
func NewMatcher(maxDistance int) *Matcher {
	return &Matcher{
		maxDistance: maxDistance,
		minLength:   2, // single characters match too much to be useful
	}
}

// Match is one ranked candidate
type Match struct {
	Value    string
	Distance int
	Score    float64 // 0.0 to 1.0, higher is better
}

// FindBest returns the best candidate, or "" when nothing is close enough.
func (m *Matcher) FindBest(input string, candidates []string) string {
	matches := m.FindMatches(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Value
}

// FindMatches returns every candidate within range, best first.
// Comparison is case-insensitive and exact matches are skipped.
func (m *Matcher) FindMatches(input string, candidates []string) []Match {
	if len([]rune(input)) < m.minLength {
		return nil
	}
	in := []rune(strings.ToLower(input))

	var matches []Match
	for _, candidate := range candidates {
		c := []rune(strings.ToLower(candidate))
		if slices.Equal(in, c) {
			continue
		}
		d := m.levenshteinDistance(in, c)
		if d > m.maxDistance {
			continue
		}
		matches = append(matches, Match{Value: candidate, Distance: d, Score: m.calculateScore(in, c, d)})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.Distance != b.Distance:
			return a.Distance - b.Distance
		default:
			return strings.Compare(a.Value, b.Value)
		}
	})
	return matches
}

// calculateScore combines edit distance with shared prefix and length
// similarity.
func (m *Matcher) calculateScore(input, candidate []rune, distance int) float64 {
	maxLen := max(len(input), len(candidate))
	if maxLen == 0 {
		return 1.0
	}

	score := 1.0 - float64(distance)/float64(maxLen)
	if shortest := min(len(input), len(candidate)); shortest > 0 {
		score += float64(commonPrefixLength(input, candidate)) / float64(shortest) * 0.3
	}
	score += (1.0 - float64(abs(len(input)-len(candidate)))/float64(maxLen)) * 0.2
	return min(score, 1.0)
}

// levenshteinDistance returns the edit distance, or maxDistance+1 as soon
// as the result is known to exceed maxDistance.
func (m *Matcher) levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if abs(len(a)-len(b)) > m.maxDistance {
		return m.maxDistance + 1
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for i := 1; i <= len(b); i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= len(a); j++ {
			cost := 1
			if a[j-1] == b[i-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > m.maxDistance {
			return m.maxDistance + 1
		}
		prev, curr = curr, prev
	}
	return prev[len(a)]
}

func commonPrefixLength(a, b []rune) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// FindBestOption finds the closest option spelling, dashes included.
func FindBestOption(input string, options []string, maxDistance int) string {
	return NewMatcher(maxDistance).FindBest(input, options)
}

// FindBestSubcommand finds the closest subcommand alias.
func FindBestSubcommand(input string, subcommands []string, maxDistance int) string {
	return NewMatcher(maxDistance).FindBest(input, subcommands)
}

// FindSuggestions returns up to maxSuggestions candidates, best first.
func FindSuggestions(input string, candidates []string, maxDistance, maxSuggestions int) []string {
	matches := NewMatcher(maxDistance).FindMatches(input, candidates)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	out := make([]string, len(matches))
	for i, match := range matches {
		out[i] = match.Value
	}
	return out
}
