package build

import (
	"sort"

	"github.com/alecthomas/participle/v2/lexer"

	"frost/internal/errors"
)

func at(p lexer.Position) errors.Position {
	return errors.Position{Line: p.Line, Column: p.Column}
}

// findSimilarNames filters candidates down to plausible typo fixes for
// name, sorted for stable diagnostics.
func findSimilarNames(name string, candidates []string) []string {
	var similar []string
	for _, candidate := range candidates {
		if candidate == name {
			continue
		}
		if levenshteinDistance(name, candidate) <= 2 && len(candidate) > 1 {
			similar = append(similar, candidate)
		}
	}
	sort.Strings(similar)
	return similar
}

// Simple Levenshtein distance for finding similar names
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for i := 0; i < len(b); i++ {
		current := make([]int, len(a)+1)
		current[0] = i + 1

		for j := 0; j < len(a); j++ {
			cost := 0
			if a[j] != b[i] {
				cost = 1
			}
			current[j+1] = min3(
				current[j]+1,     // insertion
				previous[j+1]+1,  // deletion
				previous[j]+cost, // substitution
			)
		}
		previous = current
	}

	return previous[len(a)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
