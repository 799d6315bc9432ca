package matching

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/getmockd/httpmock/pkg/mock"
)

// Score is the specificity of a key. Lower scores are more specific.
type Score struct {
	// Wildcards counts every "*" across the host and path patterns; "**" counts as two.
	Wildcards int
	// Literals counts every non-"*" character across the host and path patterns.
	Literals int
}

// Less reports whether s ranks ahead of other: fewer wildcards first, then
// more literal characters.
func (s Score) Less(other Score) bool {
	if s.Wildcards != other.Wildcards {
		return s.Wildcards < other.Wildcards
	}
	return s.Literals > other.Literals
}

// Tuple returns the score as (wildcardCount, -literalCount), which sorts
// ascending in the same order as Less.
func (s Score) Tuple() (int, int) {
	return s.Wildcards, -s.Literals
}

// String implements fmt.Stringer.
func (s Score) String() string {
	w, l := s.Tuple()
	return fmt.Sprintf("(%d, %d)", w, l)
}

// Specificity computes the score of a key from its host and path patterns.
func Specificity(key mock.Key) Score {
	hostWildcards, hostLiterals := patternScore(key.Host)
	pathWildcards, pathLiterals := patternScore(key.Path)
	return Score{
		Wildcards: hostWildcards + pathWildcards,
		Literals:  hostLiterals + pathLiterals,
	}
}

func patternScore(pattern string) (wildcards, literals int) {
	wildcards = strings.Count(pattern, "*")
	literals = utf8.RuneCountInString(pattern) - wildcards
	return wildcards, literals
}

// Near-miss score constants. They weigh how close a key came to matching
// a request and play no part in selection.
const (
	// ScoreHost is the score for a matching host pattern.
	ScoreHost = 10

	// ScorePath is the score for a matching path pattern.
	ScorePath = 15

	// ScoreQueryParam is the score for each constrained query parameter present
	// in the request with the expected value.
	ScoreQueryParam = 5

	// ScoreQueryUnconstrained is the score for a key without a query constraint.
	ScoreQueryUnconstrained = 1
)

// DefaultNearMisses is the number of near misses reported when no limit is given.
const DefaultNearMisses = 3
