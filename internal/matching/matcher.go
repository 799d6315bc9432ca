package matching

import (
	"github.com/getmockd/httpmock/internal/glob"
	"github.com/getmockd/httpmock/pkg/mock"
)

// Matcher selects the best registration key for a request.
// It is safe for concurrent use.
type Matcher struct {
	cache *glob.Cache
}

// New creates a Matcher backed by cache. A nil cache uses glob.Shared().
func New(cache *glob.Cache) *Matcher {
	if cache == nil {
		cache = glob.Shared()
	}
	return &Matcher{cache: cache}
}

// Default returns a Matcher backed by the process-wide glob cache.
func Default() *Matcher {
	return New(nil)
}

// SelectBest returns the candidate key that best matches the request, or
// false when no candidate matches.
//
// An exact host and path match with a satisfied query constraint wins
// outright. Otherwise the wildcard matches are ranked by Specificity and the
// earliest candidate wins ties.
func (m *Matcher) SelectBest(host, path string, query map[string]string, candidates []mock.Key) (mock.Key, bool) {
	for _, key := range candidates {
		if exactMatch(key, host, path) && QueryMatches(key, query) {
			return key, true
		}
	}

	var (
		best      mock.Key
		bestScore Score
		found     bool
	)
	for _, key := range candidates {
		if !m.Matches(key, host, path, query) {
			continue
		}
		score := Specificity(key)
		if !found || score.Less(bestScore) {
			best, bestScore, found = key, score, true
		}
	}
	return best, found
}

// Matches reports whether a single key matches the request.
func (m *Matcher) Matches(key mock.Key, host, path string, query map[string]string) bool {
	if !QueryMatches(key, query) {
		return false
	}
	return m.MatchHost(key.Host, host) && m.MatchPath(key.Path, path)
}

// MatchAll returns every candidate key that matches the request, in
// candidate order.
func (m *Matcher) MatchAll(host, path string, query map[string]string, candidates []mock.Key) []mock.Key {
	var matched []mock.Key
	for _, key := range candidates {
		if m.Matches(key, host, path, query) {
			matched = append(matched, key)
		}
	}
	return matched
}
