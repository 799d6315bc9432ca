package matching

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/getmockd/httpmock/pkg/mock"
)

// FieldResult describes whether a single key field matched the request.
type FieldResult struct {
	Field    string        `json:"field"`
	Matched  bool          `json:"matched"`
	Score    int           `json:"score"`
	MaxScore int           `json:"maxScore"`
	Expected string        `json:"expected,omitempty"`
	Actual   string        `json:"actual,omitempty"`
	Details  []ParamDetail `json:"details,omitempty"`
}

// ParamDetail describes the match result for a single query parameter.
type ParamDetail struct {
	Name       string `json:"name"`
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
	Present    bool   `json:"present"`
	Matched    bool   `json:"matched"`
	Unexpected bool   `json:"unexpected,omitempty"`
}

// NearMiss is a key that partially matched an incoming request.
type NearMiss struct {
	Key              mock.Key      `json:"key"`
	Score            int           `json:"score"`
	MaxPossibleScore int           `json:"maxPossibleScore"`
	MatchPercentage  int           `json:"matchPercentage"`
	Fields           []FieldResult `json:"fields"`
	Reason           string        `json:"reason"`
}

// String implements fmt.Stringer.
func (n NearMiss) String() string {
	return fmt.Sprintf("%s (%d%%): %s", n.Key, n.MatchPercentage, n.Reason)
}

// MatchBreakdown evaluates every field of key against the request without
// short-circuiting, returning per-field match/mismatch results.
func (m *Matcher) MatchBreakdown(key mock.Key, host, path string, query map[string]string) *NearMiss {
	result := &NearMiss{Key: key}

	hostMatched := m.MatchHost(key.Host, host)
	result.add(FieldResult{
		Field:    "host",
		Matched:  hostMatched,
		Score:    scoreIf(hostMatched, ScoreHost),
		MaxScore: ScoreHost,
		Expected: key.Host,
		Actual:   host,
	})

	pathMatched := m.MatchPath(key.Path, path)
	result.add(FieldResult{
		Field:    "path",
		Matched:  pathMatched,
		Score:    scoreIf(pathMatched, ScorePath),
		MaxScore: ScorePath,
		Expected: key.Path,
		Actual:   path,
	})

	result.add(queryBreakdown(key, query))

	if result.MaxPossibleScore > 0 {
		result.MatchPercentage = result.Score * 100 / result.MaxPossibleScore
	}
	result.Reason = GenerateReason(result.Fields)
	return result
}

func (n *NearMiss) add(f FieldResult) {
	n.Fields = append(n.Fields, f)
	n.Score += f.Score
	n.MaxPossibleScore += f.MaxScore
}

func queryBreakdown(key mock.Key, query map[string]string) FieldResult {
	if key.Query == nil {
		return FieldResult{
			Field:    "query",
			Matched:  true,
			Score:    ScoreQueryUnconstrained,
			MaxScore: ScoreQueryUnconstrained,
		}
	}

	f := FieldResult{
		Field:    "query",
		Matched:  QueryMatches(key, query),
		MaxScore: len(key.Query) * ScoreQueryParam,
		Expected: mock.DescribeQuery(key.Query, key.QueryMode),
		Actual:   mock.DescribeQuery(query, ""),
	}
	for _, name := range sortedNames(key.Query) {
		actual, present := query[name]
		d := ParamDetail{
			Name:     name,
			Expected: key.Query[name],
			Actual:   actual,
			Present:  present,
			Matched:  present && actual == key.Query[name],
		}
		if d.Matched {
			f.Score += ScoreQueryParam
		}
		f.Details = append(f.Details, d)
	}
	if key.QueryMode != mock.QueryContains {
		// Extra request parameters break an exact constraint.
		for _, name := range sortedNames(query) {
			if _, ok := key.Query[name]; !ok {
				f.Details = append(f.Details, ParamDetail{Name: name, Actual: query[name], Present: true, Unexpected: true})
			}
		}
	}
	return f
}

// CollectNearMisses evaluates candidate keys against a request that found no
// match and returns the top N closest. Keys where nothing matched are omitted.
func (m *Matcher) CollectNearMisses(host, path string, query map[string]string, candidates []mock.Key, topN int) []NearMiss {
	if topN <= 0 {
		topN = DefaultNearMisses
	}

	var misses []NearMiss
	for _, key := range candidates {
		nm := m.MatchBreakdown(key, host, path, query)
		if !nm.anyKeyFieldMatched() {
			continue
		}
		misses = append(misses, *nm)
	}

	sort.SliceStable(misses, func(i, j int) bool {
		if misses[i].Score != misses[j].Score {
			return misses[i].Score > misses[j].Score
		}
		return misses[i].MatchPercentage > misses[j].MatchPercentage
	})

	if len(misses) > topN {
		misses = misses[:topN]
	}
	return misses
}

// anyKeyFieldMatched ignores the unconstrained query field, which always matches.
func (n *NearMiss) anyKeyFieldMatched() bool {
	for _, f := range n.Fields {
		if f.Field == "query" && f.Expected == "" {
			continue
		}
		if f.Matched || f.Score > 0 {
			return true
		}
	}
	return false
}

// GenerateReason produces a human-readable explanation of a near miss.
func GenerateReason(fields []FieldResult) string {
	if len(fields) == 0 {
		return "no fields to compare"
	}

	var matched []string
	var firstMismatch *FieldResult

	for i := range fields {
		if fields[i].Matched {
			matched = append(matched, fields[i].Field)
		} else if firstMismatch == nil {
			firstMismatch = &fields[i]
		}
	}

	if firstMismatch == nil {
		return "all fields matched"
	}

	if len(matched) == 0 {
		return formatMismatch(firstMismatch)
	}

	return joinFields(matched) + " matched, but " + formatMismatch(firstMismatch)
}

func formatMismatch(f *FieldResult) string {
	switch f.Field {
	case "host":
		return fmt.Sprintf("host expected %q, got %q", f.Expected, f.Actual)
	case "path":
		return fmt.Sprintf("path expected %q, got %q", f.Expected, truncate(f.Actual, 80))
	case "query":
		for _, d := range f.Details {
			switch {
			case d.Unexpected:
				return fmt.Sprintf("unexpected query param %s", d.Name)
			case !d.Present:
				return fmt.Sprintf("query param %s missing", d.Name)
			case !d.Matched:
				return fmt.Sprintf("query param %s expected %q, got %q", d.Name, d.Expected, d.Actual)
			}
		}
		return "query mismatch"
	default:
		return f.Field + " did not match"
	}
}

func joinFields(fields []string) string {
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return fields[0]
	case 2:
		return fields[0] + " and " + fields[1]
	default:
		return strings.Join(fields[:len(fields)-1], ", ") + ", and " + fields[len(fields)-1]
	}
}

func scoreIf(matched bool, score int) int {
	if matched {
		return score
	}
	return 0
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	i := maxLen
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i] + "..."
}
