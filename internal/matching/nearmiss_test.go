package matching

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/httpmock/internal/glob"
	"github.com/getmockd/httpmock/pkg/mock"
)

func TestMatchBreakdown(t *testing.T) {
	m := New(glob.NewCache())

	t.Run("path mismatch", func(t *testing.T) {
		nm := m.MatchBreakdown(key("*.example.com", "/api/users"), "api.example.com", "/api/orders", nil)
		require.Len(t, nm.Fields, 3)
		assert.True(t, nm.Fields[0].Matched)
		assert.False(t, nm.Fields[1].Matched)
		assert.True(t, nm.Fields[2].Matched)
		assert.Equal(t, ScoreHost+ScoreQueryUnconstrained, nm.Score)
		assert.Equal(t, ScoreHost+ScorePath+ScoreQueryUnconstrained, nm.MaxPossibleScore)
		assert.Equal(t, `host and query matched, but path expected "/api/users", got "/api/orders"`, nm.Reason)
	})

	t.Run("query param value differs", func(t *testing.T) {
		k := mock.NewKey("example.com", "/search", map[string]string{"q": "go", "page": "1"}, mock.QueryContains)
		nm := m.MatchBreakdown(k, "example.com", "/search", map[string]string{"q": "go", "page": "2"})
		query := nm.Fields[2]
		assert.False(t, query.Matched)
		assert.Equal(t, ScoreQueryParam, query.Score)
		assert.Equal(t, 2*ScoreQueryParam, query.MaxScore)
		assert.Equal(t, `host and path matched, but query param page expected "1", got "2"`, nm.Reason)
	})

	t.Run("query param missing", func(t *testing.T) {
		k := mock.NewKey("example.com", "/search", map[string]string{"q": "go"}, mock.QueryExact)
		nm := m.MatchBreakdown(k, "example.com", "/search", nil)
		assert.Equal(t, "host and path matched, but query param q missing", nm.Reason)
	})

	t.Run("unexpected query param", func(t *testing.T) {
		k := mock.NewKey("example.com", "/search", map[string]string{"q": "go"}, mock.QueryExact)
		nm := m.MatchBreakdown(k, "example.com", "/search", map[string]string{"q": "go", "page": "2"})
		assert.False(t, nm.Fields[2].Matched)
		assert.Equal(t, "host and path matched, but unexpected query param page", nm.Reason)
	})

	t.Run("all matched", func(t *testing.T) {
		nm := m.MatchBreakdown(key("example.com", "/"), "example.com", "/", nil)
		assert.Equal(t, 100, nm.MatchPercentage)
		assert.Equal(t, "all fields matched", nm.Reason)
	})
}

func TestCollectNearMisses(t *testing.T) {
	m := New(glob.NewCache())
	candidates := []mock.Key{
		key("other.com", "/nothing"),
		key("example.com", "/api/orders"),
		key("other.com", "/api/users"),
		mock.NewKey("example.com", "/api/users", map[string]string{"v": "2"}, mock.QueryExact),
	}

	misses := m.CollectNearMisses("example.com", "/api/users", map[string]string{"v": "1"}, candidates, 0)
	require.Len(t, misses, 3)

	// Host and path both matched on the query-constrained key.
	assert.Equal(t, "/api/users", misses[0].Key.Path)
	assert.Equal(t, "example.com", misses[0].Key.Host)
	// The path match outweighs the host match.
	assert.Equal(t, "other.com", misses[1].Key.Host)
	assert.Equal(t, "/api/orders", misses[2].Key.Path)

	for _, nm := range misses {
		assert.NotEmpty(t, nm.Reason)
		assert.NotEmpty(t, nm.String())
	}
}

func TestCollectNearMisses_TopN(t *testing.T) {
	m := New(glob.NewCache())
	candidates := []mock.Key{
		key("example.com", "/a"),
		key("example.com", "/b"),
		key("example.com", "/c"),
	}

	misses := m.CollectNearMisses("example.com", "/d", nil, candidates, 2)
	require.Len(t, misses, 2)
	assert.Equal(t, "/a", misses[0].Key.Path)
	assert.Equal(t, "/b", misses[1].Key.Path)
}

func TestCollectNearMisses_SkipsUnrelatedKeys(t *testing.T) {
	m := New(glob.NewCache())
	misses := m.CollectNearMisses("example.com", "/users", nil, []mock.Key{key("other.com", "/orders")}, 3)
	assert.Empty(t, misses)
}

func TestGenerateReason(t *testing.T) {
	assert.Equal(t, "no fields to compare", GenerateReason(nil))
	assert.Equal(t, `host expected "a.com", got "b.com"`, GenerateReason([]FieldResult{
		{Field: "host", Expected: "a.com", Actual: "b.com"},
		{Field: "path", Expected: "/", Actual: "/x"},
	}))
}

func TestJoinFields(t *testing.T) {
	assert.Equal(t, "", joinFields(nil))
	assert.Equal(t, "host", joinFields([]string{"host"}))
	assert.Equal(t, "host and path", joinFields([]string{"host", "path"}))
	assert.Equal(t, "host, path, and query", joinFields([]string{"host", "path", "query"}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdef", 2))

	// "é" is two bytes; a cut inside it backs off to the rune start.
	got := truncate("/café/menu", 5)
	assert.Equal(t, "/caf...", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "/café...", truncate("/café/menu", 6))
}
