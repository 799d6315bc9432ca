package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/httpmock/internal/glob"
	"github.com/getmockd/httpmock/pkg/mock"
)

func key(host, path string) mock.Key {
	return mock.NewKey(host, path, nil, "")
}

func TestSelectBest_ExactBeatsWildcard(t *testing.T) {
	m := New(glob.NewCache())
	candidates := []mock.Key{
		key("*.example.com", "/users"),
		key("api.example.com", "/users"),
	}

	got, ok := m.SelectBest("api.example.com", "/users", nil, candidates)
	require.True(t, ok)
	assert.Equal(t, "api.example.com", got.Host)
}

func TestSelectBest_ExactHostIsCaseInsensitive(t *testing.T) {
	m := New(glob.NewCache())
	candidates := []mock.Key{
		key("**", "/users"),
		{Host: "API.Example.com", Path: "/users"},
	}

	got, ok := m.SelectBest("api.example.com", "/users", nil, candidates)
	require.True(t, ok)
	assert.Equal(t, "API.Example.com", got.Host)
}

func TestSelectBest_Specificity(t *testing.T) {
	m := New(glob.NewCache())
	candidates := []mock.Key{
		key("example.com", "/api/*/users/**"),
		key("example.com", "/api/**/users"),
		key("example.com", "/api/*/users/active"),
	}

	tests := []struct {
		path string
		want string
	}{
		{"/api/x/users", "/api/**/users"},
		{"/api/x/users/active", "/api/*/users/active"},
		{"/api/x/users/inactive", "/api/*/users/**"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := m.SelectBest("example.com", tt.path, nil, candidates)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Path)
		})
	}
}

func TestSelectBest_LongerLiteralBreaksTie(t *testing.T) {
	m := New(glob.NewCache())
	candidates := []mock.Key{
		key("api.*.com", "/users"),
		key("*.example.com", "/users"),
	}

	got, ok := m.SelectBest("api.example.com", "/users", nil, candidates)
	require.True(t, ok)
	assert.Equal(t, "*.example.com", got.Host)
}

func TestSelectBest_TiesKeepCandidateOrder(t *testing.T) {
	m := New(glob.NewCache())
	first := key("*.example.com", "/users")
	second := key("api.example.*", "/users")
	require.Equal(t, Specificity(first), Specificity(second))

	got, ok := m.SelectBest("api.example.com", "/users", nil, []mock.Key{first, second})
	require.True(t, ok)
	assert.True(t, got.Equal(first))

	got, ok = m.SelectBest("api.example.com", "/users", nil, []mock.Key{second, first})
	require.True(t, ok)
	assert.True(t, got.Equal(second))
}

func TestSelectBest_SingleVsMultiSegmentHost(t *testing.T) {
	m := New(glob.NewCache())
	single := []mock.Key{key("*.example.com", "/")}
	multi := []mock.Key{key("**.example.com", "/")}

	_, ok := m.SelectBest("api.example.com", "/", nil, single)
	assert.True(t, ok)
	_, ok = m.SelectBest("a.b.example.com", "/", nil, single)
	assert.False(t, ok)

	_, ok = m.SelectBest("api.example.com", "/", nil, multi)
	assert.True(t, ok)
	_, ok = m.SelectBest("a.b.example.com", "/", nil, multi)
	assert.True(t, ok)
}

func TestSelectBest_HostAndPathBothMustMatch(t *testing.T) {
	m := New(glob.NewCache())
	candidates := []mock.Key{key("*.example.com", "/api/*")}

	_, ok := m.SelectBest("api.other.com", "/api/users", nil, candidates)
	assert.False(t, ok)
	_, ok = m.SelectBest("api.example.com", "/v2/users", nil, candidates)
	assert.False(t, ok)
	_, ok = m.SelectBest("api.example.com", "/api/users", nil, candidates)
	assert.True(t, ok)
}

func TestSelectBest_QueryConstraint(t *testing.T) {
	m := New(glob.NewCache())
	exact := mock.NewKey("example.com", "/search", map[string]string{"q": "go"}, mock.QueryExact)
	contains := mock.NewKey("example.com", "/search", map[string]string{"q": "go"}, mock.QueryContains)

	t.Run("exact rejects extra params", func(t *testing.T) {
		_, ok := m.SelectBest("example.com", "/search", map[string]string{"q": "go", "page": "2"}, []mock.Key{exact})
		assert.False(t, ok)
	})

	t.Run("contains accepts extra params", func(t *testing.T) {
		got, ok := m.SelectBest("example.com", "/search", map[string]string{"q": "go", "page": "2"}, []mock.Key{exact, contains})
		require.True(t, ok)
		assert.Equal(t, mock.QueryContains, got.QueryMode)
	})

	t.Run("exact pass skips unsatisfied query", func(t *testing.T) {
		wildcard := key("*.com", "/search")
		got, ok := m.SelectBest("example.com", "/search", map[string]string{"q": "rust"}, []mock.Key{exact, wildcard})
		require.True(t, ok)
		assert.Equal(t, "*.com", got.Host)
	})

	t.Run("empty constraint requires empty query", func(t *testing.T) {
		none := mock.NewKey("example.com", "/search", map[string]string{}, mock.QueryExact)
		_, ok := m.SelectBest("example.com", "/search", map[string]string{}, []mock.Key{none})
		assert.True(t, ok)
		_, ok = m.SelectBest("example.com", "/search", map[string]string{"q": "go"}, []mock.Key{none})
		assert.False(t, ok)
	})
}

func TestSelectBest_NoCandidates(t *testing.T) {
	m := Default()
	_, ok := m.SelectBest("example.com", "/", nil, nil)
	assert.False(t, ok)
}

func TestMatchAll(t *testing.T) {
	m := New(glob.NewCache())
	candidates := []mock.Key{
		key("*.example.com", "/**"),
		key("other.com", "/**"),
		key("api.example.com", "/users"),
	}

	got := m.MatchAll("api.example.com", "/users", nil, candidates)
	require.Len(t, got, 2)
	assert.Equal(t, "*.example.com", got[0].Host)
	assert.Equal(t, "api.example.com", got[1].Host)
}

func TestWildcardMatch_HostVsPath(t *testing.T) {
	m := New(glob.NewCache())

	// The same pattern compiles differently per kind.
	assert.True(t, m.WildcardMatch("*/test", "a.b/test", glob.KindPath))
	assert.False(t, m.WildcardMatch("*/test", "a.b/test", glob.KindHost))
	assert.True(t, m.WildcardMatch("*/test", "ab/test", glob.KindHost))
}

func TestSpecificity(t *testing.T) {
	tests := []struct {
		host, path string
		want       Score
	}{
		{"api.example.com", "/users", Score{Wildcards: 0, Literals: 21}},
		{"*.example.com", "/users", Score{Wildcards: 1, Literals: 18}},
		{"**.example.com", "/api/**", Score{Wildcards: 4, Literals: 17}},
		{"*", "/*", Score{Wildcards: 2, Literals: 1}},
		{"bücher.de", "/", Score{Wildcards: 0, Literals: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.host+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Specificity(key(tt.host, tt.path)))
		})
	}
}

func TestScoreLess(t *testing.T) {
	fewer := Score{Wildcards: 1, Literals: 3}
	more := Score{Wildcards: 2, Literals: 30}
	assert.True(t, fewer.Less(more))
	assert.False(t, more.Less(fewer))

	longer := Score{Wildcards: 1, Literals: 10}
	assert.True(t, longer.Less(fewer))
	assert.False(t, fewer.Less(fewer))

	w, l := longer.Tuple()
	assert.Equal(t, 1, w)
	assert.Equal(t, -10, l)
	assert.Equal(t, "(1, -10)", longer.String())
}

func TestQueryMatches(t *testing.T) {
	tests := []struct {
		name  string
		key   mock.Key
		query map[string]string
		want  bool
	}{
		{"no constraint", key("h", "/"), map[string]string{"a": "1"}, true},
		{"no constraint nil query", key("h", "/"), nil, true},
		{"exact equal", mock.NewKey("h", "/", map[string]string{"a": "1"}, mock.QueryExact), map[string]string{"a": "1"}, true},
		{"exact value differs", mock.NewKey("h", "/", map[string]string{"a": "1"}, mock.QueryExact), map[string]string{"a": "2"}, false},
		{"exact extra param", mock.NewKey("h", "/", map[string]string{"a": "1"}, mock.QueryExact), map[string]string{"a": "1", "b": "2"}, false},
		{"exact missing param", mock.NewKey("h", "/", map[string]string{"a": "1", "b": "2"}, mock.QueryExact), map[string]string{"a": "1"}, false},
		{"contains subset", mock.NewKey("h", "/", map[string]string{"a": "1"}, mock.QueryContains), map[string]string{"a": "1", "b": "2"}, true},
		{"contains value differs", mock.NewKey("h", "/", map[string]string{"a": "1"}, mock.QueryContains), map[string]string{"a": "2", "b": "2"}, false},
		{"contains missing", mock.NewKey("h", "/", map[string]string{"a": "1"}, mock.QueryContains), nil, false},
		{"contains empty constraint", mock.NewKey("h", "/", map[string]string{}, mock.QueryContains), map[string]string{"b": "2"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QueryMatches(tt.key, tt.query))
		})
	}
}
