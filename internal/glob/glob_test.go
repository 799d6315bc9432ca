package glob

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpression(t *testing.T) {
	tests := []struct {
		pattern string
		kind    Kind
		want    string
	}{
		{"*.example.com", KindHost, `(?i)^[^.]*\.example\.com$`},
		{"**.example.com", KindHost, `(?i)^.*\.example\.com$`},
		{"/api/*/users", KindPath, `^/api/[^/]*/users$`},
		{"/api/**/users", KindPath, `^/api/(?:.*/)?users$`},
		{"**/users", KindPath, `^(?:.*/)?users$`},
		{"/api/**", KindPath, `^/api(?:/.*)?$`},
		{"/v1.0/*", KindPath, `^/v1\.0/[^/]*$`},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+" "+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, Expression(tt.pattern, tt.kind))
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		kind    Kind
		value   string
		want    bool
	}{
		// Hosts
		{"single label wildcard", "*.example.com", KindHost, "api.example.com", true},
		{"single label does not cross dot", "*.example.com", KindHost, "a.b.example.com", false},
		{"double star crosses dots", "**.example.com", KindHost, "a.b.example.com", true},
		{"double star single label", "**.example.com", KindHost, "api.example.com", true},
		{"host is case-insensitive", "*.EXAMPLE.com", KindHost, "api.example.COM", true},
		{"literal host is case-insensitive", "API.example.com", KindHost, "api.example.com", true},
		{"wildcard inside label", "api*.example.com", KindHost, "api-test.example.com", true},
		{"wildcard inside label empty", "api*.example.com", KindHost, "api.example.com", true},
		{"wildcard inside label no cross", "api*.example.com", KindHost, "api.test.example.com", false},
		{"host with port", "*.example.com:8080", KindHost, "api.example.com:8080", true},
		{"host with other port", "*.example.com:8080", KindHost, "api.example.com:9090", false},
		{"host without port", "*.example.com:8080", KindHost, "api.example.com", false},
		{"dot is literal", "*.example.com", KindHost, "apiXexampleYcom", false},

		// Paths
		{"single segment", "/api/*/users", KindPath, "/api/v1/users", true},
		{"single segment no cross", "/api/*/users", KindPath, "/api/v1/x/users", false},
		{"double star zero segments", "/api/**/users", KindPath, "/api/users", true},
		{"double star one segment", "/api/**/users", KindPath, "/api/v1/users", true},
		{"double star many segments", "/api/**/users", KindPath, "/api/v1/x/users", true},
		{"double star keeps boundaries", "/api/**/users", KindPath, "/apiusers", false},
		{"trailing double star root", "/**", KindPath, "/", true},
		{"trailing double star any", "/**", KindPath, "/anything", true},
		{"leading double star absolute", "**/users", KindPath, "/users", true},
		{"leading double star relative", "**/users", KindPath, "users", true},
		{"trailing double star slash", "/api/**", KindPath, "/api/", true},
		{"trailing double star deep", "/api/**", KindPath, "/api/v1/something", true},
		{"both ends bare", "**/api/**", KindPath, "api", true},
		{"both ends deep", "**/api/**", KindPath, "/some/api/v1", true},
		{"two stars in one segment", "/api/*-*", KindPath, "/api/v1-test", true},
		{"two stars needs literal", "/api/*-*", KindPath, "/api/v1", false},
		{"trailing slash kept", "/api/*/", KindPath, "/api/users/", true},
		{"path is case-sensitive", "/API/*", KindPath, "/api/users", false},
		{"literal path", "/api/users", KindPath, "/api/users", true},
		{"literal path case", "/api/users", KindPath, "/API/users", false},
		{"anchored start", "/api/*", KindPath, "/v2/api/users", false},
		{"anchored end", "/api/*", KindPath, "/api/users/1", false},
		{"regex metacharacters are literal", "/a+b/*", KindPath, "/a+b/c", true},
		{"regex metacharacters do not expand", "/a+b/*", KindPath, "/aab/c", false},
		{"question mark is literal", "/what?/*", KindPath, "/what?/x", true},
	}

	cache := NewCache()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cache.Match(tt.pattern, tt.value, tt.kind))
			// A cold cache must reach the same decision.
			assert.Equal(t, tt.want, NewCache().Match(tt.pattern, tt.value, tt.kind))
		})
	}
}

func TestCacheMemoizes(t *testing.T) {
	cache := NewCache()

	m1 := cache.Matcher("*/test", KindHost)
	m2 := cache.Matcher("*/test", KindHost)
	assert.True(t, m1 == m2, "same pattern and kind reuse the compiled matcher")
	assert.Equal(t, 1, cache.Len())

	m3 := cache.Matcher("*/test", KindPath)
	assert.True(t, m1 != m3, "kind is part of the cache key")

	m4 := cache.Matcher("**/test", KindHost)
	assert.True(t, m1 != m4)
	assert.Equal(t, 3, cache.Len())
}

func TestLiteralPatternsSkipCompilation(t *testing.T) {
	cache := NewCache()
	assert.True(t, cache.Match("api.example.com", "API.example.com", KindHost))
	assert.True(t, cache.Match("/users", "/users", KindPath))
	assert.Equal(t, 0, cache.Len())
}

func TestCompile(t *testing.T) {
	re, err := Compile("/users/*", KindPath)
	require.NoError(t, err)
	assert.True(t, re.MatchString("/users/1"))
}

func TestNeverMatcher(t *testing.T) {
	var m Matcher = neverMatcher{}
	assert.False(t, m.Match(""))
	assert.False(t, m.Match("anything"))
}

func TestSharedCache(t *testing.T) {
	assert.Same(t, Shared(), Shared())
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache()
	patterns := []string{"*.example.com", "**.example.com", "api*.example.com"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := patterns[i%len(patterns)]
			assert.True(t, cache.Match(p, "api.example.com", KindHost))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(patterns), cache.Len())
}

func TestHasWildcard(t *testing.T) {
	assert.True(t, HasWildcard("*.example.com"))
	assert.True(t, HasWildcard("/api/**"))
	assert.False(t, HasWildcard("/api/users"))
}
