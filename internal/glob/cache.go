package glob

import (
	"regexp"
	"strings"
	"sync"
)

// Matcher reports whether a concrete host or path matches a pattern.
type Matcher interface {
	Match(value string) bool
}

type literalMatcher struct {
	pattern  string
	foldCase bool
}

func (m literalMatcher) Match(value string) bool {
	if m.foldCase {
		return strings.EqualFold(m.pattern, value)
	}
	return m.pattern == value
}

type regexpMatcher struct {
	re *regexp.Regexp
}

func (m regexpMatcher) Match(value string) bool {
	return m.re.MatchString(value)
}

// neverMatcher stands in for patterns that failed to compile.
type neverMatcher struct{}

func (neverMatcher) Match(string) bool { return false }

type cacheKey struct {
	pattern string
	kind    Kind
}

// Cache memoizes compiled matchers by pattern and kind. Entries are created on
// first use and never evicted. A Cache is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	matchers map[cacheKey]Matcher
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{
		matchers: make(map[cacheKey]Matcher),
	}
}

var shared = NewCache()

// Shared returns the process-wide cache. Compilation does not depend on the
// namespace, so every namespace reuses the same compiled matchers.
func Shared() *Cache {
	return shared
}

// Matcher returns the matcher for a pattern, compiling it on first use.
// Patterns without wildcards compare by equality and are never compiled.
// Patterns that fail to compile never match anything.
func (c *Cache) Matcher(pattern string, kind Kind) Matcher {
	if !HasWildcard(pattern) {
		return literalMatcher{pattern: pattern, foldCase: kind == KindHost}
	}

	key := cacheKey{pattern: pattern, kind: kind}

	c.mu.RLock()
	m, ok := c.matchers[key]
	c.mu.RUnlock()
	if ok {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.matchers[key]; ok {
		return m
	}

	re, err := Compile(pattern, kind)
	if err != nil {
		m = neverMatcher{}
	} else {
		m = regexpMatcher{re: re}
	}
	c.matchers[key] = m
	return m
}

// Match reports whether value matches pattern.
func (c *Cache) Match(pattern, value string, kind Kind) bool {
	return c.Matcher(pattern, kind).Match(value)
}

// Len returns the number of compiled matchers held by the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matchers)
}
