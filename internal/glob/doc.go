// Package glob compiles host and path glob patterns into anchored matchers.
//
// Patterns use two wildcards:
//
//   - "*" matches any run of characters within one segment. The segment
//     delimiter is "." for hosts and "/" for paths.
//   - "**" matches any run of characters, delimiters included. In paths,
//     "/api/**/users" also matches "/api/users".
//
// Host patterns match case-insensitively; path patterns are case-sensitive.
// Patterns without wildcards are compared by string equality and are never
// compiled.
//
// Compiled matchers are memoized in a Cache keyed by pattern and kind. The
// cache only exists for performance: a cold cache produces the same decisions.
package glob
