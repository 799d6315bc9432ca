package glob

import (
	"regexp"
	"strings"
)

// Kind is the URL component a pattern applies to. It decides the segment
// delimiter for "*" and whether matching is case-sensitive.
type Kind int

const (
	// KindHost patterns use "." as the segment delimiter and match case-insensitively.
	KindHost Kind = iota
	// KindPath patterns use "/" as the segment delimiter and match case-sensitively.
	KindPath
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	if k == KindPath {
		return "path"
	}
	return "host"
}

// singleSegment returns the expression "*" expands to.
func (k Kind) singleSegment() string {
	if k == KindPath {
		return `[^/]*`
	}
	return `[^.]*`
}

// HasWildcard reports whether a pattern contains a glob wildcard.
func HasWildcard(pattern string) bool {
	return strings.Contains(pattern, "*")
}

// Expression translates a glob pattern into an anchored regular expression.
//
// "**" matches across segment delimiters and "*" matches within one segment.
// For paths, "/**/" may match zero segments, a leading "**/" makes the prefix
// optional, and a trailing "/**" makes the suffix optional. Host expressions
// carry the (?i) flag.
func Expression(pattern string, kind Kind) string {
	expr := regexp.QuoteMeta(pattern)

	if kind == KindPath {
		expr = strings.ReplaceAll(expr, `/\*\*/`, `/(?:.*/)?`)
		expr = strings.ReplaceAll(expr, `\*\*/`, `(?:.*/)?`)
		expr = strings.ReplaceAll(expr, `/\*\*`, `(?:/.*)?`)
	}

	// "**" before "*".
	expr = strings.ReplaceAll(expr, `\*\*`, `.*`)
	expr = strings.ReplaceAll(expr, `\*`, kind.singleSegment())

	expr = "^" + expr + "$"
	if kind == KindHost {
		expr = "(?i)" + expr
	}
	return expr
}

// Compile compiles a glob pattern into an anchored regular expression.
func Compile(pattern string, kind Kind) (*regexp.Regexp, error) {
	return regexp.Compile(Expression(pattern, kind))
}
