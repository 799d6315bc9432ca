package mock

import (
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"
)

// QueryMode determines how a key's query constraint is compared against a
// request's query parameters.
type QueryMode string

const (
	// QueryExact requires the request query to contain exactly the constrained
	// pairs and nothing else.
	QueryExact QueryMode = "exact"

	// QueryContains requires every constrained pair to be present in the
	// request. Extra request parameters are ignored.
	QueryContains QueryMode = "contains"
)

// ParseQueryMode parses a query mode string.
// Returns QueryExact if the string is not recognized.
func ParseQueryMode(s string) QueryMode {
	switch strings.ToLower(s) {
	case "contains":
		return QueryContains
	default:
		return QueryExact
	}
}

// Key identifies one response queue within a namespace.
// Build keys with NewKey so the host is normalized.
type Key struct {
	// Host is the host pattern, always lowercase.
	Host string `json:"host" yaml:"host"`

	// Path is the path pattern, always starting with "/" unless it begins
	// with a "**" wildcard.
	Path string `json:"path" yaml:"path"`

	// Query holds the required query pairs. Nil means no constraint.
	Query map[string]string `json:"query,omitempty" yaml:"query,omitempty"`

	// QueryMode controls how Query is compared. Defaults to QueryExact.
	QueryMode QueryMode `json:"queryMode,omitempty" yaml:"queryMode,omitempty"`
}

// NewKey creates a Key, lowercasing the host and copying the query map.
// The path is stored as given; callers normalize it with NormalizePath first.
func NewKey(host, path string, query map[string]string, mode QueryMode) Key {
	if mode == "" {
		mode = QueryExact
	}
	var q map[string]string
	if query != nil {
		q = maps.Clone(query)
	}
	return Key{
		Host:      strings.ToLower(host),
		Path:      path,
		Query:     q,
		QueryMode: mode,
	}
}

// NormalizePath makes sure a path starts with "/".
// Paths starting with a "**" wildcard are left alone so the pattern can match
// relative paths too.
func NormalizePath(path string) string {
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "**") {
		return path
	}
	return "/" + path
}

// ID returns a canonical string for the key. Two keys are equal exactly when
// their IDs are equal, which lets keys index maps despite holding a map field.
func (k Key) ID() string {
	var b strings.Builder
	b.WriteString(k.Host)
	b.WriteByte('\x00')
	b.WriteString(k.Path)
	b.WriteByte('\x00')
	if k.Query == nil {
		b.WriteString("-")
		return b.String()
	}
	mode := k.QueryMode
	if mode == "" {
		mode = QueryExact
	}
	b.WriteString(string(mode))
	for _, name := range sortedKeys(k.Query) {
		b.WriteByte('\x00')
		b.WriteString(strconv.Quote(name))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(k.Query[name]))
	}
	return b.String()
}

// Equal reports whether two keys are structurally identical.
func (k Key) Equal(other Key) bool {
	return k.ID() == other.ID()
}

// String returns a human-readable description used in log output.
func (k Key) String() string {
	return fmt.Sprintf("%s%s %s", k.Host, k.Path, DescribeQuery(k.Query, k.QueryMode))
}

// DescribeQuery renders a query map for log output, e.g. "[query exact: a=1&b=2]".
// An empty mode omits the matching mode, which suits request queries.
func DescribeQuery(query map[string]string, mode QueryMode) string {
	if len(query) == 0 {
		return "[query empty]"
	}
	parts := make([]string, 0, len(query))
	for _, name := range sortedKeys(query) {
		parts = append(parts, name+"="+query[name])
	}
	if mode == "" {
		return "[query: " + strings.Join(parts, "&") + "]"
	}
	return fmt.Sprintf("[query %s: %s]", mode, strings.Join(parts, "&"))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
