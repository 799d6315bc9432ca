package matching

import (
	"strings"

	"github.com/getmockd/httpmock/internal/glob"
	"github.com/getmockd/httpmock/pkg/mock"
)

// MatchHost checks if the request host matches the key's host pattern.
func (m *Matcher) MatchHost(pattern, host string) bool {
	return m.cache.Match(pattern, host, glob.KindHost)
}

// MatchPath checks if the request path matches the key's path pattern.
func (m *Matcher) MatchPath(pattern, path string) bool {
	return m.cache.Match(pattern, path, glob.KindPath)
}

// WildcardMatch matches value against a glob pattern of the given kind.
func (m *Matcher) WildcardMatch(pattern, value string, kind glob.Kind) bool {
	return m.cache.Match(pattern, value, kind)
}

// exactMatch reports whether the key names the request literally.
func exactMatch(key mock.Key, host, path string) bool {
	return strings.EqualFold(key.Host, host) && key.Path == path
}
