package matching

import (
	"maps"

	"github.com/getmockd/httpmock/pkg/mock"
)

// QueryMatches checks whether a request query satisfies a key's constraint.
func QueryMatches(key mock.Key, query map[string]string) bool {
	if key.Query == nil {
		return true
	}

	switch key.QueryMode {
	case mock.QueryContains:
		return MatchQueryParams(key.Query, query)
	default:
		return maps.Equal(key.Query, query)
	}
}

// MatchQueryParams checks if all expected query parameters are present with
// equal values. Extra request parameters are ignored.
func MatchQueryParams(expected, query map[string]string) bool {
	for name, value := range expected {
		if !MatchQueryParam(name, value, query) {
			return false
		}
	}
	return true
}

// MatchQueryParam checks if a specific query parameter is present with the expected value.
func MatchQueryParam(name, expectedValue string, query map[string]string) bool {
	actual, ok := query[name]
	return ok && actual == expectedValue
}
