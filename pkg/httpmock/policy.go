package httpmock

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoMock is returned by the transport for unmocked requests under the
// PolicyError policy.
var ErrNoMock = errors.New("no mock registered for request")

// UnmockedPolicy controls how requests without a queued response are answered.
type UnmockedPolicy int

const (
	// PolicyNotFound answers with a 404 text/plain response.
	PolicyNotFound UnmockedPolicy = iota
	// PolicyPassthrough sends the request to the passthrough transport.
	PolicyPassthrough
	// PolicyError fails the request with ErrNoMock.
	PolicyError
)

// String implements fmt.Stringer.
func (p UnmockedPolicy) String() string {
	switch p {
	case PolicyPassthrough:
		return "passthrough"
	case PolicyError:
		return "error"
	default:
		return "notFound"
	}
}

// ParseUnmockedPolicy parses a policy name, ignoring case.
// An empty string yields PolicyNotFound.
func ParseUnmockedPolicy(s string) (UnmockedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "notfound", "not_found", "not-found", "404":
		return PolicyNotFound, nil
	case "passthrough":
		return PolicyPassthrough, nil
	case "error":
		return PolicyError, nil
	default:
		return PolicyNotFound, fmt.Errorf("unknown unmocked policy %q", s)
	}
}
