package queue

import (
	"github.com/getmockd/httpmock/pkg/mock"
)

// Transition names what a pop did to the head of a queue.
type Transition int

const (
	// TransitionNone means the queue was empty.
	TransitionNone Transition = iota
	// TransitionRemoved means the head entry was served and removed.
	TransitionRemoved
	// TransitionDecremented means the head entry was served and replaced by a
	// copy with one use fewer.
	TransitionDecremented
	// TransitionKept means an eternal head entry was served and left in place.
	TransitionKept
	// TransitionDropped means an invalid head entry was removed without being served.
	TransitionDropped
)

// String implements fmt.Stringer.
func (t Transition) String() string {
	switch t {
	case TransitionRemoved:
		return "removed"
	case TransitionDecremented:
		return "decremented"
	case TransitionKept:
		return "kept"
	case TransitionDropped:
		return "dropped"
	default:
		return "none"
	}
}

// Served reports whether the transition produced a response.
func (t Transition) Served() bool {
	return t == TransitionRemoved || t == TransitionDecremented || t == TransitionKept
}

// advance applies the lifetime rules to the head of entries. It returns the
// served response, the queue that replaces entries, and the transition taken.
// entries is never modified; a decrement builds a new slice with a copy at
// the head.
func advance(entries []mock.Response) (mock.Response, []mock.Response, Transition) {
	if len(entries) == 0 {
		return mock.Response{}, entries, TransitionNone
	}

	head := entries[0]
	switch head.Lifetime.Kind {
	case mock.LifetimeEternal:
		return head, entries, TransitionKept

	case mock.LifetimeMultiple:
		switch n := head.Lifetime.Count; {
		case n <= 0:
			return mock.Response{}, entries[1:], TransitionDropped
		case n == 1:
			return head, entries[1:], TransitionRemoved
		default:
			next := make([]mock.Response, 0, len(entries))
			next = append(next, head.WithLifetime(mock.Multiple(n-1)))
			next = append(next, entries[1:]...)
			return head, next, TransitionDecremented
		}

	default:
		return head, entries[1:], TransitionRemoved
	}
}

// filterValid drops entries whose lifetime can never be served.
func filterValid(responses []mock.Response) []mock.Response {
	valid := make([]mock.Response, 0, len(responses))
	for _, r := range responses {
		if r.Lifetime.Valid() {
			valid = append(valid, r)
		}
	}
	return valid
}

// unreachable counts the entries of a queue that sit behind its first eternal entry.
func unreachable(entries []mock.Response) int {
	for i, r := range entries {
		if r.Lifetime.IsEternal() {
			return len(entries) - i - 1
		}
	}
	return 0
}

func hasEternal(entries []mock.Response) bool {
	for _, r := range entries {
		if r.Lifetime.IsEternal() {
			return true
		}
	}
	return false
}
