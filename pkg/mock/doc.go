// Package mock defines the values that flow through the httpmock queues:
// registration keys and the canned responses queued under them.
//
// A Key identifies one queue. Its host and path are glob patterns:
//
//   - "*" matches within one segment ("." for hosts, "/" for paths)
//   - "**" matches across segments, and "/**/" in a path may match zero segments
//
// An optional query constraint narrows a key to requests carrying specific
// query parameters, either exactly (QueryExact) or as a subset (QueryContains).
//
// A Response is an immutable value. Its Lifetime controls how many times it is
// served before leaving the queue:
//
//   - Single: served once (the default)
//   - Multiple(n): served n times, keeping its position at the head of the queue
//   - Eternal: served forever; anything queued behind it is unreachable
//
// Its Delivery controls when it is handed back to the caller: immediately, or
// after a fixed delay.
//
// Responses are usually built with the constructors in this package:
//
//	resp, err := mock.JSON(map[string]any{"id": 1}, mock.WithStatus(http.StatusCreated))
//	text := mock.Plaintext("ok", mock.WithLifetime(mock.Multiple(3)))
//	slow := mock.Empty(mock.WithDelay(250 * time.Millisecond))
package mock
