// Package queue stores canned responses per namespace and serves them to
// intercepted requests.
//
// Callers register responses under a mock.Key. At request time PopMatching
// picks the best key with the matching package and serves the head of its
// queue according to the head's lifetime:
//
//   - Single and Multiple(1) entries are removed after one pop.
//   - Multiple(n) entries with n > 1 stay at the head as a Multiple(n-1) copy.
//   - Eternal entries are never removed, so anything queued behind one is
//     unreachable.
//
// Key types:
//
//   - Store: thread-safe namespace-to-queues mapping with atomic pop
//   - View: a Store scoped to one namespace
//   - Result: a popped response with the key that matched
//
// Keys whose queues are emptied by pops stay registered. A depleted key still
// wins selection over less specific keys and then yields nothing.
package queue
