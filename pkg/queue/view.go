package queue

import (
	"github.com/getmockd/httpmock/pkg/mock"
)

// View wraps a Store and scopes every call to a single namespace.
// It is a live view: writes through other views of the same namespace are
// visible immediately.
type View struct {
	store     *Store
	namespace string
}

// NewView creates a view of store bound to namespace ns.
func NewView(store *Store, ns string) *View {
	return &View{store: store, namespace: ns}
}

// View returns a namespace-scoped view of the store.
func (s *Store) View(ns string) *View {
	return NewView(s, ns)
}

// Register appends responses to the queue for key.
func (v *View) Register(key mock.Key, responses []mock.Response) int {
	return v.store.Register(v.namespace, key, responses)
}

// PopMatching serves the next response for the request.
func (v *View) PopMatching(host, path string, query map[string]string) (Result, bool) {
	return v.store.PopMatching(v.namespace, host, path, query)
}

// ClearAll removes every queue in this namespace.
func (v *View) ClearAll() {
	v.store.ClearAll(v.namespace)
}

// ClearHost removes the queues whose key host equals host.
func (v *View) ClearHost(host string) {
	v.store.ClearHost(v.namespace, host)
}

// QueueSize returns the number of entries queued for key.
func (v *View) QueueSize(key mock.Key) int {
	return v.store.QueueSize(v.namespace, key)
}

// Keys returns the keys registered in this namespace.
func (v *View) Keys() []mock.Key {
	return v.store.Keys(v.namespace)
}

// Entries returns a snapshot of the responses queued for key.
func (v *View) Entries(key mock.Key) []mock.Response {
	return v.store.Entries(v.namespace, key)
}

// Count returns the total number of queued entries in this namespace.
func (v *View) Count() int {
	n := 0
	for _, k := range v.Keys() {
		n += v.QueueSize(k)
	}
	return n
}

// Namespace returns the namespace this view is bound to.
func (v *View) Namespace() string {
	return v.namespace
}

// Underlying returns the underlying store.
func (v *View) Underlying() *Store {
	return v.store
}
