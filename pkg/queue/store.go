package queue

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/getmockd/httpmock/internal/matching"
	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/metrics"
	"github.com/getmockd/httpmock/pkg/mock"
)

// Store is a thread-safe collection of per-namespace response queues.
//
// Each namespace maps registration keys to ordered responses. Namespaces are
// created on first registration and are fully isolated from each other.
type Store struct {
	mu         sync.RWMutex
	namespaces map[string]*namespaceQueues

	matcher *matching.Matcher
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// namespaceQueues holds the queues of one namespace. Its mutex serializes
// selection and mutation so pops are admitted in arrival order.
type namespaceQueues struct {
	mu      sync.Mutex
	order   []string
	queues  map[string]*keyQueue
	deleted bool
}

type keyQueue struct {
	key     mock.Key
	entries []mock.Response
}

// Result is a response popped from a queue.
type Result struct {
	// Key is the registration key that matched the request.
	Key mock.Key
	// Response is the served response.
	Response mock.Response
	// Remaining is the number of entries left in the key's queue.
	Remaining int
	// Transition describes what the pop did to the head of the queue.
	Transition Transition
}

// Deliver blocks until the response is due according to its delivery mode.
func (r Result) Deliver(ctx context.Context) error {
	return r.Response.Delivery.Wait(ctx)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for queue events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder for queue events.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Store) {
		s.metrics = rec
	}
}

// WithMatcher sets the matcher used to select keys.
func WithMatcher(m *matching.Matcher) Option {
	return func(s *Store) {
		s.matcher = m
	}
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		namespaces: make(map[string]*namespaceQueues),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.matcher == nil {
		s.matcher = matching.Default()
	}
	s.logger = logging.Component(s.logger, "queue")
	return s
}

// Register appends responses to the queue for key in namespace ns and
// returns the number of responses accepted.
//
// Responses with an invalid lifetime are dropped. When none remain the call
// is a no-op and no queue is created for key.
func (s *Store) Register(ns string, key mock.Key, responses []mock.Response) int {
	valid := filterValid(responses)
	if dropped := len(responses) - len(valid); dropped > 0 {
		s.metrics.ObserveFiltered(dropped)
		s.logger.Debug("dropped responses with invalid lifetime",
			logging.KeyNamespace, ns,
			logging.KeyKey, key.String(),
			logging.KeyCount, dropped,
		)
	}
	if len(valid) == 0 {
		s.logger.Debug("no valid responses, skipping registration",
			logging.KeyNamespace, ns,
			logging.KeyKey, key.String(),
		)
		return 0
	}

	nq := s.lockLiveNamespace(ns)
	defer nq.mu.Unlock()

	id := key.ID()
	q, ok := nq.queues[id]
	if !ok {
		q = &keyQueue{key: key}
		nq.queues[id] = q
		nq.order = append(nq.order, id)
	}

	if hasEternal(q.entries) {
		s.logger.Warn("response registered after an eternal entry",
			logging.KeyNamespace, ns,
			logging.KeyKey, key.String(),
			logging.KeyCount, len(valid),
		)
	}

	before := unreachable(q.entries)
	q.entries = append(q.entries, valid...)
	s.metrics.ObserveUnreachable(unreachable(q.entries) - before)
	for _, r := range valid {
		s.metrics.ObserveRegistered(lifetimeLabel(r.Lifetime))
	}

	s.logger.Info("registered responses",
		logging.KeyNamespace, ns,
		logging.KeyKey, key.String(),
		logging.KeyCount, len(valid),
	)
	s.logger.Debug("current queue size",
		logging.KeyNamespace, ns,
		logging.KeyKey, key.String(),
		logging.KeyRemaining, len(q.entries),
	)
	return len(valid)
}

// PopMatching selects the best key for the request and serves the head of
// its queue, applying the lifetime rules in the same critical section.
// It returns false when no key matches, when the best key's queue is empty,
// or when the head entry was invalid and got dropped.
func (s *Store) PopMatching(ns, host, path string, query map[string]string) (Result, bool) {
	nq := s.namespace(ns, false)
	if nq == nil {
		s.metrics.ObservePop(metrics.PopMiss, false)
		return Result{}, false
	}

	nq.mu.Lock()
	defer nq.mu.Unlock()

	key, ok := s.matcher.SelectBest(host, path, query, nq.keys())
	if !ok {
		s.metrics.ObservePop(metrics.PopMiss, false)
		return Result{}, false
	}

	q := nq.queues[key.ID()]
	resp, next, transition := advance(q.entries)
	q.entries = next

	switch transition {
	case TransitionNone:
		s.metrics.ObservePop(metrics.PopEmpty, false)
		return Result{}, false
	case TransitionDropped:
		s.metrics.ObservePop(metrics.PopEmpty, false)
		s.metrics.ObserveCleared(1)
		s.logger.Debug("dropped response with invalid lifetime",
			logging.KeyNamespace, ns,
			logging.KeyKey, key.String(),
		)
		return Result{}, false
	}

	s.metrics.ObservePop(metrics.PopHit, transition == TransitionRemoved)
	switch transition {
	case TransitionDecremented:
		s.logger.Info("multi-use response remaining",
			logging.KeyNamespace, ns,
			logging.KeyKey, key.String(),
			logging.KeyRemaining, next[0].Lifetime.Count,
		)
	case TransitionRemoved:
		if len(next) == 0 {
			s.metrics.ObserveDepleted()
			s.logger.Info("queue depleted",
				logging.KeyNamespace, ns,
				logging.KeyKey, key.String(),
			)
		}
	}

	return Result{
		Key:        key,
		Response:   resp,
		Remaining:  len(next),
		Transition: transition,
	}, true
}

// ClearAll removes every queue in namespace ns.
func (s *Store) ClearAll(ns string) {
	nq := s.namespace(ns, false)
	if nq == nil {
		return
	}

	nq.mu.Lock()
	defer nq.mu.Unlock()

	removed := 0
	for _, q := range nq.queues {
		removed += len(q.entries)
	}
	nq.order = nil
	nq.queues = make(map[string]*keyQueue)

	s.metrics.ObserveCleared(removed)
	s.logger.Debug("cleared all queues", logging.KeyNamespace, ns, logging.KeyCount, removed)
}

// ClearHost removes the queues in namespace ns whose key host equals host.
// Hosts compare after lowercasing; patterns are not expanded.
func (s *Store) ClearHost(ns, host string) {
	nq := s.namespace(ns, false)
	if nq == nil {
		return
	}

	host = strings.ToLower(host)

	nq.mu.Lock()
	defer nq.mu.Unlock()

	removed := 0
	order := nq.order[:0]
	for _, id := range nq.order {
		q := nq.queues[id]
		if strings.ToLower(q.key.Host) == host {
			removed += len(q.entries)
			delete(nq.queues, id)
			continue
		}
		order = append(order, id)
	}
	nq.order = order

	s.metrics.ObserveCleared(removed)
	s.logger.Debug("cleared host queues",
		logging.KeyNamespace, ns,
		logging.KeyHost, host,
		logging.KeyCount, removed,
	)
}

// QueueSize returns the number of entries queued for key in namespace ns.
// A key that was never registered has size zero.
func (s *Store) QueueSize(ns string, key mock.Key) int {
	nq := s.namespace(ns, false)
	if nq == nil {
		return 0
	}

	nq.mu.Lock()
	defer nq.mu.Unlock()

	if q, ok := nq.queues[key.ID()]; ok {
		return len(q.entries)
	}
	return 0
}

// Keys returns the keys registered in namespace ns in first-registration
// order, depleted keys included.
func (s *Store) Keys(ns string) []mock.Key {
	nq := s.namespace(ns, false)
	if nq == nil {
		return nil
	}

	nq.mu.Lock()
	defer nq.mu.Unlock()
	return nq.keys()
}

// Entries returns a snapshot of the responses queued for key in namespace ns.
func (s *Store) Entries(ns string, key mock.Key) []mock.Response {
	nq := s.namespace(ns, false)
	if nq == nil {
		return nil
	}

	nq.mu.Lock()
	defer nq.mu.Unlock()

	q, ok := nq.queues[key.ID()]
	if !ok {
		return nil
	}
	out := make([]mock.Response, len(q.entries))
	copy(out, q.entries)
	return out
}

// Namespaces returns the ids of every namespace, sorted.
func (s *Store) Namespaces() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.namespaces))
	for id := range s.namespaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DeleteNamespace removes namespace ns and all its queues.
// Returns true if deleted, false if not found.
func (s *Store) DeleteNamespace(ns string) bool {
	s.mu.Lock()
	nq, exists := s.namespaces[ns]
	delete(s.namespaces, ns)
	s.mu.Unlock()

	if !exists {
		return false
	}

	nq.mu.Lock()
	nq.deleted = true
	removed := 0
	for _, q := range nq.queues {
		removed += len(q.entries)
	}
	nq.mu.Unlock()

	s.metrics.ObserveCleared(removed)
	s.logger.Debug("deleted namespace", logging.KeyNamespace, ns, logging.KeyCount, removed)
	return true
}

// Matcher returns the matcher used for key selection.
func (s *Store) Matcher() *matching.Matcher {
	return s.matcher
}

func (s *Store) namespace(ns string, create bool) *namespaceQueues {
	s.mu.RLock()
	nq := s.namespaces[ns]
	s.mu.RUnlock()
	if nq != nil || !create {
		return nq
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if nq = s.namespaces[ns]; nq == nil {
		nq = &namespaceQueues{queues: make(map[string]*keyQueue)}
		s.namespaces[ns] = nq
	}
	return nq
}

// lockLiveNamespace returns the namespace ns locked, creating it when
// needed. A namespace deleted between lookup and lock is looked up again.
func (s *Store) lockLiveNamespace(ns string) *namespaceQueues {
	for {
		nq := s.namespace(ns, true)
		nq.mu.Lock()
		if !nq.deleted {
			return nq
		}
		nq.mu.Unlock()
	}
}

// keys returns the namespace's keys in registration order. Callers hold nq.mu.
func (nq *namespaceQueues) keys() []mock.Key {
	keys := make([]mock.Key, 0, len(nq.order))
	for _, id := range nq.order {
		keys = append(keys, nq.queues[id].key)
	}
	return keys
}

func lifetimeLabel(l mock.Lifetime) string {
	if l.Kind == mock.LifetimeMultiple {
		return "multiple"
	}
	return l.String()
}
