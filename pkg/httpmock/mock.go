package httpmock

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/metrics"
	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/getmockd/httpmock/pkg/queue"
)

// DefaultDomain is the host used by AddResponses and RegisterDefault until
// changed with WithDefaultDomain or SetDefaultDomain.
const DefaultDomain = "example.com"

// Mock queues canned responses and serves them to intercepted requests.
//
// Every Mock owns a namespace in a queue.Store, so several mocks can share one
// store without seeing each other's queues. A Mock is safe for concurrent use.
type Mock struct {
	id    string
	store *queue.Store
	view  *queue.View

	mu            sync.RWMutex
	defaultDomain string
	policy        UnmockedPolicy

	passthrough http.RoundTripper
	logger      *slog.Logger
	metrics     *metrics.Recorder
}

// Option configures a Mock.
type Option func(*Mock)

// WithStore makes the mock keep its queues in store instead of a private one.
func WithStore(store *queue.Store) Option {
	return func(m *Mock) {
		m.store = store
	}
}

// WithNamespace sets the namespace id. By default a random UUID is used.
func WithNamespace(id string) Option {
	return func(m *Mock) {
		m.id = id
	}
}

// WithDefaultDomain sets the host used by AddResponses and RegisterDefault.
func WithDefaultDomain(domain string) Option {
	return func(m *Mock) {
		m.defaultDomain = domain
	}
}

// WithUnmockedPolicy sets how unmocked requests are answered.
func WithUnmockedPolicy(p UnmockedPolicy) Option {
	return func(m *Mock) {
		m.policy = p
	}
}

// WithPassthrough sets the transport used by PolicyPassthrough.
// Defaults to http.DefaultTransport.
func WithPassthrough(rt http.RoundTripper) Option {
	return func(m *Mock) {
		m.passthrough = rt
	}
}

// WithLogger sets the logger for interception events. When the mock creates
// its own store, the store logs through it as well.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mock) {
		m.logger = logger
	}
}

// WithMetrics sets the metrics recorder. When the mock creates its own store,
// the store records through it as well.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(m *Mock) {
		m.metrics = rec
	}
}

// New creates a Mock with its own namespace.
func New(opts ...Option) *Mock {
	m := &Mock{
		defaultDomain: DefaultDomain,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.id == "" {
		m.id = uuid.NewString()
	}
	if m.store == nil {
		m.store = queue.NewStore(queue.WithLogger(m.logger), queue.WithMetrics(m.metrics))
	}
	if m.passthrough == nil {
		m.passthrough = http.DefaultTransport
	}
	m.view = m.store.View(m.id)
	m.logger = logging.Component(m.logger, "httpmock").With(logging.KeyNamespace, m.id)
	return m
}

// ID returns the namespace id of the mock.
func (m *Mock) ID() string {
	return m.id
}

// Store returns the queue store backing the mock.
func (m *Mock) Store() *queue.Store {
	return m.store
}

// DefaultDomain returns the host used when none is given.
func (m *Mock) DefaultDomain() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultDomain
}

// SetDefaultDomain changes the host used when none is given.
func (m *Mock) SetDefaultDomain(domain string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultDomain = domain
}

// UnmockedPolicy returns how unmocked requests are answered.
func (m *Mock) UnmockedPolicy() UnmockedPolicy {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.policy
}

// SetUnmockedPolicy changes how unmocked requests are answered.
func (m *Mock) SetUnmockedPolicy(p UnmockedPolicy) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policy = p
}

// KeyOption adjusts the key responses are registered under.
type KeyOption func(*keyOptions)

type keyOptions struct {
	query map[string]string
	mode  mock.QueryMode
}

// WithQuery requires the request query to satisfy values.
// A nil map means no constraint; an empty map requires an empty query under
// exact matching.
func WithQuery(values map[string]string) KeyOption {
	return func(o *keyOptions) {
		o.query = values
	}
}

// WithQueryMatching sets how the query constraint is compared.
// Defaults to mock.QueryExact.
func WithQueryMatching(mode mock.QueryMode) KeyOption {
	return func(o *keyOptions) {
		o.mode = mode
	}
}

func buildKey(host, path string, opts []KeyOption) mock.Key {
	var o keyOptions
	for _, opt := range opts {
		opt(&o)
	}
	return mock.NewKey(host, mock.NormalizePath(path), o.query, o.mode)
}

// AddResponses queues responses for path on the default domain and returns
// the number accepted. Each matching request pops the next response.
func (m *Mock) AddResponses(path string, responses []mock.Response, opts ...KeyOption) int {
	return m.AddResponsesForHost(m.DefaultDomain(), path, responses, opts...)
}

// AddResponsesForHost queues responses for path on host and returns the number
// accepted. Host and path may be glob patterns.
func (m *Mock) AddResponsesForHost(host, path string, responses []mock.Response, opts ...KeyOption) int {
	return m.view.Register(buildKey(host, path, opts), responses)
}

// QueueSize returns the number of responses queued for path on host.
func (m *Mock) QueueSize(host, path string, opts ...KeyOption) int {
	return m.view.QueueSize(buildKey(host, path, opts))
}

// Keys returns every key registered on the mock in registration order.
func (m *Mock) Keys() []mock.Key {
	return m.view.Keys()
}

// ClearQueues removes every queued response.
func (m *Mock) ClearQueues() {
	m.view.ClearAll()
}

// ClearQueue removes the queues registered for host.
func (m *Mock) ClearQueue(host string) {
	m.view.ClearHost(host)
}

// Close deletes the mock's namespace from its store.
func (m *Mock) Close() error {
	m.store.DeleteNamespace(m.id)
	return nil
}
