package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PopResult captures the result of a pop attempt.
type PopResult string

const (
	// PopHit indicates a response was dequeued.
	PopHit PopResult = "hit"
	// PopMiss indicates no registered key matched the request.
	PopMiss PopResult = "miss"
	// PopEmpty indicates the best key matched but its queue was empty.
	PopEmpty PopResult = "empty"
)

// RequestOutcome captures how an intercepted request was answered.
type RequestOutcome string

const (
	// RequestMocked indicates a queued response answered the request.
	RequestMocked RequestOutcome = "mocked"
	// RequestNotFound indicates the unmocked 404 response answered the request.
	RequestNotFound RequestOutcome = "not_found"
	// RequestPassthrough indicates the request was delegated to the real transport.
	RequestPassthrough RequestOutcome = "passthrough"
	// RequestError indicates the request failed with an error.
	RequestError RequestOutcome = "error"
)

const namespace = "httpmock"

// Recorder publishes Prometheus metrics for queue activity.
type Recorder struct {
	gatherer prometheus.Gatherer
	handler  http.Handler

	registered  *prometheus.CounterVec
	filtered    prometheus.Counter
	unreachable prometheus.Counter
	pops        *prometheus.CounterVec
	depleted    prometheus.Counter
	queued      prometheus.Gauge

	requests      *prometheus.CounterVec
	deliveryDelay prometheus.Histogram
}

// NewRecorder constructs a Prometheus-backed Recorder. When reg is nil a dedicated
// registry is created so multiple recorders can coexist without conflicting with
// the global default registerer.
func NewRecorder(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	r := &Recorder{
		registered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "registered_total",
			Help:      "Responses accepted into a queue, by lifetime kind.",
		}, []string{"lifetime"}),
		filtered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "filtered_total",
			Help:      "Responses dropped at registration for an invalid lifetime.",
		}),
		unreachable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "unreachable_total",
			Help:      "Responses registered behind an eternal entry.",
		}),
		pops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "pops_total",
			Help:      "Pop attempts, by result.",
		}, []string{"result"}),
		depleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "depleted_total",
			Help:      "Queues emptied by a pop.",
		}),
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "responses",
			Help:      "Responses currently queued across all namespaces.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Intercepted requests, by outcome and status code.",
		}, []string{"outcome", "status_code"}),
		deliveryDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "delivery",
			Name:      "delay_seconds",
			Help:      "Configured delay of delayed deliveries.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
	}

	reg.MustRegister(r.registered, r.filtered, r.unreachable, r.pops, r.depleted, r.queued, r.requests, r.deliveryDelay)
	r.gatherer = reg
	r.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return r
}

// Handler exposes the Prometheus HTTP handler for the recorder's registry.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "metrics unavailable", http.StatusServiceUnavailable)
		})
	}
	return r.handler
}

// Gatherer returns the underlying Prometheus gatherer for tests and advanced
// integrations.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.gatherer
}

// ObserveRegistered records a response accepted into a queue.
func (r *Recorder) ObserveRegistered(lifetime string) {
	if r == nil {
		return
	}
	r.registered.WithLabelValues(normalizeLabel(lifetime)).Inc()
	r.queued.Inc()
}

// ObserveFiltered records n responses dropped for an invalid lifetime.
func (r *Recorder) ObserveFiltered(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.filtered.Add(float64(n))
}

// ObserveUnreachable records n responses registered behind an eternal entry.
func (r *Recorder) ObserveUnreachable(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.unreachable.Add(float64(n))
}

// ObservePop records the result of a pop attempt. A hit that removed the
// head entry also lowers the queued gauge.
func (r *Recorder) ObservePop(result PopResult, removed bool) {
	if r == nil {
		return
	}
	label := string(result)
	if label == "" {
		label = string(PopMiss)
	}
	r.pops.WithLabelValues(label).Inc()
	if removed {
		r.queued.Dec()
	}
}

// ObserveDepleted records a queue emptied by a pop.
func (r *Recorder) ObserveDepleted() {
	if r == nil {
		return
	}
	r.depleted.Inc()
}

// ObserveCleared lowers the queued gauge by n responses removed by a clear.
func (r *Recorder) ObserveCleared(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.queued.Sub(float64(n))
}

// ObserveRequest records how an intercepted request was answered.
func (r *Recorder) ObserveRequest(outcome RequestOutcome, statusCode int) {
	if r == nil {
		return
	}
	statusLabel := strconv.Itoa(statusCode)
	if statusCode <= 0 {
		statusLabel = "unknown"
	}
	r.requests.WithLabelValues(normalizeLabel(string(outcome)), statusLabel).Inc()
}

// ObserveDelivery records the delay applied to a delayed delivery.
func (r *Recorder) ObserveDelivery(delay time.Duration) {
	if r == nil || delay <= 0 {
		return
	}
	r.deliveryDelay.Observe(delay.Seconds())
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
