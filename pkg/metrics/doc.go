// Package metrics publishes Prometheus metrics for queue and interception activity.
//
// A Recorder owns its own registry so several mocks can coexist in one test
// binary. A nil *Recorder is valid and records nothing, which lets the queue
// store and transport call it unconditionally.
//
// Exposed metrics:
//
//   - httpmock_queue_registered_total: responses accepted per lifetime kind
//   - httpmock_queue_filtered_total: responses dropped for an invalid lifetime
//   - httpmock_queue_unreachable_total: responses registered behind an eternal entry
//   - httpmock_queue_pops_total: pop attempts per result (hit, miss, empty)
//   - httpmock_queue_depleted_total: queues emptied by a pop
//   - httpmock_queue_responses: responses currently queued
//   - httpmock_requests_total: intercepted requests per outcome and status
//   - httpmock_delivery_delay_seconds: configured delay of delayed deliveries
package metrics
