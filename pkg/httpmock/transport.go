package httpmock

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"

	"github.com/getmockd/httpmock/internal/matching"
	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/metrics"
	"github.com/getmockd/httpmock/pkg/mock"
	"github.com/getmockd/httpmock/pkg/queue"
)

// Transport is an http.RoundTripper that answers requests from a Mock's queues.
type Transport struct {
	mock *Mock
}

// Transport returns a RoundTripper serving this mock's queues.
func (m *Mock) Transport() *Transport {
	return &Transport{mock: m}
}

// Client returns an *http.Client whose requests are answered by the mock.
func (m *Mock) Client() *http.Client {
	return &http.Client{Transport: m.Transport()}
}

// RoundTrip implements http.RoundTripper.
//
// Delayed responses are popped immediately and delivered once their delay
// elapses, so later requests to the same key are not held up. Cancelling the
// request context abandons the delivery.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	m := t.mock
	host, path, query := requestTarget(req.URL, req.Host)

	res, ok := m.pop(host, path, query)
	if !ok {
		return t.unmocked(req, host, path, query)
	}
	closeBody(req)

	if err := m.deliver(req, res); err != nil {
		m.metrics.ObserveRequest(metrics.RequestError, 0)
		return nil, err
	}

	m.metrics.ObserveRequest(metrics.RequestMocked, res.Response.Status)
	return newHTTPResponse(req, res.Response), nil
}

func (t *Transport) unmocked(req *http.Request, host, path string, query map[string]string) (*http.Response, error) {
	m := t.mock
	switch m.UnmockedPolicy() {
	case PolicyPassthrough:
		m.logger.Info("no mock found, passing through",
			logging.KeyHost, host,
			logging.KeyPath, path,
			logging.KeyQuery, mock.DescribeQuery(query, ""),
		)
		m.metrics.ObserveRequest(metrics.RequestPassthrough, 0)
		return m.passthrough.RoundTrip(req)

	case PolicyError:
		closeBody(req)
		m.logNoMock(host, path, query)
		m.metrics.ObserveRequest(metrics.RequestError, 0)
		return nil, fmt.Errorf("%s%s: %w", host, path, ErrNoMock)

	default:
		closeBody(req)
		m.logNoMock(host, path, query)
		m.metrics.ObserveRequest(metrics.RequestNotFound, http.StatusNotFound)
		return newHTTPResponse(req, notFoundResponse(host, path)), nil
	}
}

func (m *Mock) pop(host, path string, query map[string]string) (queue.Result, bool) {
	m.logger.Debug("handling request",
		logging.KeyHost, host,
		logging.KeyPath, path,
		logging.KeyQuery, mock.DescribeQuery(query, ""),
	)

	res, ok := m.view.PopMatching(host, path, query)
	if !ok {
		return res, false
	}

	m.logger.Info("serving mock",
		logging.KeyHost, host,
		logging.KeyPath, path,
		logging.KeyStatus, res.Response.Status,
	)
	m.logger.Debug("remaining queue",
		logging.KeyKey, res.Key.String(),
		logging.KeyRemaining, res.Remaining,
	)
	return res, true
}

func (m *Mock) deliver(req *http.Request, res queue.Result) error {
	if !res.Response.Delivery.IsDelayed() {
		return nil
	}
	m.logger.Info("delaying response",
		logging.KeyHost, res.Key.Host,
		logging.KeyPath, res.Key.Path,
		logging.KeyDelay, res.Response.Delivery.Delay,
	)
	m.metrics.ObserveDelivery(res.Response.Delivery.Delay)
	if err := res.Deliver(req.Context()); err != nil {
		return fmt.Errorf("delivering delayed response: %w", err)
	}
	return nil
}

// logNoMock logs an unmocked request together with the keys that came closest.
func (m *Mock) logNoMock(host, path string, query map[string]string) {
	misses := m.NearMisses(host, path, query)
	reasons := make([]string, 0, len(misses))
	for _, nm := range misses {
		reasons = append(reasons, nm.String())
	}
	m.logger.Error("no mock found",
		logging.KeyHost, host,
		logging.KeyPath, path,
		logging.KeyQuery, mock.DescribeQuery(query, ""),
		"nearMisses", reasons,
	)
}

// NearMisses explains which registered keys came closest to matching a request.
func (m *Mock) NearMisses(host, path string, query map[string]string) []matching.NearMiss {
	return m.store.Matcher().CollectNearMisses(host, path, query, m.view.Keys(), matching.DefaultNearMisses)
}

func notFoundResponse(host, path string) mock.Response {
	return mock.Plaintext("No mock for "+host+path, mock.WithStatus(http.StatusNotFound))
}

// requestTarget extracts the matching inputs from a request URL.
// The host carries no port, the path defaults to "/", and repeated query
// parameters keep their last value.
func requestTarget(u *url.URL, fallbackHost string) (host, path string, query map[string]string) {
	host = u.Hostname()
	if host == "" {
		host = stripPort(fallbackHost)
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return host, path, flattenQuery(u.Query())
}

func flattenQuery(values url.Values) map[string]string {
	query := make(map[string]string, len(values))
	for name, vs := range values {
		if len(vs) > 0 {
			query[name] = vs[len(vs)-1]
		}
	}
	return query
}

func stripPort(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}

func newHTTPResponse(req *http.Request, r mock.Response) *http.Response {
	body := r.Payload.Bytes()
	header := r.HTTPHeader()
	if header.Get("Content-Length") == "" {
		header.Set("Content-Length", strconv.Itoa(len(body)))
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.Status, http.StatusText(r.Status)),
		StatusCode:    r.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
