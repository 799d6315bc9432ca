package httpmock

import (
	"net/http"
	"strconv"

	"github.com/getmockd/httpmock/pkg/logging"
	"github.com/getmockd/httpmock/pkg/metrics"
)

// Handler returns an http.Handler that answers incoming requests from the
// mock's queues. The request's Host header selects the host, port removed.
func (m *Mock) Handler() http.Handler {
	return &handler{mock: m}
}

type handler struct {
	mock *Mock
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m := h.mock
	host, path, query := requestTarget(r.URL, r.Host)
	if r.Host != "" {
		host = stripPort(r.Host)
	}

	res, ok := m.pop(host, path, query)
	if !ok {
		h.unmocked(w, r, host, path, query)
		return
	}

	if err := m.deliver(r, res); err != nil {
		// The client went away while the response was delayed.
		m.logger.Debug("delayed response abandoned", logging.KeyHost, host, logging.KeyPath, path, "error", err)
		m.metrics.ObserveRequest(metrics.RequestError, 0)
		return
	}

	body := res.Response.Payload.Bytes()
	header := w.Header()
	for name, values := range res.Response.HTTPHeader() {
		header[name] = values
	}
	if header.Get("Content-Length") == "" {
		header.Set("Content-Length", strconv.Itoa(len(body)))
	}
	w.WriteHeader(res.Response.Status)
	_, _ = w.Write(body)
	m.metrics.ObserveRequest(metrics.RequestMocked, res.Response.Status)
}

func (h *handler) unmocked(w http.ResponseWriter, r *http.Request, host, path string, query map[string]string) {
	m := h.mock
	switch m.UnmockedPolicy() {
	case PolicyPassthrough:
		m.logger.Info("no mock found, passing through", logging.KeyHost, host, logging.KeyPath, path)
		resp, err := m.forward(r)
		if err != nil {
			m.logger.Error("passthrough failed", logging.KeyHost, host, logging.KeyPath, path, "error", err)
			m.metrics.ObserveRequest(metrics.RequestError, http.StatusBadGateway)
			http.Error(w, "Error forwarding request: "+err.Error(), http.StatusBadGateway)
			return
		}
		defer func() { _ = resp.Body.Close() }()
		copyHeaders(w.Header(), resp.Header)
		removeHopByHopHeaders(w.Header())
		w.WriteHeader(resp.StatusCode)
		_, _ = copyBody(w, resp)
		m.metrics.ObserveRequest(metrics.RequestPassthrough, resp.StatusCode)

	case PolicyError:
		m.logNoMock(host, path, query)
		m.metrics.ObserveRequest(metrics.RequestError, http.StatusBadGateway)
		http.Error(w, ErrNoMock.Error()+": "+host+path, http.StatusBadGateway)

	default:
		m.logNoMock(host, path, query)
		m.metrics.ObserveRequest(metrics.RequestNotFound, http.StatusNotFound)
		resp := notFoundResponse(host, path)
		for name, values := range resp.HTTPHeader() {
			w.Header()[name] = values
		}
		w.WriteHeader(resp.Status)
		_, _ = w.Write(resp.Payload.Bytes())
	}
}
