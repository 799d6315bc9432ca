package mock

import (
	"encoding/json"
	"fmt"
	"maps"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Content types set by the response constructors.
const (
	ContentTypeJSON      = "application/json"
	ContentTypePlaintext = "text/plain"
	ContentTypeOctet     = "application/octet-stream"
)

// Option configures a Response built by one of the constructors.
type Option func(*Response)

// WithStatus sets the HTTP status code. Defaults to 200.
func WithStatus(code int) Option {
	return func(r *Response) {
		r.Status = code
	}
}

// WithHeaders sets response headers. They override the default Content-Type
// derived from the payload.
func WithHeaders(headers map[string]string) Option {
	return func(r *Response) {
		if r.Headers == nil {
			r.Headers = make(map[string]string, len(headers))
		}
		maps.Copy(r.Headers, headers)
	}
}

// WithLifetime sets the response lifetime. Defaults to Single.
func WithLifetime(l Lifetime) Option {
	return func(r *Response) {
		r.Lifetime = l
	}
}

// WithDelivery sets the response delivery. Defaults to Instant.
func WithDelivery(d Delivery) Option {
	return func(r *Response) {
		r.Delivery = d
	}
}

// WithDelay is shorthand for WithDelivery(Delayed(d)).
func WithDelay(d time.Duration) Option {
	return WithDelivery(Delayed(d))
}

// New builds a response around a payload.
// When the payload has a content type, a Content-Type header is added unless
// the options already set one.
func New(payload Payload, opts ...Option) Response {
	r := Response{
		Payload: payload,
		Status:  http.StatusOK,
	}
	for _, opt := range opts {
		opt(&r)
	}
	if payload.ContentType != "" && !hasHeader(r.Headers, "Content-Type") {
		headers := make(map[string]string, len(r.Headers)+1)
		maps.Copy(headers, r.Headers)
		headers["Content-Type"] = payload.ContentType
		r.Headers = headers
	}
	if r.Headers == nil {
		r.Headers = map[string]string{}
	}
	return r
}

// Data builds a response from raw bytes with an optional content type.
func Data(body []byte, contentType string, opts ...Option) Response {
	return New(Payload{Body: body, ContentType: contentType}, opts...)
}

// JSON builds a response by encoding v as JSON.
func JSON(v any, opts ...Option) (Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return Response{}, fmt.Errorf("encoding JSON payload: %w", err)
	}
	return Data(body, ContentTypeJSON, opts...), nil
}

// RawJSON builds a response from an already encoded JSON document.
func RawJSON(body []byte, opts ...Option) (Response, error) {
	if !json.Valid(body) {
		return Response{}, fmt.Errorf("invalid JSON payload (%d bytes)", len(body))
	}
	return Data(body, ContentTypeJSON, opts...), nil
}

// Plaintext builds a text/plain response.
func Plaintext(s string, opts ...Option) Response {
	return Data([]byte(s), ContentTypePlaintext, opts...)
}

// Empty builds a response without a body.
func Empty(opts ...Option) Response {
	return New(Payload{}, opts...)
}

// File builds a response from the contents of a file. The content type is
// inferred from the file extension, falling back to application/octet-stream.
func File(path string, opts ...Option) (Response, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return Response{}, fmt.Errorf("reading response file: %w", err)
	}
	return Data(body, ContentTypeForFile(path), opts...), nil
}

// ContentTypeForFile infers a content type from a file extension.
func ContentTypeForFile(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return ContentTypeOctet
}

func hasHeader(headers map[string]string, name string) bool {
	canonical := http.CanonicalHeaderKey(name)
	for k := range headers {
		if http.CanonicalHeaderKey(k) == canonical {
			return true
		}
	}
	return false
}
