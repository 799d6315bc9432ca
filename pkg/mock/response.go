package mock

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"strconv"
	"time"
)

// LifetimeKind enumerates the reuse policies of a queued response.
type LifetimeKind int

const (
	// LifetimeSingle responses are removed after one pop.
	LifetimeSingle LifetimeKind = iota
	// LifetimeMultiple responses are served Count times.
	LifetimeMultiple
	// LifetimeEternal responses are never removed.
	LifetimeEternal
)

// Lifetime is the reuse policy of a queued response.
// The zero value is Single.
type Lifetime struct {
	Kind  LifetimeKind
	Count int
}

// Single returns a lifetime that serves a response once.
func Single() Lifetime { return Lifetime{Kind: LifetimeSingle} }

// Multiple returns a lifetime that serves a response n times.
// n must be positive for the response to be accepted into a queue.
func Multiple(n int) Lifetime { return Lifetime{Kind: LifetimeMultiple, Count: n} }

// Eternal returns a lifetime that serves a response forever.
func Eternal() Lifetime { return Lifetime{Kind: LifetimeEternal} }

// Valid reports whether the lifetime may enter a queue.
func (l Lifetime) Valid() bool {
	return l.Kind != LifetimeMultiple || l.Count > 0
}

// IsEternal reports whether the lifetime never expires.
func (l Lifetime) IsEternal() bool {
	return l.Kind == LifetimeEternal
}

// String implements fmt.Stringer.
func (l Lifetime) String() string {
	switch l.Kind {
	case LifetimeMultiple:
		return "multiple(" + strconv.Itoa(l.Count) + ")"
	case LifetimeEternal:
		return "eternal"
	default:
		return "single"
	}
}

// Delivery is the timing policy of a popped response.
// The zero value delivers instantly.
type Delivery struct {
	Delay time.Duration
}

// Instant returns a delivery that hands the response back immediately.
func Instant() Delivery { return Delivery{} }

// Delayed returns a delivery that hands the response back after d.
func Delayed(d time.Duration) Delivery { return Delivery{Delay: d} }

// IsDelayed reports whether delivery waits before handing the response back.
func (d Delivery) IsDelayed() bool {
	return d.Delay > 0
}

// Wait blocks until the delivery delay has elapsed or ctx is done.
// Instant deliveries return immediately.
func (d Delivery) Wait(ctx context.Context) error {
	if !d.IsDelayed() {
		return nil
	}
	timer := time.NewTimer(d.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// String implements fmt.Stringer.
func (d Delivery) String() string {
	if !d.IsDelayed() {
		return "instant"
	}
	return "delayed(" + d.Delay.String() + ")"
}

// Payload is the body of a response plus an optional content type.
// A payload with a nil body is empty.
type Payload struct {
	Body        []byte
	ContentType string
}

// Bytes returns the payload body, never nil.
func (p Payload) Bytes() []byte {
	if p.Body == nil {
		return []byte{}
	}
	return p.Body
}

// IsEmpty reports whether the payload carries no body.
func (p Payload) IsEmpty() bool {
	return len(p.Body) == 0
}

// Response is one queued response. It is a value type: lifetime transitions
// produce a copy via WithLifetime. Body and Headers are shared between copies
// and must be treated as read-only.
type Response struct {
	Payload  Payload
	Status   int
	Headers  map[string]string
	Lifetime Lifetime
	Delivery Delivery
}

// WithLifetime returns a copy of the response carrying a different lifetime.
func (r Response) WithLifetime(l Lifetime) Response {
	r.Lifetime = l
	return r
}

// AddingHeaders returns a copy of the response with inherited headers merged in.
// Headers already set on the response win over inherited ones.
func (r Response) AddingHeaders(inherited map[string]string) Response {
	if len(inherited) == 0 {
		return r
	}
	merged := make(map[string]string, len(inherited)+len(r.Headers))
	maps.Copy(merged, inherited)
	for name, value := range r.Headers {
		for existing := range merged {
			if existing != name && http.CanonicalHeaderKey(existing) == http.CanonicalHeaderKey(name) {
				delete(merged, existing)
			}
		}
		merged[name] = value
	}
	r.Headers = merged
	return r
}

// HTTPHeader converts the response headers to an http.Header.
func (r Response) HTTPHeader() http.Header {
	h := make(http.Header, len(r.Headers))
	for name, value := range r.Headers {
		h.Set(name, value)
	}
	return h
}

// String implements fmt.Stringer.
func (r Response) String() string {
	return fmt.Sprintf("%d %s %s (%d bytes)", r.Status, r.Lifetime, r.Delivery, len(r.Payload.Body))
}
