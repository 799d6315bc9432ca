package config

import (
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/getmockd/httpmock/pkg/httpmock"
	"github.com/getmockd/httpmock/pkg/mock"
)

// Plan is a fixture whose responses have all been built, ready to be
// registered on a Mock.
type Plan struct {
	policy        *httpmock.UnmockedPolicy
	defaultDomain string
	defaults      []httpmock.PathElement
	hosts         []httpmock.Host
}

// Build converts a fixture into a Plan. It fails on the first response that
// cannot be built, without touching any Mock.
func Build(fx *Fixture) (*Plan, error) {
	p := &Plan{}
	if fx == nil {
		return p, nil
	}

	if fx.UnmockedPolicy != "" {
		policy, err := httpmock.ParseUnmockedPolicy(fx.UnmockedPolicy)
		if err != nil {
			return nil, err
		}
		p.policy = &policy
	}
	p.defaultDomain = fx.DefaultDomain

	paths, err := buildPaths(fx.Paths, "paths")
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		p.defaults = append(p.defaults, path)
	}

	for i, h := range fx.Hosts {
		paths, err := buildPaths(h.Paths, fmt.Sprintf("hosts[%d].paths", i))
		if err != nil {
			return nil, err
		}
		elements := make([]httpmock.HostElement, 0, len(paths)+1)
		if len(h.Headers) > 0 {
			elements = append(elements, httpmock.Headers(h.Headers, true))
		}
		for _, path := range paths {
			elements = append(elements, path)
		}
		p.hosts = append(p.hosts, httpmock.NewHost(h.Host, elements...))
	}
	return p, nil
}

// SetUnmockedPolicy replaces the policy the plan applies.
func (p *Plan) SetUnmockedPolicy(policy httpmock.UnmockedPolicy) {
	p.policy = &policy
}

// Register applies the plan's settings to m and registers its responses,
// returning the number accepted. Settings the fixture leaves out keep m's
// current values.
func (p *Plan) Register(m *httpmock.Mock) int {
	if p.policy != nil {
		m.SetUnmockedPolicy(*p.policy)
	}
	if p.defaultDomain != "" {
		m.SetDefaultDomain(p.defaultDomain)
	}
	n := m.RegisterDefault(p.defaults...)
	n += m.Register(p.hosts...)
	return n
}

// Replace clears m's queues, resets its default domain and unmocked policy
// to their defaults, and registers the plan.
func (p *Plan) Replace(m *httpmock.Mock) int {
	m.ClearQueues()
	m.SetDefaultDomain(httpmock.DefaultDomain)
	m.SetUnmockedPolicy(httpmock.PolicyNotFound)
	return p.Register(m)
}

// Apply registers a fixture on m and returns the number of responses
// accepted. Nothing is registered when any response fails to build.
func Apply(fx *Fixture, m *httpmock.Mock) (int, error) {
	p, err := Build(fx)
	if err != nil {
		return 0, err
	}
	return p.Register(m), nil
}

func buildPaths(paths []PathConfig, loc string) ([]httpmock.Path, error) {
	elements := make([]httpmock.Path, 0, len(paths))
	for i, p := range paths {
		path, err := buildPath(p, fmt.Sprintf("%s[%d]", loc, i))
		if err != nil {
			return nil, err
		}
		elements = append(elements, path)
	}
	return elements, nil
}

func buildPath(p PathConfig, loc string) (httpmock.Path, error) {
	var elements []httpmock.PathElement
	if len(p.Headers) > 0 {
		elements = append(elements, httpmock.Headers(p.Headers, p.Cascade))
	}
	if p.Query != nil {
		elements = append(elements, httpmock.Query(p.Query, mock.ParseQueryMode(p.QueryMatching)))
	}

	if len(p.Responses) > 0 {
		responses := make([]mock.Response, 0, len(p.Responses))
		for i, rc := range p.Responses {
			r, err := BuildResponse(rc)
			if err != nil {
				return httpmock.Path{}, fmt.Errorf("%s.responses[%d]: %w", loc, i, err)
			}
			responses = append(responses, r)
		}
		elements = append(elements, httpmock.Respond(responses...))
	}

	children, err := buildPaths(p.Paths, loc+".paths")
	if err != nil {
		return httpmock.Path{}, err
	}
	for _, child := range children {
		elements = append(elements, child)
	}

	return httpmock.NewPath(p.Path, elements...), nil
}

// BuildResponse converts a response entry into a mock.Response.
func BuildResponse(rc ResponseConfig) (mock.Response, error) {
	lifetime, err := parseLifetime(rc.Lifetime, rc.Times)
	if err != nil {
		return mock.Response{}, err
	}
	opts := []mock.Option{mock.WithLifetime(lifetime)}

	if rc.Status != 0 {
		opts = append(opts, mock.WithStatus(rc.Status))
	}

	headers := maps.Clone(rc.Headers)
	if rc.ContentType != "" && !containsHeader(headers, "Content-Type") {
		if headers == nil {
			headers = make(map[string]string, 1)
		}
		headers["Content-Type"] = rc.ContentType
	}
	if len(headers) > 0 {
		opts = append(opts, mock.WithHeaders(headers))
	}

	if rc.Delay != "" {
		d, err := time.ParseDuration(rc.Delay)
		if err != nil {
			return mock.Response{}, fmt.Errorf("invalid delay %q: %w", rc.Delay, err)
		}
		opts = append(opts, mock.WithDelay(d))
	}

	switch {
	case rc.JSON != nil:
		return mock.JSON(rc.JSON, opts...)
	case rc.BodyFile != "":
		return mock.File(rc.BodyFile, opts...)
	case rc.Text != "":
		return mock.Plaintext(rc.Text, opts...), nil
	case rc.Body != "":
		return mock.Data([]byte(rc.Body), "", opts...), nil
	default:
		return mock.Empty(opts...), nil
	}
}

func parseLifetime(kind string, times int) (mock.Lifetime, error) {
	switch kind {
	case "":
		if times > 0 {
			return mock.Multiple(times), nil
		}
		return mock.Single(), nil
	case LifetimeSingle:
		return mock.Single(), nil
	case LifetimeEternal:
		return mock.Eternal(), nil
	case LifetimeMultiple:
		if times < 1 {
			return mock.Lifetime{}, fmt.Errorf("lifetime %q needs times >= 1", kind)
		}
		return mock.Multiple(times), nil
	default:
		return mock.Lifetime{}, fmt.Errorf("unknown lifetime %q", kind)
	}
}

func containsHeader(headers map[string]string, name string) bool {
	canonical := http.CanonicalHeaderKey(name)
	for k := range headers {
		if http.CanonicalHeaderKey(k) == canonical {
			return true
		}
	}
	return false
}
