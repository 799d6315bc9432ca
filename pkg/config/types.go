package config

import "path/filepath"

// Fixture is the root of a fixture document.
type Fixture struct {
	// DefaultDomain replaces the mock's default domain when set.
	DefaultDomain string `json:"defaultDomain,omitempty" yaml:"defaultDomain,omitempty"`

	// UnmockedPolicy is one of notFound, passthrough or error.
	UnmockedPolicy string `json:"unmockedPolicy,omitempty" yaml:"unmockedPolicy,omitempty"`

	// Paths are registered on the default domain.
	Paths []PathConfig `json:"paths,omitempty" yaml:"paths,omitempty"`

	// Hosts are registered in order.
	Hosts []HostConfig `json:"hosts,omitempty" yaml:"hosts,omitempty"`
}

// HostConfig groups paths under a host pattern. Host headers apply to every
// response beneath the host.
type HostConfig struct {
	Host    string            `json:"host" yaml:"host"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Paths   []PathConfig      `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// PathConfig is a path node. Child paths are joined onto the parent path.
type PathConfig struct {
	Path string `json:"path" yaml:"path"`

	// Query constrains the request query of this node only.
	Query         map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
	QueryMatching string            `json:"queryMatching,omitempty" yaml:"queryMatching,omitempty"`

	// Headers apply to this node's responses, and to descendants when Cascade
	// is set.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Cascade bool              `json:"cascade,omitempty" yaml:"cascade,omitempty"`

	Responses []ResponseConfig `json:"responses,omitempty" yaml:"responses,omitempty"`
	Paths     []PathConfig     `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// ResponseConfig describes one queued response. At most one of JSON, Text,
// Body and BodyFile may be set.
type ResponseConfig struct {
	Status  int               `json:"status,omitempty" yaml:"status,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	JSON     any    `json:"json,omitempty" yaml:"json,omitempty"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
	Body     string `json:"body,omitempty" yaml:"body,omitempty"`
	BodyFile string `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"`

	// ContentType overrides the content type derived from the body.
	ContentType string `json:"contentType,omitempty" yaml:"contentType,omitempty"`

	// Lifetime is single, eternal or multiple. Times sets the count for
	// multiple, and implies it when Lifetime is empty.
	Lifetime string `json:"lifetime,omitempty" yaml:"lifetime,omitempty"`
	Times    int    `json:"times,omitempty" yaml:"times,omitempty"`

	// Delay is a Go duration string such as "150ms".
	Delay string `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// Lifetime names accepted in fixtures.
const (
	LifetimeSingle   = "single"
	LifetimeEternal  = "eternal"
	LifetimeMultiple = "multiple"
)

// Merge appends the paths and hosts of other fixtures to f. Scalar settings
// from later fixtures win when set.
func (f *Fixture) Merge(others ...*Fixture) {
	for _, o := range others {
		if o == nil {
			continue
		}
		if o.DefaultDomain != "" {
			f.DefaultDomain = o.DefaultDomain
		}
		if o.UnmockedPolicy != "" {
			f.UnmockedPolicy = o.UnmockedPolicy
		}
		f.Paths = append(f.Paths, o.Paths...)
		f.Hosts = append(f.Hosts, o.Hosts...)
	}
}

// ResponseCount returns the number of responses declared in the fixture.
func (f *Fixture) ResponseCount() int {
	n := countResponses(f.Paths)
	for _, h := range f.Hosts {
		n += countResponses(h.Paths)
	}
	return n
}

func countResponses(paths []PathConfig) int {
	n := 0
	for _, p := range paths {
		n += len(p.Responses) + countResponses(p.Paths)
	}
	return n
}

// resolveBodyFiles makes relative bodyFile references relative to dir.
func (f *Fixture) resolveBodyFiles(dir string) {
	resolvePaths(f.Paths, dir)
	for i := range f.Hosts {
		resolvePaths(f.Hosts[i].Paths, dir)
	}
}

func resolvePaths(paths []PathConfig, dir string) {
	for i := range paths {
		for j := range paths[i].Responses {
			r := &paths[i].Responses[j]
			if r.BodyFile != "" && !filepath.IsAbs(r.BodyFile) {
				r.BodyFile = filepath.Join(dir, r.BodyFile)
			}
		}
		resolvePaths(paths[i].Paths, dir)
	}
}
