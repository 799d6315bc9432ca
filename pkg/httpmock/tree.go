package httpmock

import (
	"maps"
	"strings"

	"github.com/getmockd/httpmock/pkg/mock"
)

// HostElement is an element of a Host block: a Path or a HeaderBlock.
type HostElement interface {
	hostElement()
}

// PathElement is an element of a Path block: a nested Path, a HeaderBlock,
// a QueryBlock or Responses.
type PathElement interface {
	pathElement()
}

// Host groups paths registered on one host.
type Host struct {
	host     string
	elements []HostElement
}

// NewHost creates a host block. Headers declared directly on a host apply to
// every response beneath it.
func NewHost(host string, elements ...HostElement) Host {
	return Host{host: host, elements: elements}
}

// Path groups responses and nested paths. Nested paths join their parent
// with a single slash.
type Path struct {
	path     string
	elements []PathElement
}

// NewPath creates a path block.
func NewPath(path string, elements ...PathElement) Path {
	return Path{path: path, elements: elements}
}

func (Path) hostElement() {}
func (Path) pathElement() {}

// HeaderBlock adds headers to responses.
type HeaderBlock struct {
	values  map[string]string
	cascade bool
}

// Headers creates a header block. The headers apply to the responses of the
// enclosing path, and to those of nested paths as well when cascade is set.
// Closer header blocks win over inherited ones, later blocks in the same
// scope win over earlier ones, and headers set on a response always win.
func Headers(values map[string]string, cascade bool) HeaderBlock {
	return HeaderBlock{values: values, cascade: cascade}
}

func (HeaderBlock) hostElement() {}
func (HeaderBlock) pathElement() {}

// QueryBlock sets the query constraint of the enclosing path.
// It does not apply to nested paths.
type QueryBlock struct {
	values map[string]string
	mode   mock.QueryMode
}

// Query creates a query constraint block.
func Query(values map[string]string, mode mock.QueryMode) QueryBlock {
	return QueryBlock{values: values, mode: mode}
}

func (QueryBlock) pathElement() {}

// Responses lists responses queued for the enclosing path, in order.
type Responses []mock.Response

// Respond creates a Responses element.
func Respond(responses ...mock.Response) Responses {
	return Responses(responses)
}

func (Responses) pathElement() {}

// Registration is one flattened (path, responses) entry of a tree.
type Registration struct {
	Path      string
	Query     map[string]string
	QueryMode mock.QueryMode
	Responses []mock.Response
}

// Flatten resolves a host block into registrations with inherited headers
// applied to each response.
func (h Host) Flatten() []Registration {
	var (
		inherited map[string]string
		paths     []Path
	)
	for _, el := range h.elements {
		switch v := el.(type) {
		case HeaderBlock:
			inherited = mergeHeaders(inherited, v.values)
		case Path:
			paths = append(paths, v)
		}
	}

	var regs []Registration
	for _, p := range paths {
		regs = append(regs, p.flatten("", inherited)...)
	}
	return regs
}

// Flatten resolves a path block into registrations.
func (p Path) Flatten() []Registration {
	return p.flatten("", nil)
}

func (p Path) flatten(parent string, inherited map[string]string) []Registration {
	full := joinPaths(parent, p.path)

	var (
		local     map[string]string
		cascading = inherited
		query     *QueryBlock
		responses []mock.Response
		children  []Path
	)
	for _, el := range p.elements {
		switch v := el.(type) {
		case HeaderBlock:
			local = mergeHeaders(local, v.values)
			if v.cascade {
				cascading = mergeHeaders(cascading, v.values)
			}
		case QueryBlock:
			q := v
			query = &q
		case Responses:
			responses = append(responses, v...)
		case Path:
			children = append(children, v)
		}
	}

	var regs []Registration
	if len(responses) > 0 {
		headers := mergeHeaders(inherited, local)
		reg := Registration{Path: full}
		for _, r := range responses {
			reg.Responses = append(reg.Responses, r.AddingHeaders(headers))
		}
		if query != nil {
			reg.Query = query.values
			reg.QueryMode = query.mode
		}
		regs = append(regs, reg)
	}

	for _, child := range children {
		regs = append(regs, child.flatten(full, cascading)...)
	}
	return regs
}

// Register registers every host block.
func (m *Mock) Register(hosts ...Host) int {
	n := 0
	for _, h := range hosts {
		n += m.registerAll(h.host, h.Flatten())
	}
	return n
}

// RegisterPaths registers path blocks on host.
func (m *Mock) RegisterPaths(host string, paths ...PathElement) int {
	return m.registerAll(host, NewPath("", paths...).Flatten())
}

// RegisterDefault registers path blocks on the default domain.
func (m *Mock) RegisterDefault(paths ...PathElement) int {
	return m.RegisterPaths(m.DefaultDomain(), paths...)
}

func (m *Mock) registerAll(host string, regs []Registration) int {
	n := 0
	for _, reg := range regs {
		key := mock.NewKey(host, reg.Path, reg.Query, reg.QueryMode)
		n += m.view.Register(key, reg.Responses)
	}
	return n
}

// mergeHeaders returns base overlaid with over. Header names compare
// case-insensitively; over wins. Neither input is modified.
func mergeHeaders(base, over map[string]string) map[string]string {
	if len(over) == 0 {
		return base
	}
	merged := make(map[string]string, len(base)+len(over))
	maps.Copy(merged, base)
	for name, value := range over {
		for existing := range merged {
			if existing != name && strings.EqualFold(existing, name) {
				delete(merged, existing)
			}
		}
		merged[name] = value
	}
	return merged
}

// joinPaths joins a parent and child path with single slashes.
// The result always starts with "/".
func joinPaths(parent, child string) string {
	var segments []string
	for _, s := range []string{parent, child} {
		if s = strings.Trim(s, "/"); s != "" {
			segments = append(segments, s)
		}
	}
	return "/" + strings.Join(segments, "/")
}
