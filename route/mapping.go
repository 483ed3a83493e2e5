package route

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Markers that select a matching strategy explicitly.
const (
	MarkerExact  = "exact:"
	MarkerPrefix = "prefix:"
	MarkerRegex  = "regex:"
	MarkerGlob   = "glob:"
)

// ErrEmptyPath is returned by Parse for an empty path specification.
var ErrEmptyPath = errors.New("route: empty path")

// Kind is the matching strategy of a PathMapping.
type Kind int

const (
	KindExact Kind = iota
	KindPrefix
	KindRegex
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindPrefix:
		return "prefix"
	case KindRegex:
		return "regex"
	case KindTemplate:
		return "template"
	}
	return "unknown"
}

// PathMapping is a classified path specification. It is immutable.
type PathMapping struct {
	kind Kind

	// path is the exact path, the prefix (with a trailing slash), the
	// regular expression, or the template in ":name" form.
	path string

	// regexPrefix is the literal mount prefix of a regex mapping,
	// with a trailing slash.
	regexPrefix string

	params []string
	re     *regexp.Regexp
}

// Parse classifies a path specification. In priority order:
//
//	exact:/a/b  prefix:/a  regex:^/a/(?P<id>\d+)$  glob:/a/**/*.js   explicit markers
//	/users/:id  /users/{id}                                           templated path
//	/static/*                                                         prefix
//	^/a/(b|c)$                                                        regex
//	/a/b                                                              exact
func Parse(spec string) (*PathMapping, error) {
	if spec == "" {
		return nil, ErrEmptyPath
	}

	switch {
	case strings.HasPrefix(spec, MarkerExact):
		return newExact(strings.TrimPrefix(spec, MarkerExact))
	case strings.HasPrefix(spec, MarkerPrefix):
		return newPrefix(strings.TrimPrefix(spec, MarkerPrefix))
	case strings.HasPrefix(spec, MarkerRegex):
		return newRegex(strings.TrimPrefix(spec, MarkerRegex))
	case strings.HasPrefix(spec, MarkerGlob):
		return newRegex(globToRegex(strings.TrimPrefix(spec, MarkerGlob)))
	case isTemplate(spec):
		return newTemplate(spec)
	case strings.HasSuffix(spec, "/*"):
		return newPrefix(strings.TrimSuffix(spec, "*"))
	case strings.HasPrefix(spec, "^"):
		return newRegex(spec)
	default:
		return newExact(spec)
	}
}

// MustParse is like Parse but panics on error.
func MustParse(spec string) *PathMapping {
	m, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return m
}

func newExact(path string) (*PathMapping, error) {
	if err := checkAbsolute(path); err != nil {
		return nil, err
	}
	return &PathMapping{kind: KindExact, path: path}, nil
}

func newPrefix(path string) (*PathMapping, error) {
	if err := checkAbsolute(path); err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	return &PathMapping{kind: KindPrefix, path: path}, nil
}

func newRegex(pattern string) (*PathMapping, error) {
	if pattern == "" {
		return nil, ErrEmptyPath
	}
	re, err := compileRegexp(pattern)
	if err != nil {
		return nil, fmt.Errorf("route: invalid regex %q: %w", pattern, err)
	}
	var params []string
	for _, name := range re.SubexpNames() {
		if name != "" {
			params = append(params, name)
		}
	}
	return &PathMapping{kind: KindRegex, path: pattern, params: params, re: re}, nil
}

func checkAbsolute(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if path[0] != '/' {
		return fmt.Errorf("route: path %q must start with '/'", path)
	}
	return nil
}

// Kind returns the matching strategy.
func (m *PathMapping) Kind() Kind { return m.kind }

// Path returns the path, prefix, pattern or template without a marker.
func (m *PathMapping) Path() string { return m.path }

// ParamNames returns the names of the path parameters in order.
func (m *PathMapping) ParamNames() []string { return slices.Clone(m.params) }

// HasParam reports whether the mapping captures a path parameter named name.
func (m *PathMapping) HasParam(name string) bool { return slices.Contains(m.params, name) }

// Meta returns the canonical text form used in endpoint descriptions:
// "exact:<path>", "prefix:<path>/", "regex:<pattern>", or a template
// kept verbatim.
func (m *PathMapping) Meta() string {
	switch m.kind {
	case KindExact:
		return MarkerExact + m.path
	case KindPrefix:
		return MarkerPrefix + m.path
	case KindRegex:
		return MarkerRegex + m.path
	default:
		return m.path
	}
}

// RegexPathPrefix returns "prefix:<prefix>/" for a regex mapping mounted
// under a literal prefix, and "" otherwise.
func (m *PathMapping) RegexPathPrefix() string {
	if m.regexPrefix == "" {
		return ""
	}
	return MarkerPrefix + m.regexPrefix
}

// WithPrefix returns the mapping mounted under prefix. Literal mappings
// and templates are rewritten; a regex keeps its pattern and records the
// prefix instead, which only narrows matching to paths under it.
func (m *PathMapping) WithPrefix(prefix string) (*PathMapping, error) {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return m, nil
	}
	if err := checkAbsolute(prefix); err != nil {
		return nil, err
	}

	c := *m
	switch m.kind {
	case KindRegex:
		if m.regexPrefix == "" {
			c.regexPrefix = prefix + "/"
		} else {
			c.regexPrefix = prefix + m.regexPrefix
		}
		return &c, nil
	case KindTemplate:
		return newTemplate(prefix + m.path)
	default:
		c.path = prefix + m.path
		return &c, nil
	}
}

// Match reports whether path is served by the mapping and returns the
// captured path parameters. Regex mappings use find semantics: the
// pattern may match anywhere unless it anchors itself.
func (m *PathMapping) Match(path string) (map[string]string, bool) {
	switch m.kind {
	case KindExact:
		return nil, path == m.path
	case KindPrefix:
		return nil, strings.HasPrefix(path, m.path)
	case KindRegex:
		if m.regexPrefix != "" {
			if !strings.HasPrefix(path, m.regexPrefix) {
				return nil, false
			}
			path = path[len(m.regexPrefix)-1:]
		}
	}

	matches := m.re.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}
	if len(m.params) == 0 {
		return nil, true
	}
	vars := make(map[string]string, len(m.params))
	names := m.re.SubexpNames()
	for i := 1; i < len(matches); i++ {
		if names[i] != "" {
			vars[names[i]] = matches[i]
		}
	}
	return vars, true
}

func (m *PathMapping) String() string { return m.Meta() }
