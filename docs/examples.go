package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// methodRef names one method of one service, across every verb it is
// bound to.
type methodRef struct {
	service string
	method  string
}

type methodExamples struct {
	headers  []Headers
	requests []string
	paths    []string
	queries  []string
}

// Examples holds example values at three scopes: global, per service, and
// per method. Every scope is append-only and is applied onto a built
// specification in the order global, service, method.
type Examples struct {
	global   []Headers
	services map[string][]Headers
	methods  map[methodRef]*methodExamples
	order    []methodRef
}

// NewExamples returns an empty overlay store.
func NewExamples() *Examples {
	return &Examples{
		services: make(map[string][]Headers),
		methods:  make(map[methodRef]*methodExamples),
	}
}

// AddHeaders appends global example headers.
func (e *Examples) AddHeaders(headers ...Headers) {
	e.global = append(e.global, cloneHeaders(headers)...)
}

// AddServiceHeaders appends example headers for every method of a service.
func (e *Examples) AddServiceHeaders(service string, headers ...Headers) {
	e.services[service] = append(e.services[service], cloneHeaders(headers)...)
}

// AddMethodHeaders appends example headers for one method.
func (e *Examples) AddMethodHeaders(service, method string, headers ...Headers) {
	m := e.method(service, method)
	m.headers = append(m.headers, cloneHeaders(headers)...)
}

// AddPaths appends literal example paths for one method.
func (e *Examples) AddPaths(service, method string, paths ...string) {
	m := e.method(service, method)
	m.paths = append(m.paths, paths...)
}

// AddQueries appends literal example query strings for one method. A
// leading '?' is dropped.
func (e *Examples) AddQueries(service, method string, queries ...string) {
	m := e.method(service, method)
	for _, q := range queries {
		if len(q) > 0 && q[0] == '?' {
			q = q[1:]
		}
		m.queries = append(m.queries, q)
	}
}

// AddRequests appends example request bodies for one method. A string,
// []byte or json.RawMessage must already hold JSON; any other value is
// marshaled. Bodies are stored indented and never checked against the
// method's parameters.
func (e *Examples) AddRequests(service, method string, requests ...any) error {
	encoded := make([]string, 0, len(requests))
	for i, req := range requests {
		s, err := encodeExample(req)
		if err != nil {
			return fmt.Errorf("docs: example request %d for %s/%s: %w", i, service, method, err)
		}
		encoded = append(encoded, s)
	}
	m := e.method(service, method)
	m.requests = append(m.requests, encoded...)
	return nil
}

func (e *Examples) method(service, method string) *methodExamples {
	ref := methodRef{service: service, method: method}
	m, ok := e.methods[ref]
	if !ok {
		m = &methodExamples{}
		e.methods[ref] = m
		e.order = append(e.order, ref)
	}
	return m
}

// apply appends every scope onto spec. Targets that name an unknown
// service or method are ignored.
func (e *Examples) apply(spec *ServiceSpecification) {
	if e == nil {
		return
	}
	spec.ExampleHeaders = append(spec.ExampleHeaders, cloneHeaders(e.global)...)
	for i := range spec.Services {
		svc := &spec.Services[i]
		scoped := e.services[svc.Name]
		svc.ExampleHeaders = append(svc.ExampleHeaders, cloneHeaders(scoped)...)
		for j := range svc.Methods {
			m := &svc.Methods[j]
			m.ExampleHeaders = append(m.ExampleHeaders, cloneHeaders(e.global)...)
			m.ExampleHeaders = append(m.ExampleHeaders, cloneHeaders(scoped)...)
			ex, ok := e.methods[methodRef{service: svc.Name, method: m.Name}]
			if !ok {
				continue
			}
			m.ExampleHeaders = append(m.ExampleHeaders, cloneHeaders(ex.headers)...)
			m.ExampleRequests = append(m.ExampleRequests, ex.requests...)
			m.ExamplePaths = append(m.ExamplePaths, ex.paths...)
			m.ExampleQueries = append(m.ExampleQueries, ex.queries...)
		}
	}
}

// clone returns an independent copy.
func (e *Examples) clone() *Examples {
	c := NewExamples()
	if e == nil {
		return c
	}
	c.global = cloneHeaders(e.global)
	for k, v := range e.services {
		c.services[k] = cloneHeaders(v)
	}
	for _, ref := range e.order {
		m := e.methods[ref]
		c.methods[ref] = &methodExamples{
			headers:  cloneHeaders(m.headers),
			requests: slices.Clone(m.requests),
			paths:    slices.Clone(m.paths),
			queries:  slices.Clone(m.queries),
		}
		c.order = append(c.order, ref)
	}
	return c
}

func encodeExample(v any) (string, error) {
	var raw []byte
	switch t := v.(type) {
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	case json.RawMessage:
		raw = t
	default:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
