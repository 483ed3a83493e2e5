package docs

import (
	"encoding/json"
	"slices"
	"strings"
)

// HTTPMethod is a request method token.
type HTTPMethod string

const (
	MethodOptions HTTPMethod = "OPTIONS"
	MethodGet     HTTPMethod = "GET"
	MethodHead    HTTPMethod = "HEAD"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodPatch   HTTPMethod = "PATCH"
	MethodDelete  HTTPMethod = "DELETE"
	MethodTrace   HTTPMethod = "TRACE"
	MethodConnect HTTPMethod = "CONNECT"
	MethodUnknown HTTPMethod = "UNKNOWN"

	// MethodAny binds a handler to every verb. It never appears in a built
	// specification; the aggregator expands it into concrete verbs.
	MethodAny HTTPMethod = "*"
)

// HTTPMethods lists every concrete method in canonical order.
var HTTPMethods = []HTTPMethod{
	MethodOptions, MethodGet, MethodHead, MethodPost, MethodPut,
	MethodPatch, MethodDelete, MethodTrace, MethodConnect, MethodUnknown,
}

// DefaultAggregateExcludedMethods are dropped when expanding MethodAny.
var DefaultAggregateExcludedMethods = []HTTPMethod{MethodConnect, MethodUnknown}

// ParseHTTPMethod converts a method token, case-insensitively. Unknown
// tokens map to MethodUnknown.
func ParseHTTPMethod(s string) HTTPMethod {
	m := HTTPMethod(strings.ToUpper(strings.TrimSpace(s)))
	if m == MethodAny || slices.Contains(HTTPMethods, m) {
		return m
	}
	return MethodUnknown
}

func (m HTTPMethod) order() int {
	if i := slices.Index(HTTPMethods, m); i >= 0 {
		return i
	}
	return len(HTTPMethods)
}

// MethodKey identifies a logical method within its owning service.
type MethodKey struct {
	Name       string
	HTTPMethod HTTPMethod
}

// MethodInfo describes one operation of a service, bound to one verb.
// Endpoints and ExceptionTypeSignatures are sets; the example slices are
// ordered and only ever appended to.
type MethodInfo struct {
	Name                    string          `json:"name" yaml:"name"`
	ReturnTypeSignature     TypeSignature   `json:"returnTypeSignature" yaml:"returnTypeSignature"`
	Parameters              []FieldInfo     `json:"parameters" yaml:"parameters"`
	ExceptionTypeSignatures []TypeSignature `json:"exceptionTypeSignatures" yaml:"exceptionTypeSignatures"`
	Endpoints               []EndpointInfo  `json:"endpoints" yaml:"endpoints"`
	HTTPMethod              HTTPMethod      `json:"httpMethod" yaml:"httpMethod"`
	DocString               string          `json:"docString" yaml:"docString"`
	ExampleHeaders          []Headers       `json:"exampleHeaders" yaml:"exampleHeaders"`
	ExampleRequests         []string        `json:"exampleRequests" yaml:"exampleRequests"`
	ExamplePaths            []string        `json:"examplePaths" yaml:"examplePaths"`
	ExampleQueries          []string        `json:"exampleQueries" yaml:"exampleQueries"`
}

// Key returns the (name, verb) identity of the method.
func (m *MethodInfo) Key() MethodKey {
	return MethodKey{Name: m.Name, HTTPMethod: m.HTTPMethod}
}

// clone returns a deep enough copy that appending to any slice of the
// result never aliases m.
func (m *MethodInfo) clone() MethodInfo {
	c := *m
	c.Parameters = slices.Clone(m.Parameters)
	c.ExceptionTypeSignatures = slices.Clone(m.ExceptionTypeSignatures)
	c.Endpoints = slices.Clone(m.Endpoints)
	c.ExampleHeaders = slices.Clone(m.ExampleHeaders)
	c.ExampleRequests = slices.Clone(m.ExampleRequests)
	c.ExamplePaths = slices.Clone(m.ExamplePaths)
	c.ExampleQueries = slices.Clone(m.ExampleQueries)
	return c
}

// MarshalJSON keeps every collection as an array even when empty.
func (m MethodInfo) MarshalJSON() ([]byte, error) {
	type plain MethodInfo
	p := plain(m)
	p.Parameters = nonNil(p.Parameters)
	p.ExceptionTypeSignatures = nonNil(p.ExceptionTypeSignatures)
	p.Endpoints = nonNil(p.Endpoints)
	p.ExampleHeaders = nonNil(p.ExampleHeaders)
	p.ExampleRequests = nonNil(p.ExampleRequests)
	p.ExamplePaths = nonNil(p.ExamplePaths)
	p.ExampleQueries = nonNil(p.ExampleQueries)
	return json.Marshal(p)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
