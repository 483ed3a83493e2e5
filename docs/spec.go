package docs

import (
	"cmp"
	"encoding/json"
	"reflect"
	"slices"
)

// ServiceSpecification is the immutable document served by a DocService.
// Services, methods, endpoints, and named types are kept in a canonical
// order, but consumers must treat methods, endpoints, and exception
// signatures as sets.
type ServiceSpecification struct {
	Services       []ServiceInfo   `json:"services" yaml:"services"`
	Enums          []EnumInfo      `json:"enums" yaml:"enums"`
	Structs        []StructInfo    `json:"structs" yaml:"structs"`
	Exceptions     []ExceptionInfo `json:"exceptions" yaml:"exceptions"`
	ExampleHeaders []Headers       `json:"exampleHeaders" yaml:"exampleHeaders"`
}

// ServiceInfo describes one owning type and its surviving methods.
type ServiceInfo struct {
	Name           string       `json:"name" yaml:"name"`
	Methods        []MethodInfo `json:"methods" yaml:"methods"`
	ExampleHeaders []Headers    `json:"exampleHeaders" yaml:"exampleHeaders"`
	DocString      string       `json:"docString" yaml:"docString"`
}

// EnumInfo describes an enumeration and its constants in declaration order.
type EnumInfo struct {
	Name      string          `json:"name" yaml:"name"`
	Values    []EnumValueInfo `json:"values" yaml:"values"`
	DocString string          `json:"docString,omitempty" yaml:"docString,omitempty"`
}

// EnumValueInfo describes one enum constant.
type EnumValueInfo struct {
	Name      string `json:"name" yaml:"name"`
	DocString string `json:"docString,omitempty" yaml:"docString,omitempty"`
}

// StructInfo describes the members of a structured type.
type StructInfo struct {
	Name      string      `json:"name" yaml:"name"`
	Fields    []FieldInfo `json:"fields" yaml:"fields"`
	DocString string      `json:"docString,omitempty" yaml:"docString,omitempty"`
}

// ExceptionInfo describes an error type a method may return.
type ExceptionInfo struct {
	Name      string      `json:"name" yaml:"name"`
	Fields    []FieldInfo `json:"fields" yaml:"fields"`
	DocString string      `json:"docString,omitempty" yaml:"docString,omitempty"`
}

// NamedTypes holds the descriptors of named types keyed by signature name.
type NamedTypes struct {
	Enums      map[string]EnumInfo
	Structs    map[string]StructInfo
	Exceptions map[string]ExceptionInfo
}

func (n *NamedTypes) merge(o NamedTypes) {
	if n.Enums == nil {
		n.Enums = make(map[string]EnumInfo)
	}
	if n.Structs == nil {
		n.Structs = make(map[string]StructInfo)
	}
	if n.Exceptions == nil {
		n.Exceptions = make(map[string]ExceptionInfo)
	}
	for k, v := range o.Enums {
		n.Enums[k] = v
	}
	for k, v := range o.Structs {
		n.Structs[k] = v
	}
	for k, v := range o.Exceptions {
		n.Exceptions[k] = v
	}
}

// MarshalJSON keeps every top-level collection as an array.
func (s ServiceSpecification) MarshalJSON() ([]byte, error) {
	type plain ServiceSpecification
	p := plain(s)
	p.Services = nonNil(p.Services)
	p.Enums = nonNil(p.Enums)
	p.Structs = nonNil(p.Structs)
	p.Exceptions = nonNil(p.Exceptions)
	p.ExampleHeaders = nonNil(p.ExampleHeaders)
	return json.Marshal(p)
}

// MarshalJSON keeps every collection as an array.
func (s ServiceInfo) MarshalJSON() ([]byte, error) {
	type plain ServiceInfo
	p := plain(s)
	p.Methods = nonNil(p.Methods)
	p.ExampleHeaders = nonNil(p.ExampleHeaders)
	return json.Marshal(p)
}

// MarshalJSON keeps Values as an array.
func (e EnumInfo) MarshalJSON() ([]byte, error) {
	type plain EnumInfo
	p := plain(e)
	p.Values = nonNil(p.Values)
	return json.Marshal(p)
}

// MarshalJSON keeps Fields as an array.
func (s StructInfo) MarshalJSON() ([]byte, error) {
	type plain StructInfo
	p := plain(s)
	p.Fields = nonNil(p.Fields)
	return json.Marshal(p)
}

// MarshalJSON keeps Fields as an array.
func (e ExceptionInfo) MarshalJSON() ([]byte, error) {
	type plain ExceptionInfo
	p := plain(e)
	p.Fields = nonNil(p.Fields)
	return json.Marshal(p)
}

// Equal compares two specifications ignoring the order of every set-typed
// array: services, methods, endpoints, exception signatures, media types,
// and named type lists. Example arrays are ordered and compared as such.
func (s *ServiceSpecification) Equal(o *ServiceSpecification) bool {
	if s == nil || o == nil {
		return s == o
	}
	a, b := s.canonical(), o.canonical()
	return reflect.DeepEqual(a, b)
}

// canonical returns a normalized deep copy used for comparisons and for
// the deterministic output order of Generate.
func (s *ServiceSpecification) canonical() *ServiceSpecification {
	c := &ServiceSpecification{
		Services:       make([]ServiceInfo, len(s.Services)),
		Enums:          nonNil(slices.Clone(s.Enums)),
		Structs:        nonNil(slices.Clone(s.Structs)),
		Exceptions:     nonNil(slices.Clone(s.Exceptions)),
		ExampleHeaders: nonNil(cloneHeaders(s.ExampleHeaders)),
	}
	for i, svc := range s.Services {
		svc.Methods = slices.Clone(svc.Methods)
		for j := range svc.Methods {
			svc.Methods[j] = canonicalMethod(svc.Methods[j])
		}
		sortMethods(svc.Methods)
		svc.Methods = nonNil(svc.Methods)
		svc.ExampleHeaders = nonNil(cloneHeaders(svc.ExampleHeaders))
		c.Services[i] = svc
	}
	slices.SortFunc(c.Services, func(a, b ServiceInfo) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(c.Enums, func(a, b EnumInfo) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(c.Structs, func(a, b StructInfo) int { return cmp.Compare(a.Name, b.Name) })
	slices.SortFunc(c.Exceptions, func(a, b ExceptionInfo) int { return cmp.Compare(a.Name, b.Name) })
	return c
}

func canonicalMethod(m MethodInfo) MethodInfo {
	m = m.clone()
	m.Endpoints = nonNil(m.Endpoints)
	for i := range m.Endpoints {
		m.Endpoints[i].AvailableMimeTypes = nonNil(sortedSet(m.Endpoints[i].AvailableMimeTypes))
	}
	slices.SortFunc(m.Endpoints, func(a, b EndpointInfo) int { return cmp.Compare(a.key(), b.key()) })
	slices.SortFunc(m.ExceptionTypeSignatures, func(a, b TypeSignature) int {
		return cmp.Compare(a.Signature(), b.Signature())
	})
	m.ExceptionTypeSignatures = slices.CompactFunc(nonNil(m.ExceptionTypeSignatures), TypeSignature.Equal)
	m.Parameters = nonNil(m.Parameters)
	m.ExampleHeaders = nonNil(cloneHeaders(m.ExampleHeaders))
	m.ExampleRequests = nonNil(m.ExampleRequests)
	m.ExamplePaths = nonNil(m.ExamplePaths)
	m.ExampleQueries = nonNil(m.ExampleQueries)
	return m
}

func sortMethods(methods []MethodInfo) {
	slices.SortFunc(methods, func(a, b MethodInfo) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.HTTPMethod.order(), b.HTTPMethod.order())
	})
}
