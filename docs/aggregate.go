package docs

import (
	"fmt"
	"slices"
)

// MethodConflictError reports two bindings of the same logical method whose
// parameter shapes or return types differ.
type MethodConflictError struct {
	Service string
	Key     MethodKey
}

func (e *MethodConflictError) Error() string {
	return fmt.Sprintf("docs: %s.%s (%s) is bound more than once with different parameters or return types",
		e.Service, e.Key.Name, e.Key.HTTPMethod)
}

// Aggregate merges the raw bindings of one service. A MethodAny binding
// expands into one method per concrete verb not listed in excluded.
// Bindings sharing (name, verb) collapse into one method whose endpoints
// are the union of theirs; their parameters and return types must be
// structurally equal.
// Output order follows first appearance in the input.
func Aggregate(service string, raw []MethodInfo, excluded []HTTPMethod) ([]MethodInfo, error) {
	out := make([]MethodInfo, 0, len(raw))
	index := make(map[MethodKey]int, len(raw))

	add := func(m MethodInfo) error {
		k := m.Key()
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			m.Endpoints = unionEndpoints(nil, m.Endpoints)
			out = append(out, m)
			return nil
		}
		existing := &out[i]
		if !fieldsEqual(existing.Parameters, m.Parameters) ||
			!existing.ReturnTypeSignature.Equal(m.ReturnTypeSignature) {
			return &MethodConflictError{Service: service, Key: k}
		}
		existing.Endpoints = unionEndpoints(existing.Endpoints, m.Endpoints)
		existing.ExceptionTypeSignatures = unionSignatures(existing.ExceptionTypeSignatures, m.ExceptionTypeSignatures)
		existing.ExampleHeaders = append(existing.ExampleHeaders, m.ExampleHeaders...)
		existing.ExampleRequests = append(existing.ExampleRequests, m.ExampleRequests...)
		existing.ExamplePaths = append(existing.ExamplePaths, m.ExamplePaths...)
		existing.ExampleQueries = append(existing.ExampleQueries, m.ExampleQueries...)
		if existing.DocString == "" {
			existing.DocString = m.DocString
		}
		return nil
	}

	for i := range raw {
		m := raw[i].clone()
		if m.HTTPMethod != MethodAny {
			if err := add(m); err != nil {
				return nil, err
			}
			continue
		}
		for _, verb := range ExpandAny(excluded) {
			expanded := m.clone()
			expanded.HTTPMethod = verb
			if err := add(expanded); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// ExpandAny returns the concrete verbs covered by MethodAny, minus excluded.
// A nil excluded slice means DefaultAggregateExcludedMethods; pass an empty
// non-nil slice to keep every verb.
func ExpandAny(excluded []HTTPMethod) []HTTPMethod {
	if excluded == nil {
		excluded = DefaultAggregateExcludedMethods
	}
	verbs := make([]HTTPMethod, 0, len(HTTPMethods))
	for _, m := range HTTPMethods {
		if !slices.Contains(excluded, m) {
			verbs = append(verbs, m)
		}
	}
	return verbs
}

func unionSignatures(a, b []TypeSignature) []TypeSignature {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.ContainsFunc(out, s.Equal) {
			out = append(out, s)
		}
	}
	return out
}
