// Package docs builds and serves a machine-readable description of the
// services hosted by a server.
//
// Discovery front ends describe their services as raw MethodInfo records
// through the Source interface, resolving Go types with a shared Resolver.
// Generate then aggregates duplicate bindings, applies the include and
// exclude filters, fills in doc strings, collects the reachable named
// types, and appends example overlays. The result is an immutable
// ServiceSpecification that a DocService serves as JSON:
//
//	GET <mount>/specification.json
//
// Methods, endpoints, and exception signatures are sets. Compare documents
// with ServiceSpecification.Equal rather than by their JSON bytes.
package docs
