// Package route classifies path specifications into path mappings.
//
// A mapping is exact, prefix, regex, or templated. Parse accepts an
// explicit marker ("exact:", "prefix:", "regex:", "glob:") or infers the
// kind from the shape of the path. Mappings render to the canonical text
// form used in endpoint descriptions and match request paths for the
// server.
package route
