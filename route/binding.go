package route

import (
	"net"
	"strings"

	"github.com/sangyongchoi/armeria/docs"
)

// DefaultProduces is assumed when a binding declares no produced types.
const DefaultProduces = "application/json; charset=utf-8"

// Binding is one way to reach a handler: a virtual host, a path mapping,
// and the media types it consumes and produces.
type Binding struct {
	Hostname string
	Mapping  *PathMapping
	Consumes []string
	Produces []string
}

// EndpointInfo describes the binding. Available media types are the union
// of consumed and produced types.
func (b Binding) EndpointInfo() docs.EndpointInfo {
	produces := b.Produces
	if len(produces) == 0 {
		produces = []string{DefaultProduces}
	}
	mimeTypes := append(append([]string{}, b.Consumes...), produces...)
	return docs.NewEndpointInfo(b.Hostname, b.Mapping.Meta(), mimeTypes...).
		WithRegexPathPrefix(b.Mapping.RegexPathPrefix())
}

// MatchHost reports whether host (optionally with a port) is served by
// pattern. Patterns are "*", an exact name, or "*.example.com".
func MatchHost(pattern, host string) bool {
	if pattern == "" || pattern == docs.DefaultHostnamePattern {
		return true
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	pattern = strings.ToLower(pattern)
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return strings.HasSuffix(host, "."+suffix)
	}
	return host == pattern
}
