package docs

import (
	"encoding/json"
	"slices"
)

// DefaultHostnamePattern matches any virtual host.
const DefaultHostnamePattern = "*"

// EndpointInfo describes one way a method is reached: a hostname pattern,
// a path mapping, and the media types it speaks.
//
// PathMapping is one of "exact:<path>", "prefix:<path>/", "regex:<pattern>"
// or a templated path kept verbatim (e.g. "/users/:id"). RegexPathPrefix is
// only set for regex mappings mounted under a literal prefix.
type EndpointInfo struct {
	HostnamePattern    string   `json:"hostnamePattern" yaml:"hostnamePattern"`
	PathMapping        string   `json:"pathMapping" yaml:"pathMapping"`
	RegexPathPrefix    string   `json:"regexPathPrefix,omitempty" yaml:"regexPathPrefix,omitempty"`
	DefaultMimeType    string   `json:"defaultMimeType,omitempty" yaml:"defaultMimeType,omitempty"`
	AvailableMimeTypes []string `json:"availableMimeTypes" yaml:"availableMimeTypes"`
}

// NewEndpointInfo returns an endpoint with a sorted, deduplicated set of
// media types. An empty hostname pattern becomes DefaultHostnamePattern.
func NewEndpointInfo(hostnamePattern, pathMapping string, mimeTypes ...string) EndpointInfo {
	if hostnamePattern == "" {
		hostnamePattern = DefaultHostnamePattern
	}
	return EndpointInfo{
		HostnamePattern:    hostnamePattern,
		PathMapping:        pathMapping,
		AvailableMimeTypes: sortedSet(mimeTypes),
	}
}

// WithRegexPathPrefix returns a copy with the regex path prefix set.
func (e EndpointInfo) WithRegexPathPrefix(prefix string) EndpointInfo {
	e.RegexPathPrefix = prefix
	return e
}

// key identifies the endpoint within a set.
func (e EndpointInfo) key() string {
	return e.HostnamePattern + "\x00" + e.PathMapping + "\x00" + e.RegexPathPrefix
}

// Equal reports structural equality, treating media types as a set.
func (e EndpointInfo) Equal(o EndpointInfo) bool {
	return e.key() == o.key() &&
		e.DefaultMimeType == o.DefaultMimeType &&
		slices.Equal(sortedSet(e.AvailableMimeTypes), sortedSet(o.AvailableMimeTypes))
}

// MarshalJSON keeps AvailableMimeTypes as an array even when empty.
func (e EndpointInfo) MarshalJSON() ([]byte, error) {
	type plain EndpointInfo
	p := plain(e)
	if p.AvailableMimeTypes == nil {
		p.AvailableMimeTypes = []string{}
	}
	return json.Marshal(p)
}

// unionEndpoints merges b into a. Endpoints with the same hostname and
// mapping are merged by unioning their media types.
func unionEndpoints(a, b []EndpointInfo) []EndpointInfo {
	out := make([]EndpointInfo, 0, len(a)+len(b))
	index := make(map[string]int, len(a)+len(b))
	for _, list := range [][]EndpointInfo{a, b} {
		for _, e := range list {
			k := e.key()
			if i, ok := index[k]; ok {
				merged := out[i]
				merged.AvailableMimeTypes = sortedSet(append(slices.Clone(merged.AvailableMimeTypes), e.AvailableMimeTypes...))
				if merged.DefaultMimeType == "" {
					merged.DefaultMimeType = e.DefaultMimeType
				}
				out[i] = merged
				continue
			}
			index[k] = len(out)
			e.AvailableMimeTypes = sortedSet(e.AvailableMimeTypes)
			out = append(out, e)
		}
	}
	return out
}

func sortedSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}
