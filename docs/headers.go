package docs

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Headers is one example header set. Names are lowercased.
type Headers map[string][]string

// NewHeaders builds a header set from name/value pairs. It returns an
// error for an odd number of arguments or an invalid header field.
func NewHeaders(pairs ...string) (Headers, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("docs: headers: odd number of arguments %d", len(pairs))
	}
	h := make(Headers, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		if err := h.add(pairs[i], pairs[i+1]); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// MustHeaders is like NewHeaders but panics on error.
func MustHeaders(pairs ...string) Headers {
	h, err := NewHeaders(pairs...)
	if err != nil {
		panic(err)
	}
	return h
}

// HeadersFromHTTP converts an http.Header, validating every field.
func HeadersFromHTTP(src http.Header) (Headers, error) {
	h := make(Headers, len(src))
	for _, name := range slices.Sorted(maps.Keys(src)) {
		for _, v := range src[name] {
			if err := h.add(name, v); err != nil {
				return nil, err
			}
		}
	}
	return h, nil
}

func (h Headers) add(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("docs: invalid header name %q", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("docs: invalid value for header %q", name)
	}
	name = strings.ToLower(name)
	h[name] = append(h[name], value)
	return nil
}

// Clone returns a deep copy.
func (h Headers) Clone() Headers {
	if h == nil {
		return nil
	}
	out := make(Headers, len(h))
	for k, v := range h {
		out[k] = slices.Clone(v)
	}
	return out
}

func cloneHeaders(list []Headers) []Headers {
	out := make([]Headers, len(list))
	for i, h := range list {
		out[i] = h.Clone()
	}
	return out
}
