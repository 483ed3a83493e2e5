package route

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// isTemplate reports whether spec has a ":name" or "{name}" segment.
func isTemplate(spec string) bool {
	for _, seg := range strings.Split(spec, "/") {
		if len(seg) > 1 && seg[0] == ':' {
			return true
		}
		if len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
			return true
		}
	}
	return false
}

// newTemplate compiles a templated path. Parameters are whole segments,
// written ":name", "{name}" or "{name:pattern}"; the stored form always
// uses ":name".
func newTemplate(spec string) (*PathMapping, error) {
	if err := checkAbsolute(spec); err != nil {
		return nil, err
	}

	var (
		pattern bytes.Buffer
		meta    strings.Builder
		params  []string
	)
	pattern.WriteByte('^')

	for i, seg := range strings.Split(spec, "/") {
		if i > 0 {
			pattern.WriteByte('/')
			meta.WriteByte('/')
		}

		name, patt, ok := templateParam(seg)
		if !ok {
			pattern.WriteString(regexp.QuoteMeta(seg))
			meta.WriteString(seg)
			continue
		}
		if name == "" {
			return nil, fmt.Errorf("route: missing parameter name in %q", spec)
		}
		for _, p := range params {
			if p == name {
				return nil, fmt.Errorf("route: duplicated parameter %q in %q", name, spec)
			}
		}
		params = append(params, name)
		fmt.Fprintf(&pattern, "(?P<%s>%s)", name, patt)
		meta.WriteByte(':')
		meta.WriteString(name)
	}
	pattern.WriteByte('$')

	re, err := compileRegexp(pattern.String())
	if err != nil {
		return nil, fmt.Errorf("route: invalid template %q: %w", spec, err)
	}
	return &PathMapping{kind: KindTemplate, path: meta.String(), params: params, re: re}, nil
}

func templateParam(seg string) (name, pattern string, ok bool) {
	switch {
	case len(seg) > 0 && seg[0] == ':':
		return seg[1:], "[^/]+", true
	case len(seg) > 1 && seg[0] == '{' && seg[len(seg)-1] == '}':
		name, pattern, found := strings.Cut(seg[1:len(seg)-1], ":")
		if !found {
			pattern = "[^/]+"
		}
		return name, pattern, true
	}
	return "", "", false
}

// globToRegex converts a glob to an anchored regular expression. "*"
// matches within one segment, "**" across segments. A glob that does not
// start with '/' matches at any depth.
func globToRegex(glob string) string {
	var b strings.Builder
	b.WriteByte('^')
	if !strings.HasPrefix(glob, "/") {
		b.WriteString("/(?:.+/)?")
	}
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch {
		case c == '*' && i+1 < len(glob) && glob[i+1] == '*':
			i++
			if i+1 < len(glob) && glob[i+1] == '/' {
				i++
				b.WriteString("(?:.+/)?")
			} else {
				b.WriteString(".*")
			}
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteByte('$')
	return b.String()
}
