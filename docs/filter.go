package docs

import (
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

// PluginAnnotated is the plugin name of services discovered from annotated
// handlers.
const PluginAnnotated = "annotated"

// MatchFunc is a leaf predicate over a discovered method.
type MatchFunc func(plugin, service, method string) bool

type filterOp int

const (
	opLeaf filterOp = iota
	opAnd
	opOr
)

// Filter decides whether a discovered method is matched. Filters form a
// small expression tree of leaves combined with And and Or; the zero value
// matches nothing.
type Filter struct {
	op          filterOp
	match       MatchFunc
	left, right *Filter
}

// OfFunc returns a filter backed by an arbitrary matcher.
func OfFunc(fn MatchFunc) Filter {
	return Filter{op: opLeaf, match: fn}
}

// OfAll matches every method.
func OfAll() Filter {
	return OfFunc(func(string, string, string) bool { return true })
}

// OfNone matches no method.
func OfNone() Filter {
	return Filter{}
}

// OfPluginName matches every method discovered by the named plugin.
func OfPluginName(plugin string) Filter {
	return OfFunc(func(p, _, _ string) bool { return p == plugin })
}

// OfAnnotated matches every method discovered from annotated handlers.
func OfAnnotated() Filter {
	return OfPluginName(PluginAnnotated)
}

// OfServiceName matches every method of the named service.
func OfServiceName(service string) Filter {
	return OfFunc(func(_, s, _ string) bool { return s == service })
}

// OfMethodName matches one method, by name, of the named service.
func OfMethodName(service, method string) Filter {
	return OfFunc(func(_, s, m string) bool { return s == service && m == method })
}

// OfGlob matches "service/method" against a doublestar glob pattern.
// A single "*" never crosses the separator, so "pkg.Svc/get*" matches only
// methods of pkg.Svc whose names start with "get". Invalid patterns match
// nothing; validate them with doublestar.ValidatePattern first.
func OfGlob(pattern string) Filter {
	return OfFunc(func(_, s, m string) bool {
		ok, err := doublestar.Match(pattern, s+"/"+m)
		return err == nil && ok
	})
}

// OfRegex matches "service#method" against a regular expression.
func OfRegex(re *regexp.Regexp) Filter {
	return OfFunc(func(_, s, m string) bool { return re.MatchString(s + "#" + m) })
}

// Or returns a filter matching when either f or o matches.
func (f Filter) Or(o Filter) Filter {
	return Filter{op: opOr, left: &f, right: &o}
}

// And returns a filter matching when both f and o match.
func (f Filter) And(o Filter) Filter {
	return Filter{op: opAnd, left: &f, right: &o}
}

// Test evaluates the filter for one method.
func (f Filter) Test(plugin, service, method string) bool {
	switch f.op {
	case opAnd:
		return f.left.Test(plugin, service, method) && f.right.Test(plugin, service, method)
	case opOr:
		return f.left.Test(plugin, service, method) || f.right.Test(plugin, service, method)
	default:
		return f.match != nil && f.match(plugin, service, method)
	}
}
