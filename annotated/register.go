package annotated

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/sangyongchoi/armeria/docs"
)

type pathSpec struct {
	spec     string
	consumes []string
	produces []string
}

// method is one registered handler.
type method struct {
	name     string
	doc      string
	paths    []pathSpec
	verbs    []docs.HTTPMethod
	consumes []string
	produces []string
	host     string
	throws   []reflect.Type

	reqType  reflect.Type
	respType reflect.Type
	params   []param
	invoke   invoker
}

// Option configures a registered method.
type Option func(*method)

// Name sets the logical method name. It defaults to the Go method name of
// a method value handler.
func Name(name string) Option {
	return func(m *method) { m.name = name }
}

// Path adds path specifications. Each is parsed by route.Parse and placed
// under the mount prefix.
func Path(specs ...string) Option {
	return func(m *method) {
		for _, s := range specs {
			m.paths = append(m.paths, pathSpec{spec: s})
		}
	}
}

// PathMedia adds a path with media types of its own, overriding the
// method-wide Consumes and Produces for that path only.
func PathMedia(spec string, consumes, produces []string) Option {
	return func(m *method) {
		m.paths = append(m.paths, pathSpec{spec: spec, consumes: consumes, produces: produces})
	}
}

// Methods adds HTTP methods.
func Methods(verbs ...docs.HTTPMethod) Option {
	return func(m *method) { m.verbs = append(m.verbs, verbs...) }
}

// AllMethods binds the method to every verb.
func AllMethods() Option {
	return Methods(docs.MethodAny)
}

// Consumes sets the media types accepted by every path of the method.
func Consumes(mediaTypes ...string) Option {
	return func(m *method) { m.consumes = append(m.consumes, mediaTypes...) }
}

// Produces sets the media types returned by every path of the method.
// The first one is used as the response Content-Type.
func Produces(mediaTypes ...string) Option {
	return func(m *method) { m.produces = append(m.produces, mediaTypes...) }
}

// Host restricts the method to a virtual host pattern.
func Host(pattern string) Option {
	return func(m *method) { m.host = pattern }
}

// Doc sets the method documentation.
func Doc(doc string) Option {
	return func(m *method) { m.doc = doc }
}

// Throws declares an error type the method may return. E must be a struct
// or a pointer to one.
func Throws[E error]() Option {
	return func(m *method) { m.throws = append(m.throws, reflect.TypeFor[E]()) }
}

// Register adds h to s. Errors are collected and reported by Mount.
//
//	annotated.Register(svc, impl.GetUser,
//	    annotated.Path("/users/{id}"),
//	    annotated.Methods(docs.MethodGet))
func Register[Req, Resp any](s *Service, h func(context.Context, Req) (Resp, error), opts ...Option) {
	m := &method{
		name:     funcName(h),
		reqType:  reflect.TypeFor[Req](),
		respType: reflect.TypeFor[Resp](),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.validate(); err != nil {
		s.errs = append(s.errs, fmt.Errorf("annotated: %s: %w", s.name, err))
		return
	}

	params, err := parseParams(m.reqType)
	if err != nil {
		s.errs = append(s.errs, err)
		return
	}
	m.params = params

	m.invoke = func(ctx context.Context, in *request) (any, error) {
		var req Req
		if len(params) > 0 {
			rv := reflect.ValueOf(&req).Elem()
			if rv.Kind() == reflect.Pointer {
				rv.Set(reflect.New(rv.Type().Elem()))
				rv = rv.Elem()
			}
			if err := bind(rv, params, in); err != nil {
				return nil, err
			}
		}
		res, err := h(ctx, req)
		if err != nil {
			return nil, err
		}
		return res, nil
	}

	s.methods = append(s.methods, m)
}

func (m *method) validate() error {
	switch {
	case m.name == "":
		return errors.New("method name is required for anonymous handlers")
	case len(m.paths) == 0:
		return fmt.Errorf("%s: no path", m.name)
	case len(m.verbs) == 0:
		return fmt.Errorf("%s: no HTTP method", m.name)
	}
	for _, v := range m.verbs {
		if v == docs.MethodUnknown {
			return fmt.Errorf("%s: unknown HTTP method", m.name)
		}
	}
	return nil
}

// Get registers h for GET on path.
func Get[Req, Resp any](s *Service, path string, h func(context.Context, Req) (Resp, error), opts ...Option) {
	Register(s, h, withVerb(docs.MethodGet, path, opts)...)
}

// Post registers h for POST on path.
func Post[Req, Resp any](s *Service, path string, h func(context.Context, Req) (Resp, error), opts ...Option) {
	Register(s, h, withVerb(docs.MethodPost, path, opts)...)
}

// Put registers h for PUT on path.
func Put[Req, Resp any](s *Service, path string, h func(context.Context, Req) (Resp, error), opts ...Option) {
	Register(s, h, withVerb(docs.MethodPut, path, opts)...)
}

// Patch registers h for PATCH on path.
func Patch[Req, Resp any](s *Service, path string, h func(context.Context, Req) (Resp, error), opts ...Option) {
	Register(s, h, withVerb(docs.MethodPatch, path, opts)...)
}

// Delete registers h for DELETE on path.
func Delete[Req, Resp any](s *Service, path string, h func(context.Context, Req) (Resp, error), opts ...Option) {
	Register(s, h, withVerb(docs.MethodDelete, path, opts)...)
}

// Head registers h for HEAD on path.
func Head[Req, Resp any](s *Service, path string, h func(context.Context, Req) (Resp, error), opts ...Option) {
	Register(s, h, withVerb(docs.MethodHead, path, opts)...)
}

// Options registers h for OPTIONS on path.
func Options[Req, Resp any](s *Service, path string, h func(context.Context, Req) (Resp, error), opts ...Option) {
	Register(s, h, withVerb(docs.MethodOptions, path, opts)...)
}

// Trace registers h for TRACE on path.
func Trace[Req, Resp any](s *Service, path string, h func(context.Context, Req) (Resp, error), opts ...Option) {
	Register(s, h, withVerb(docs.MethodTrace, path, opts)...)
}

func withVerb(verb docs.HTTPMethod, path string, opts []Option) []Option {
	return append([]Option{Path(path), Methods(verb)}, opts...)
}

// closureName matches the names the compiler gives function literals.
var closureName = regexp.MustCompile(`^(func)?\d+$`)

// funcName returns the method name of a method value, or "" for function
// literals.
func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return ""
	}
	name := strings.TrimSuffix(f.Name(), "-fm")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if closureName.MatchString(name) {
		return ""
	}
	return name
}
