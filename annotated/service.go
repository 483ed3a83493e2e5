package annotated

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"github.com/sangyongchoi/armeria/docs"
	"github.com/sangyongchoi/armeria/route"
)

// Service groups the methods of one owning type.
type Service struct {
	name    string
	doc     string
	methods []*method
	errs    []error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// ServiceName overrides the owning type name.
func ServiceName(name string) ServiceOption {
	return func(s *Service) { s.name = name }
}

// ServiceDoc sets the service documentation.
func ServiceDoc(doc string) ServiceOption {
	return func(s *Service) { s.doc = doc }
}

// New returns a service owned by impl. The service is named after the
// package path and name of impl's type, e.g.
// "example.com/app.UserService".
func New(impl any, opts ...ServiceOption) *Service {
	s := &Service{name: typeName(impl)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func typeName(impl any) string {
	t := reflect.TypeOf(impl)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// Name returns the owning type name.
func (s *Service) Name() string { return s.name }

// Err returns the registration errors collected so far.
func (s *Service) Err() error {
	errs := append([]error{}, s.errs...)
	if s.name == "" {
		errs = append(errs, errors.New("annotated: service has no name"))
	}
	return errors.Join(errs...)
}

// Route is one binding of a mounted method.
type Route struct {
	// Method is the logical method name.
	Method string

	// HTTPMethods may contain docs.MethodAny.
	HTTPMethods []docs.HTTPMethod

	Binding route.Binding
	Handler http.Handler
}

// MountedService is a Service placed under a path prefix. It describes
// itself to a DocService and hands its routes to the server.
type MountedService struct {
	svc     *Service
	prefix  string
	methods []mountedMethod
}

type mountedMethod struct {
	*method
	bindings []route.Binding
	handler  http.Handler
}

// Mount places every method of s under prefix.
func (s *Service) Mount(prefix string) (*MountedService, error) {
	if err := s.Err(); err != nil {
		return nil, err
	}

	ms := &MountedService{svc: s, prefix: prefix}
	for _, m := range s.methods {
		mm := mountedMethod{method: m, handler: m.handler()}
		for _, p := range m.paths {
			mapping, err := route.Parse(p.spec)
			if err != nil {
				return nil, fmt.Errorf("annotated: %s.%s: %w", s.name, m.name, err)
			}
			if mapping, err = mapping.WithPrefix(prefix); err != nil {
				return nil, fmt.Errorf("annotated: %s.%s: %w", s.name, m.name, err)
			}
			mm.bindings = append(mm.bindings, route.Binding{
				Hostname: m.host,
				Mapping:  mapping,
				Consumes: orDefault(p.consumes, m.consumes),
				Produces: orDefault(p.produces, m.produces),
			})
		}
		ms.methods = append(ms.methods, mm)
	}
	return ms, nil
}

func orDefault(v, def []string) []string {
	if len(v) > 0 {
		return v
	}
	return def
}

// Service returns the mounted service.
func (ms *MountedService) Service() *Service { return ms.svc }

// Prefix returns the mount prefix.
func (ms *MountedService) Prefix() string { return ms.prefix }

// Routes returns one route per binding, in registration order.
func (ms *MountedService) Routes() []Route {
	var out []Route
	for _, m := range ms.methods {
		for _, b := range m.bindings {
			out = append(out, Route{
				Method:      m.name,
				HTTPMethods: append([]docs.HTTPMethod{}, m.verbs...),
				Binding:     b,
				Handler:     m.handler,
			})
		}
	}
	return out
}

// DescribeServices implements docs.Source. Every verb of a method is
// described separately; the builder aggregates them.
func (ms *MountedService) DescribeServices(r *docs.Resolver) ([]docs.ServiceDescription, error) {
	desc := docs.ServiceDescription{
		Name:      ms.svc.name,
		Plugin:    docs.PluginAnnotated,
		DocString: ms.svc.doc,
	}
	for _, m := range ms.methods {
		info, err := m.describe(r)
		if err != nil {
			return nil, fmt.Errorf("annotated: %s.%s: %w", ms.svc.name, m.name, err)
		}
		for _, verb := range m.verbs {
			mi := info
			mi.HTTPMethod = verb
			desc.Methods = append(desc.Methods, mi)
		}
	}
	return []docs.ServiceDescription{desc}, nil
}

func (m mountedMethod) describe(r *docs.Resolver) (docs.MethodInfo, error) {
	mappings := make([]*route.PathMapping, len(m.bindings))
	endpoints := make([]docs.EndpointInfo, len(m.bindings))
	for i, b := range m.bindings {
		mappings[i] = b.Mapping
		endpoints[i] = b.EndpointInfo()
	}

	params, err := describeParams(r, m.params, mappings)
	if err != nil {
		return docs.MethodInfo{}, err
	}
	ret, err := r.Resolve(m.respType)
	if err != nil {
		return docs.MethodInfo{}, err
	}
	var exceptions []docs.TypeSignature
	for _, t := range m.throws {
		sig, err := r.RegisterException(t)
		if err != nil {
			return docs.MethodInfo{}, err
		}
		exceptions = append(exceptions, sig)
	}

	return docs.MethodInfo{
		Name:                    m.name,
		ReturnTypeSignature:     ret,
		Parameters:              params,
		ExceptionTypeSignatures: exceptions,
		Endpoints:               endpoints,
		DocString:               m.doc,
	}, nil
}

// handler adapts the typed call to http.Handler. Path parameters are read
// from the request context.
func (m *method) handler() http.Handler {
	produces := ""
	if len(m.produces) > 0 {
		produces = m.produces[0]
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in := &request{r: r, pathParams: route.ParamsFromContext(r.Context())}
		res, err := m.invoke(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeResult(r.Context(), w, res, produces)
	})
}

var _ docs.Source = (*MountedService)(nil)

// invoker calls the typed handler.
type invoker func(ctx context.Context, in *request) (any, error)
