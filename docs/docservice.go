package docs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/sangyongchoi/armeria/middleware"
	"gopkg.in/yaml.v3"
)

// Document file names served under the mount point.
const (
	SpecificationJSON = "specification.json"
	SpecificationYAML = "specification.yaml"
)

// CacheControlNoCache is sent with every DocService response so that the
// document always reflects the running binary.
const CacheControlNoCache = "no-cache, max-age=0, must-revalidate"

var (
	// ErrNotInitialized is reported to clients that reach a DocService
	// before the server initialized it.
	ErrNotInitialized = errors.New("docs: specification is not built yet")

	// ErrAlreadyInitialized is returned by a second call to Initialize.
	ErrAlreadyInitialized = errors.New("docs: specification is already built")
)

// DocServiceBuilder configures a DocService.
//
//	svc, err := docs.NewDocServiceBuilder().
//	    ExampleHeaders(docs.MustHeaders("authorization", "bearer token")).
//	    Exclude(docs.OfMethodName("app.UserService", "Delete")).
//	    Build()
type DocServiceBuilder struct {
	examples   *Examples
	include    *Filter
	exclude    *Filter
	docStrings map[string]string
	excluded   []HTTPMethod
	logger     *slog.Logger
	errs       []error
}

// NewDocServiceBuilder returns a builder with no filters and no examples.
func NewDocServiceBuilder() *DocServiceBuilder {
	return &DocServiceBuilder{
		examples:   NewExamples(),
		docStrings: make(map[string]string),
	}
}

// ExampleHeaders adds example headers shown for every method.
func (b *DocServiceBuilder) ExampleHeaders(headers ...Headers) *DocServiceBuilder {
	b.examples.AddHeaders(headers...)
	return b
}

// ServiceExampleHeaders adds example headers for every method of a service.
func (b *DocServiceBuilder) ServiceExampleHeaders(service string, headers ...Headers) *DocServiceBuilder {
	b.examples.AddServiceHeaders(service, headers...)
	return b
}

// MethodExampleHeaders adds example headers for one method.
func (b *DocServiceBuilder) MethodExampleHeaders(service, method string, headers ...Headers) *DocServiceBuilder {
	b.examples.AddMethodHeaders(service, method, headers...)
	return b
}

// ExamplePaths adds literal example paths for one method.
func (b *DocServiceBuilder) ExamplePaths(service, method string, paths ...string) *DocServiceBuilder {
	b.examples.AddPaths(service, method, paths...)
	return b
}

// ExampleQueries adds literal example query strings for one method.
func (b *DocServiceBuilder) ExampleQueries(service, method string, queries ...string) *DocServiceBuilder {
	b.examples.AddQueries(service, method, queries...)
	return b
}

// ExampleRequests adds example request bodies for one method. Encoding
// errors are reported by Build.
func (b *DocServiceBuilder) ExampleRequests(service, method string, requests ...any) *DocServiceBuilder {
	if err := b.examples.AddRequests(service, method, requests...); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Include limits the document to the methods matched by f. Repeated calls
// are combined with Or.
func (b *DocServiceBuilder) Include(f Filter) *DocServiceBuilder {
	b.include = orFilter(b.include, f)
	return b
}

// Exclude drops the methods matched by f. Repeated calls are combined
// with Or.
func (b *DocServiceBuilder) Exclude(f Filter) *DocServiceBuilder {
	b.exclude = orFilter(b.exclude, f)
	return b
}

// DocStrings adds fallback documentation keyed by "Service" and
// "Service/method".
func (b *DocServiceBuilder) DocStrings(docs map[string]string) *DocServiceBuilder {
	maps.Copy(b.docStrings, docs)
	return b
}

// AggregateExcludedMethods replaces the verbs dropped when a method bound
// to every verb is expanded.
func (b *DocServiceBuilder) AggregateExcludedMethods(methods ...HTTPMethod) *DocServiceBuilder {
	b.excluded = append([]HTTPMethod{}, methods...)
	return b
}

// Logger sets the logger. Defaults to slog.Default().
func (b *DocServiceBuilder) Logger(l *slog.Logger) *DocServiceBuilder {
	b.logger = l
	return b
}

// Build returns the DocService. The document itself is built later by
// Initialize.
func (b *DocServiceBuilder) Build() (*DocService, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}

	cacheControl, err := middleware.CacheControlMiddleware(middleware.CacheControlConfig{
		Rules:          []middleware.CacheControlRule{{Value: CacheControlNoCache, Expires: -1}},
		DefaultExpires: -1,
	})
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &DocService{
		examples:   b.examples.clone(),
		include:    b.include,
		exclude:    b.exclude,
		docStrings: maps.Clone(b.docStrings),
		excluded:   b.excluded,
		logger:     logger,
	}
	s.handler = cacheControl(http.HandlerFunc(s.serve))
	return s, nil
}

func orFilter(prev *Filter, f Filter) *Filter {
	if prev == nil {
		return &f
	}
	combined := prev.Or(f)
	return &combined
}

type document struct {
	spec     *ServiceSpecification
	jsonData []byte
	yamlData []byte
}

// DocService serves the specification of the services hosted next to it.
// It is an http.Handler meant to be mounted under a prefix with the prefix
// stripped, answering "/specification.json" and "/specification.yaml".
type DocService struct {
	examples   *Examples
	include    *Filter
	exclude    *Filter
	docStrings map[string]string
	excluded   []HTTPMethod
	logger     *slog.Logger

	handler http.Handler
	doc     atomic.Pointer[document]
}

// Initialize builds the document from sources and publishes it. It is
// called once by the server before it accepts connections; any error
// must abort startup.
func (s *DocService) Initialize(sources []Source) error {
	if s.doc.Load() != nil {
		return ErrAlreadyInitialized
	}

	resolver, descs, err := describe(sources, NewResolver())
	if err != nil {
		return err
	}
	if resolver.ambiguous() {
		// Same-named types: describe again so their names do not depend
		// on source order.
		if resolver, descs, err = describe(sources, resolver.Stable()); err != nil {
			return err
		}
	}

	spec, err := Generate(GenerateInput{
		Services:                 descs,
		NamedTypes:               resolver.NamedTypes(),
		DocStrings:               s.docStrings,
		Include:                  s.include,
		Exclude:                  s.exclude,
		Examples:                 s.examples,
		AggregateExcludedMethods: s.excluded,
	})
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("docs: marshal json: %w", err)
	}
	yamlData, err := yaml.Marshal(spec)
	if err != nil {
		return fmt.Errorf("docs: marshal yaml: %w", err)
	}

	if !s.doc.CompareAndSwap(nil, &document{spec: spec, jsonData: jsonData, yamlData: yamlData}) {
		return ErrAlreadyInitialized
	}

	methods := 0
	for _, svc := range spec.Services {
		methods += len(svc.Methods)
	}
	s.logger.Info("service specification built",
		slog.Int("services", len(spec.Services)),
		slog.Int("methods", methods),
		slog.Int("structs", len(spec.Structs)),
		slog.Int("enums", len(spec.Enums)))
	return nil
}

func describe(sources []Source, resolver *Resolver) (*Resolver, []ServiceDescription, error) {
	var descs []ServiceDescription
	for _, src := range sources {
		d, err := src.DescribeServices(resolver)
		if err != nil {
			return nil, nil, fmt.Errorf("docs: describe services: %w", err)
		}
		descs = append(descs, d...)
	}
	return resolver, descs, nil
}

// Specification returns the published document, or nil before Initialize.
func (s *DocService) Specification() *ServiceSpecification {
	if d := s.doc.Load(); d != nil {
		return d.spec
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (s *DocService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *DocService) serve(w http.ResponseWriter, r *http.Request) {
	var (
		contentType string
		pick        func(*document) []byte
	)

	switch strings.TrimPrefix(r.URL.Path, "/") {
	case SpecificationJSON:
		contentType = "application/json; charset=utf-8"
		pick = func(d *document) []byte { return d.jsonData }
	case SpecificationYAML:
		contentType = "application/yaml; charset=utf-8"
		pick = func(d *document) []byte { return d.yamlData }
	default:
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	d := s.doc.Load()
	if d == nil {
		http.Error(w, ErrNotInitialized.Error(), http.StatusServiceUnavailable)
		return
	}

	data := pick(d)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(data)
}
