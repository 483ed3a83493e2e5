// Package sample is a demonstration service covering every parameter and
// mapping form the documentation service understands.
package sample

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sangyongchoi/armeria/annotated"
	"github.com/sangyongchoi/armeria/docs"
)

// ServiceName is the owning type name of MyService.
const ServiceName = "github.com/sangyongchoi/armeria/internal/sample.MyService"

// MyEnum is a closed set of letters.
type MyEnum string

// MyEnum values.
const (
	A MyEnum = "A"
	B MyEnum = "B"
	C MyEnum = "C"
)

// EnumValues implements docs.Enum.
func (MyEnum) EnumValues() []string { return []string{string(A), string(B), string(C)} }

// BiFunction is returned by Consumes to show how function types are
// described.
type BiFunction func(json.RawMessage, any) string

// String implements fmt.Stringer.
func (BiFunction) String() string { return "consumes" }

// FooRequest reads one header and one query parameter.
type FooRequest struct {
	Header int   `header:"header" doc:"header parameter"`
	Query  int64 `param:"query" doc:"query parameter"`
}

// IntsRequest reads a repeated query parameter.
type IntsRequest struct {
	Ints []int `param:"ints"`
}

// PathParamsRequest reads both variables of a two-parameter template.
type PathParamsRequest struct {
	Hello2 string `param:"hello2"`
	Hello4 string `param:"hello4"`
}

// PathParamsWithQueriesRequest mixes a path variable with a query
// parameter of the same source tag.
type PathParamsWithQueriesRequest struct {
	Hello2 string `param:"hello2"`
	Hello3 string `param:"hello3"`
}

// RegexRequest reads an enum from the query.
type RegexRequest struct {
	MyEnum MyEnum `param:"myEnum"`
}

// InsideBean is the innermost level of BeanRequest.
type InsideBean struct {
	InsideBeanID int64    `param:"insideBeanId"`
	Values       []string `query:"values" doc:"repeated query values"`
}

// RequestBean1 groups a header and an optional query parameter.
type RequestBean1 struct {
	UID    int64  `header:"uid"`
	SeqNum *int64 `query:"seqNum"`
}

// RequestBean2 nests InsideBean.
type RequestBean2 struct {
	Inside InsideBean `bean:"insideBean"`
}

// CompositeBean combines two beans.
type CompositeBean struct {
	Bean1 RequestBean1 `bean:"bean1"`
	Bean2 RequestBean2 `bean:"bean2"`
}

// BeanRequest is bound from three levels of nested beans.
type BeanRequest struct {
	CompositeBean CompositeBean `bean:"compositeBean"`
}

// JSONRequest is the JSON body of MyService.JSON.
type JSONRequest struct {
	Foo int    `json:"foo"`
	Bar string `json:"bar"`
}

// JSONBody reads JSONRequest from the request body.
type JSONBody struct {
	Request JSONRequest `body:"request"`
}

// PeriodRequest reads a duration such as "1m30s".
type PeriodRequest struct {
	Period time.Duration `param:"period"`
}

// MyService is documented by the demo server.
type MyService struct{}

// Foo echoes its header and query parameter.
func (MyService) Foo(_ context.Context, req FooRequest) (any, error) {
	return fmt.Sprintf("header: %d, query: %d", req.Header, req.Query), nil
}

// AllMethods answers every verb with a completed future.
func (MyService) AllMethods(context.Context, struct{}) (*annotated.Future[any], error) {
	return annotated.Completed[any]("allMethods"), nil
}

// Ints returns the repeated query values.
func (MyService) Ints(_ context.Context, req IntsRequest) ([]int, error) {
	return req.Ints, nil
}

// PathParams joins both path variables.
func (MyService) PathParams(_ context.Context, req PathParamsRequest) (string, error) {
	return req.Hello2 + " " + req.Hello4, nil
}

// PathParamsWithQueries joins the path variable and the query value.
func (MyService) PathParamsWithQueries(_ context.Context, req PathParamsWithQueriesRequest) (string, error) {
	return req.Hello2 + " " + req.Hello3, nil
}

// Regex lists every MyEnum value, one per row.
func (MyService) Regex(_ context.Context, req RegexRequest) ([][]string, error) {
	values := req.MyEnum.EnumValues()
	out := make([][]string, len(values))
	for i, v := range values {
		out[i] = []string{v}
	}
	return out, nil
}

// Prefix answers every path under its prefix.
func (MyService) Prefix(context.Context, struct{}) (string, error) {
	return "prefix", nil
}

// Consumes returns a function value, written through its String method.
func (MyService) Consumes(context.Context, struct{}) (BiFunction, error) {
	return func(json.RawMessage, any) string { return "" }, nil
}

// Bean returns the bound beans as JSON.
func (MyService) Bean(_ context.Context, req BeanRequest) (json.RawMessage, error) {
	return json.Marshal(req.CompositeBean)
}

// Exclude1 is hidden from the document.
func (MyService) Exclude1(context.Context, struct{}) (string, error) { return "", nil }

// Exclude2 is hidden from the document.
func (MyService) Exclude2(context.Context, struct{}) (string, error) { return "", nil }

// Multi is bound to an exact path and a prefix.
func (MyService) Multi(context.Context, struct{}) (string, error) { return "multi", nil }

// JSON returns the bar member of the body.
func (MyService) JSON(_ context.Context, req JSONBody) (string, error) {
	return req.Request.Bar, nil
}

// Period returns the duration in Go syntax.
func (MyService) Period(_ context.Context, req PeriodRequest) (string, error) {
	return strings.ToLower(req.Period.String()), nil
}

// NewService registers every method of MyService.
func NewService() *annotated.Service {
	s := MyService{}
	svc := annotated.New(s, annotated.ServiceDoc("My service class"))

	annotated.Get(svc, "/foo", s.Foo, annotated.Doc("foo method"))
	annotated.Register(svc, s.AllMethods, annotated.Path("/allMethods"), annotated.AllMethods())
	annotated.Get(svc, "/ints", s.Ints)
	annotated.Get(svc, "/hello1/:hello2/hello3/:hello4", s.PathParams)
	annotated.Get(svc, "/hello1/:hello2", s.PathParamsWithQueries)
	annotated.Get(svc, "regex:/(bar|baz)", s.Regex)
	annotated.Get(svc, "prefix:/prefix", s.Prefix)
	annotated.Get(svc, "/consumes", s.Consumes, annotated.Consumes("application/binary"))
	annotated.Get(svc, "/bean", s.Bean)
	annotated.Get(svc, "/exclude1", s.Exclude1)
	annotated.Get(svc, "/exclude2", s.Exclude2)
	annotated.Register(svc, s.Multi, annotated.Path("/multi", "prefix:/multi2"), annotated.Methods(docs.MethodGet))
	annotated.Register(svc, s.JSON, annotated.Path("/json"), annotated.Methods(docs.MethodPost, docs.MethodPut))
	annotated.Get(svc, "/period", s.Period)
	return svc
}

// Example headers shown by NewDocService.
var (
	ExampleHeadersAll     = docs.MustHeaders("a", "b")
	ExampleHeadersService = docs.MustHeaders("c", "d")
	ExampleHeadersMethod  = docs.MustHeaders("e", "f")
)

// NewDocService returns the specification endpoint of the demo with
// examples for a few methods. Exclude1 and Exclude2 are hidden.
func NewDocService(logger *slog.Logger) (*docs.DocService, error) {
	return NewDocServiceBuilder().Logger(logger).Build()
}

// NewDocServiceBuilder returns the builder behind NewDocService so that
// callers can add their own settings.
func NewDocServiceBuilder() *docs.DocServiceBuilder {
	return docs.NewDocServiceBuilder().
		ExampleHeaders(ExampleHeadersAll).
		ServiceExampleHeaders(ServiceName, ExampleHeadersService).
		MethodExampleHeaders(ServiceName, "PathParams", ExampleHeadersMethod).
		ExamplePaths(ServiceName, "PathParams", "/service/hello1/foo/hello3/bar").
		ExampleQueries(ServiceName, "Foo", "query=10", "query=20").
		ExampleRequests(ServiceName, "PathParams", map[string]string{"hello": "armeria"}).
		ExamplePaths(ServiceName, "PathParamsWithQueries", "/service/hello1/foo", "/service/hello1/bar").
		ExampleQueries(ServiceName, "PathParamsWithQueries", "hello3=hello4").
		Exclude(docs.OfMethodName(ServiceName, "Exclude1").Or(docs.OfMethodName(ServiceName, "Exclude2")))
}
