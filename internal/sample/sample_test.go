package sample

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sangyongchoi/armeria/docs"
	"github.com/sangyongchoi/armeria/route"
	"github.com/sangyongchoi/armeria/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.DiscardHandler)

type testServer struct {
	srv        *server.Server
	docService *docs.DocService
	excludeAll *docs.DocService
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	docService, err := NewDocService(testLogger)
	require.NoError(t, err)
	excludeAll, err := docs.NewDocServiceBuilder().Logger(testLogger).Exclude(docs.OfAnnotated()).Build()
	require.NoError(t, err)

	srv, err := server.NewBuilder().
		Logger(testLogger).
		AnnotatedService("/service", NewService()).
		ServiceUnder("/docs", docService).
		ServiceUnder("/excludeAll/", excludeAll).
		Build()
	require.NoError(t, err)
	return testServer{srv: srv, docService: docService, excludeAll: excludeAll}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func endpoint(mapping string, mimeTypes ...string) docs.EndpointInfo {
	if len(mimeTypes) == 0 {
		mimeTypes = []string{route.DefaultProduces}
	}
	return docs.NewEndpointInfo("*", mapping, mimeTypes...)
}

func method(name string, verb docs.HTTPMethod, ret docs.TypeSignature, endpoints []docs.EndpointInfo, params ...docs.FieldInfo) docs.MethodInfo {
	return docs.MethodInfo{
		Name:                name,
		HTTPMethod:          verb,
		ReturnTypeSignature: ret,
		Parameters:          params,
		Endpoints:           endpoints,
		ExampleHeaders:      []docs.Headers{ExampleHeadersAll, ExampleHeadersService},
	}
}

func expectedSpecification() *docs.ServiceSpecification {
	var (
		required = docs.RequirementRequired
		optional = docs.RequirementOptional
		field    = docs.NewFieldInfo
		jsonNode = docs.OfBase(docs.TypeJSONNode)
	)

	foo := method("Foo", docs.MethodGet, docs.OfUnresolved(""),
		[]docs.EndpointInfo{endpoint("exact:/service/foo")},
		field("header", docs.INT, docs.LocationHeader, required).WithDoc("header parameter"),
		field("query", docs.LONG, docs.LocationQuery, required).WithDoc("query parameter"))
	foo.DocString = "foo method"
	foo.ExampleQueries = []string{"query=10", "query=20"}

	methods := []docs.MethodInfo{foo}

	for _, verb := range []docs.HTTPMethod{
		docs.MethodOptions, docs.MethodGet, docs.MethodHead, docs.MethodPost,
		docs.MethodPut, docs.MethodPatch, docs.MethodDelete, docs.MethodTrace,
	} {
		methods = append(methods, method("AllMethods", verb,
			docs.OfContainer("Future", docs.OfUnresolved("")),
			[]docs.EndpointInfo{endpoint("exact:/service/allMethods")}))
	}

	pathParams := method("PathParams", docs.MethodGet, docs.STRING,
		[]docs.EndpointInfo{endpoint("/service/hello1/:hello2/hello3/:hello4")},
		field("hello2", docs.STRING, docs.LocationPath, required),
		field("hello4", docs.STRING, docs.LocationPath, required))
	pathParams.ExampleHeaders = append(pathParams.ExampleHeaders, ExampleHeadersMethod)
	pathParams.ExampleRequests = []string{"{\n  \"hello\": \"armeria\"\n}"}
	pathParams.ExamplePaths = []string{"/service/hello1/foo/hello3/bar"}

	pathParamsWithQueries := method("PathParamsWithQueries", docs.MethodGet, docs.STRING,
		[]docs.EndpointInfo{endpoint("/service/hello1/:hello2")},
		field("hello2", docs.STRING, docs.LocationPath, required),
		field("hello3", docs.STRING, docs.LocationQuery, required))
	pathParamsWithQueries.ExamplePaths = []string{"/service/hello1/foo", "/service/hello1/bar"}
	pathParamsWithQueries.ExampleQueries = []string{"hello3=hello4"}

	regexEndpoint := endpoint("regex:/(bar|baz)").WithRegexPathPrefix("prefix:/service/")

	insideBean := field("insideBean", docs.OfBase("InsideBean"), docs.LocationUnspecified, required).WithChildren(
		field("insideBeanId", docs.LONG, docs.LocationQuery, required),
		field("values", docs.OfList(docs.STRING), docs.LocationQuery, required).WithDoc("repeated query values"))
	compositeBean := field("compositeBean", docs.OfBase("CompositeBean"), docs.LocationUnspecified, required).WithChildren(
		field("bean1", docs.OfBase("RequestBean1"), docs.LocationUnspecified, required).WithChildren(
			field("uid", docs.LONG, docs.LocationHeader, required),
			field("seqNum", docs.LONG, docs.LocationQuery, optional)),
		field("bean2", docs.OfBase("RequestBean2"), docs.LocationUnspecified, required).WithChildren(insideBean))

	jsonBody := field("request", docs.OfBase("JSONRequest"), docs.LocationBody, required).WithChildren(
		field("foo", docs.INT, docs.LocationBody, required),
		field("bar", docs.STRING, docs.LocationBody, required))

	methods = append(methods,
		method("Ints", docs.MethodGet, docs.OfList(docs.INT),
			[]docs.EndpointInfo{endpoint("exact:/service/ints")},
			field("ints", docs.OfList(docs.INT), docs.LocationQuery, required)),
		pathParams,
		pathParamsWithQueries,
		method("Regex", docs.MethodGet, docs.OfList(docs.OfList(docs.STRING)),
			[]docs.EndpointInfo{regexEndpoint},
			field("myEnum", docs.OfEnum("MyEnum"), docs.LocationQuery, required)),
		method("Prefix", docs.MethodGet, docs.STRING,
			[]docs.EndpointInfo{endpoint("prefix:/service/prefix/")}),
		method("Consumes", docs.MethodGet,
			docs.OfContainer("BiFunction", jsonNode, docs.OfUnresolved(""), docs.STRING),
			[]docs.EndpointInfo{endpoint("exact:/service/consumes", "application/binary", route.DefaultProduces)}),
		method("Bean", docs.MethodGet, jsonNode,
			[]docs.EndpointInfo{endpoint("exact:/service/bean")},
			compositeBean),
		method("Multi", docs.MethodGet, docs.STRING,
			[]docs.EndpointInfo{endpoint("exact:/service/multi"), endpoint("prefix:/service/multi2/")}),
		method("JSON", docs.MethodPost, docs.STRING,
			[]docs.EndpointInfo{endpoint("exact:/service/json")}, jsonBody),
		method("JSON", docs.MethodPut, docs.STRING,
			[]docs.EndpointInfo{endpoint("exact:/service/json")}, jsonBody),
		method("Period", docs.MethodGet, docs.STRING,
			[]docs.EndpointInfo{endpoint("exact:/service/period")},
			field("period", docs.OfBase(docs.TypeDuration), docs.LocationQuery, required)),
	)

	return &docs.ServiceSpecification{
		Services: []docs.ServiceInfo{{
			Name:           ServiceName,
			Methods:        methods,
			ExampleHeaders: []docs.Headers{ExampleHeadersService},
			DocString:      "My service class",
		}},
		Enums: []docs.EnumInfo{{
			Name:   "MyEnum",
			Values: []docs.EnumValueInfo{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		}},
		Structs: []docs.StructInfo{
			{Name: "CompositeBean", Fields: []docs.FieldInfo{
				field("Bean1", docs.OfBase("RequestBean1"), docs.LocationUnspecified, required),
				field("Bean2", docs.OfBase("RequestBean2"), docs.LocationUnspecified, required),
			}},
			{Name: "InsideBean", Fields: []docs.FieldInfo{
				field("InsideBeanID", docs.LONG, docs.LocationUnspecified, required),
				field("Values", docs.OfList(docs.STRING), docs.LocationUnspecified, required).WithDoc("repeated query values"),
			}},
			{Name: "JSONRequest", Fields: []docs.FieldInfo{
				field("foo", docs.INT, docs.LocationUnspecified, required),
				field("bar", docs.STRING, docs.LocationUnspecified, required),
			}},
			{Name: "RequestBean1", Fields: []docs.FieldInfo{
				field("UID", docs.LONG, docs.LocationUnspecified, required),
				field("SeqNum", docs.LONG, docs.LocationUnspecified, optional),
			}},
			{Name: "RequestBean2", Fields: []docs.FieldInfo{
				field("Inside", docs.OfBase("InsideBean"), docs.LocationUnspecified, required),
			}},
		},
		ExampleHeaders: []docs.Headers{ExampleHeadersAll},
	}
}

func TestSpecification(t *testing.T) {
	ts := newTestServer(t)

	rec := get(t, ts.srv, "/docs/specification.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, docs.CacheControlNoCache, rec.Header().Get("Cache-Control"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	spec := ts.docService.Specification()
	require.NotNil(t, spec)
	want := expectedSpecification()
	if !assert.True(t, want.Equal(spec)) {
		wantJSON, _ := json.MarshalIndent(want, "", "  ")
		gotJSON, _ := json.MarshalIndent(spec, "", "  ")
		assert.JSONEq(t, string(wantJSON), string(gotJSON))
	}

	served, err := json.MarshalIndent(spec, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, string(served), rec.Body.String())

	t.Run("excluded methods are absent", func(t *testing.T) {
		for _, m := range spec.Services[0].Methods {
			assert.NotContains(t, []string{"Exclude1", "Exclude2"}, m.Name)
		}
	})

	t.Run("yaml", func(t *testing.T) {
		rec := get(t, ts.srv, "/docs/specification.yaml")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "name: "+ServiceName)
	})
}

func TestExcludeAll(t *testing.T) {
	ts := newTestServer(t)

	rec := get(t, ts.srv, "/excludeAll/specification.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"services":[],"enums":[],"structs":[],"exceptions":[],"exampleHeaders":[]}`, rec.Body.String())
}

func TestService(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		method string
		target string
		header http.Header
		body   string
		code   int
		want   string
	}{
		{http.MethodGet, "/service/foo?query=20", http.Header{"Header": {"10"}}, "", http.StatusOK, "header: 10, query: 20"},
		{http.MethodPatch, "/service/allMethods", nil, "", http.StatusOK, "allMethods"},
		{http.MethodGet, "/service/ints?ints=1&ints=2", nil, "", http.StatusOK, "[1,2]\n"},
		{http.MethodGet, "/service/hello1/a/hello3/b", nil, "", http.StatusOK, "a b"},
		{http.MethodGet, "/service/hello1/a?hello3=c", nil, "", http.StatusOK, "a c"},
		{http.MethodGet, "/service/baz?myEnum=B", nil, "", http.StatusOK, `[["A"],["B"],["C"]]` + "\n"},
		{http.MethodGet, "/service/prefix/anything", nil, "", http.StatusOK, "prefix"},
		{http.MethodGet, "/service/consumes", nil, "", http.StatusOK, "consumes"},
		{http.MethodGet, "/service/multi2/x", nil, "", http.StatusOK, "multi"},
		{http.MethodPut, "/service/json", nil, `{"foo":1,"bar":"baz"}`, http.StatusOK, "baz"},
		{http.MethodGet, "/service/period?period=90s", nil, "", http.StatusOK, "1m30s"},
		{http.MethodGet, "/service/json", nil, "", http.StatusMethodNotAllowed, ""},
		{http.MethodGet, "/service/foo", http.Header{"Header": {"1"}}, "", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.target, body)
			for k, v := range tt.header {
				req.Header[k] = v
			}
			rec := httptest.NewRecorder()
			ts.srv.ServeHTTP(rec, req)

			assert.Equal(t, tt.code, rec.Code)
			if tt.want != "" {
				assert.Equal(t, tt.want, rec.Body.String())
			}
		})
	}

	t.Run("bean", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/service/bean?seqNum=3&insideBeanId=9&values=x&values=y", nil)
		req.Header.Set("uid", "7")
		rec := httptest.NewRecorder()
		ts.srv.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"Bean1": {"UID": 7, "SeqNum": 3},
			"Bean2": {"Inside": {"InsideBeanID": 9, "Values": ["x", "y"]}}
		}`, rec.Body.String())
	})
}
