package annotated

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/sangyongchoi/armeria/docs"
	"github.com/sangyongchoi/armeria/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name" doc:"display name"`
}

type testNotFound struct {
	ID int64 `json:"id"`
}

func (e *testNotFound) Error() string { return "user not found" }

func (e *testNotFound) StatusCode() int { return http.StatusNotFound }

type testPaging struct {
	Limit  int `query:"limit" default:"10"`
	Offset int `query:"offset" default:"0"`
}

type getUserRequest struct {
	ID     int64      `path:"id" doc:"user id"`
	Fields []string   `query:"fields"`
	Trace  *string    `header:"x-trace-id"`
	Paging testPaging `bean:"paging"`
}

type updateUserRequest struct {
	ID   int64    `param:"id"`
	User testUser `body:"user"`
}

type searchRequest struct {
	Term string `param:"term"`
}

type testUserService struct {
	users map[int64]testUser
}

func (s *testUserService) GetUser(_ context.Context, req getUserRequest) (testUser, error) {
	u, ok := s.users[req.ID]
	if !ok {
		return testUser{}, &testNotFound{ID: req.ID}
	}
	if req.Trace != nil {
		u.Name += "#" + *req.Trace
	}
	if len(req.Fields) > 0 {
		u.Name += "[" + strings.Join(req.Fields, ",") + "]"
	}
	return u, nil
}

func (s *testUserService) UpdateUser(_ context.Context, req updateUserRequest) (*Future[testUser], error) {
	req.User.ID = req.ID
	s.users[req.ID] = req.User
	return Completed(req.User), nil
}

func (s *testUserService) Search(_ context.Context, req searchRequest) (string, error) {
	return "found " + req.Term, nil
}

func newTestService(t *testing.T) (*testUserService, *MountedService) {
	t.Helper()

	impl := &testUserService{users: map[int64]testUser{1: {ID: 1, Name: "alice"}}}
	svc := New(impl, ServiceDoc("Manages users."))
	Get(svc, "/users/{id}", impl.GetUser, Doc("Returns one user."), Throws[*testNotFound]())
	Register(svc, impl.UpdateUser, Path("/users/:id"), Methods(docs.MethodPut, docs.MethodPatch))
	Register(svc, impl.Search, Path("/search", "regex:^/find/(?P<term>[a-z]+)$"), AllMethods(), Produces("text/plain"))

	ms, err := svc.Mount("/api")
	require.NoError(t, err)
	return impl, ms
}

func serve(t *testing.T, ms *MountedService, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	verb := docs.ParseHTTPMethod(method)
	for _, rt := range ms.Routes() {
		if !slices.Contains(rt.HTTPMethods, verb) && !slices.Contains(rt.HTTPMethods, docs.MethodAny) {
			continue
		}
		vars, ok := rt.Binding.Mapping.Match(req.URL.Path)
		if !ok {
			continue
		}
		rec := httptest.NewRecorder()
		rt.Handler.ServeHTTP(rec, req.WithContext(route.WithParams(req.Context(), vars)))
		return rec
	}
	t.Fatalf("no route for %s", target)
	return nil
}

func TestNew(t *testing.T) {
	assert.Equal(t, "github.com/sangyongchoi/armeria/annotated.testUserService", New(&testUserService{}).Name())
	assert.Equal(t, "custom", New(testUserService{}, ServiceName("custom")).Name())

	assert.Error(t, New(nil).Err())
}

func TestFuncName(t *testing.T) {
	impl := &testUserService{}
	assert.Equal(t, "GetUser", funcName(impl.GetUser))
	assert.Equal(t, "Search", funcName((*testUserService).Search))
	assert.Empty(t, funcName(func(context.Context, struct{}) (string, error) { return "", nil }))
}

func TestRegisterErrors(t *testing.T) {
	anon := func(context.Context, struct{}) (string, error) { return "", nil }

	tests := []struct {
		name     string
		register func(*Service)
	}{
		{"anonymous without name", func(s *Service) { Get(s, "/a", anon) }},
		{"no path", func(s *Service) { Register(s, anon, Name("a"), Methods(docs.MethodGet)) }},
		{"no verb", func(s *Service) { Register(s, anon, Name("a"), Path("/a")) }},
		{"unknown verb", func(s *Service) { Register(s, anon, Name("a"), Path("/a"), Methods(docs.ParseHTTPMethod("BREW"))) }},
		{"two source tags", func(s *Service) {
			Get(s, "/a", func(context.Context, struct {
				X int `query:"x" header:"x"`
			}) (string, error) {
				return "", nil
			}, Name("a"))
		}},
		{"bad path", func(s *Service) { Get(s, "relative", anon, Name("a")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&testUserService{})
			tt.register(svc)
			_, err := svc.Mount("/")
			assert.Error(t, err)
		})
	}
}

func TestDescribeServices(t *testing.T) {
	_, ms := newTestService(t)

	r := docs.NewResolver()
	descs, err := ms.DescribeServices(r)
	require.NoError(t, err)
	require.Len(t, descs, 1)

	desc := descs[0]
	assert.Equal(t, "github.com/sangyongchoi/armeria/annotated.testUserService", desc.Name)
	assert.Equal(t, docs.PluginAnnotated, desc.Plugin)
	assert.Equal(t, "Manages users.", desc.DocString)
	require.Len(t, desc.Methods, 4)

	t.Run("get user", func(t *testing.T) {
		m := desc.Methods[0]
		assert.Equal(t, "GetUser", m.Name)
		assert.Equal(t, docs.MethodGet, m.HTTPMethod)
		assert.Equal(t, "Returns one user.", m.DocString)
		assert.Equal(t, docs.OfBase("testUser"), m.ReturnTypeSignature)
		assert.Equal(t, []docs.TypeSignature{docs.OfBase("testNotFound")}, m.ExceptionTypeSignatures)
		assert.Equal(t, []docs.EndpointInfo{
			docs.NewEndpointInfo("*", "/api/users/:id", route.DefaultProduces),
		}, m.Endpoints)
		assert.Equal(t, []docs.FieldInfo{
			docs.NewFieldInfo("id", docs.LONG, docs.LocationPath, docs.RequirementRequired).WithDoc("user id"),
			docs.NewFieldInfo("fields", docs.OfList(docs.STRING), docs.LocationQuery, docs.RequirementRequired),
			docs.NewFieldInfo("x-trace-id", docs.STRING, docs.LocationHeader, docs.RequirementOptional),
			docs.NewFieldInfo("paging", docs.OfBase("testPaging"), docs.LocationUnspecified, docs.RequirementRequired).WithChildren(
				docs.NewFieldInfo("limit", docs.INT, docs.LocationQuery, docs.RequirementOptional),
				docs.NewFieldInfo("offset", docs.INT, docs.LocationQuery, docs.RequirementOptional),
			),
		}, m.Parameters)
	})

	t.Run("update user", func(t *testing.T) {
		put, patch := desc.Methods[1], desc.Methods[2]
		assert.Equal(t, docs.MethodPut, put.HTTPMethod)
		assert.Equal(t, docs.MethodPatch, patch.HTTPMethod)
		assert.Equal(t, docs.OfContainer("Future", docs.OfBase("testUser")), put.ReturnTypeSignature)
		assert.Equal(t, []docs.FieldInfo{
			docs.NewFieldInfo("id", docs.LONG, docs.LocationPath, docs.RequirementRequired),
			docs.NewFieldInfo("user", docs.OfBase("testUser"), docs.LocationBody, docs.RequirementRequired).WithChildren(
				docs.NewFieldInfo("id", docs.LONG, docs.LocationBody, docs.RequirementRequired),
				docs.NewFieldInfo("name", docs.STRING, docs.LocationBody, docs.RequirementRequired).WithDoc("display name"),
			),
		}, put.Parameters)
	})

	t.Run("search", func(t *testing.T) {
		m := desc.Methods[3]
		assert.Equal(t, docs.MethodAny, m.HTTPMethod)
		assert.Equal(t, docs.STRING, m.ReturnTypeSignature)
		require.Len(t, m.Endpoints, 2)
		assert.Equal(t, "exact:/api/search", m.Endpoints[0].PathMapping)
		assert.Equal(t, "regex:^/find/(?P<term>[a-z]+)$", m.Endpoints[1].PathMapping)
		assert.Equal(t, "prefix:/api/", m.Endpoints[1].RegexPathPrefix)
		assert.Equal(t, []string{"text/plain"}, m.Endpoints[0].AvailableMimeTypes)
		assert.Equal(t, []docs.FieldInfo{
			docs.NewFieldInfo("term", docs.STRING, docs.LocationPath, docs.RequirementRequired),
		}, m.Parameters)
	})

	t.Run("named types", func(t *testing.T) {
		named := r.NamedTypes()
		assert.Contains(t, named.Structs, "testUser")
		assert.Contains(t, named.Structs, "testPaging")
		assert.Contains(t, named.Exceptions, "testNotFound")
	})
}

func TestDescribeUndeclaredTemplateParams(t *testing.T) {
	svc := New(&testUserService{})
	Get(svc, "/a/:x/b/:y", func(context.Context, struct {
		X string `path:"x"`
	}) (string, error) {
		return "", nil
	}, Name("ab"))
	ms, err := svc.Mount("/")
	require.NoError(t, err)

	descs, err := ms.DescribeServices(docs.NewResolver())
	require.NoError(t, err)
	assert.Equal(t, []docs.FieldInfo{
		docs.NewFieldInfo("x", docs.STRING, docs.LocationPath, docs.RequirementRequired),
		docs.NewFieldInfo("y", docs.STRING, docs.LocationPath, docs.RequirementRequired),
	}, descs[0].Methods[0].Parameters)
}

func TestHandler(t *testing.T) {
	impl, ms := newTestService(t)

	t.Run("binds path query header and bean", func(t *testing.T) {
		rec := serve(t, ms, http.MethodGet, "/api/users/1?fields=a&fields=b&limit=5", "", http.Header{"X-Trace-Id": {"t1"}})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"id":1,"name":"alice#t1[a,b]"}`, rec.Body.String())
	})

	t.Run("status from error", func(t *testing.T) {
		rec := serve(t, ms, http.MethodGet, "/api/users/7", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"user not found"}`, rec.Body.String())
	})

	t.Run("bad parameter", func(t *testing.T) {
		rec := serve(t, ms, http.MethodGet, "/api/users/abc", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("body and future", func(t *testing.T) {
		rec := serve(t, ms, http.MethodPut, "/api/users/2", `{"name":"bob"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"id":2,"name":"bob"}`, rec.Body.String())
		assert.Equal(t, testUser{ID: 2, Name: "bob"}, impl.users[2])
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := serve(t, ms, http.MethodPut, "/api/users/2", `{`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("param from regex group", func(t *testing.T) {
		rec := serve(t, ms, http.MethodGet, "/api/find/cats", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
		assert.Equal(t, "found cats", rec.Body.String())
	})

	t.Run("param from query", func(t *testing.T) {
		rec := serve(t, ms, http.MethodGet, "/api/search?term=dogs", "", nil)
		assert.Equal(t, "found dogs", rec.Body.String())
	})

	t.Run("missing required param", func(t *testing.T) {
		rec := serve(t, ms, http.MethodGet, "/api/search", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New("x"), http.StatusInternalServerError},
		{NewHTTPError(http.StatusConflict, ""), http.StatusConflict},
		{&BindError{Err: errors.New("x")}, http.StatusBadRequest},
		{&BindError{Err: fmt.Errorf("read body: %w", &http.MaxBytesError{Limit: 1})}, http.StatusRequestEntityTooLarge},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{context.Canceled, http.StatusServiceUnavailable},
		{NewHTTPError(http.StatusOK, ""), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}

	assert.Equal(t, "409 Conflict", NewHTTPError(http.StatusConflict, "").Error())
}

func TestWriteResult(t *testing.T) {
	tests := []struct {
		name        string
		value       any
		produces    string
		code        int
		contentType string
		body        string
	}{
		{"nil", nil, "", http.StatusNoContent, "", ""},
		{"string", "hi", "", http.StatusOK, "text/plain; charset=utf-8", "hi"},
		{"bytes", []byte{1, 2}, "", http.StatusOK, "application/octet-stream", "\x01\x02"},
		{"produces", "hi", "text/html", http.StatusOK, "text/html", "hi"},
		{"json", map[string]int{"a": 1}, "", http.StatusOK, "application/json; charset=utf-8", "{\"a\":1}\n"},
		{"stringer", testStringerFunc(func() {}), "", http.StatusOK, "text/plain; charset=utf-8", "fn"},
		{"future", Completed(3), "", http.StatusOK, "application/json; charset=utf-8", "3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeResult(context.Background(), rec, tt.value, tt.produces)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}

	t.Run("failed future", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeResult(context.Background(), rec, Failed[int](NewHTTPError(http.StatusTeapot, "short")), "")
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}

type testStringerFunc func()

func (testStringerFunc) String() string { return "fn" }
