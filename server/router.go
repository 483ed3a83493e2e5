package server

import (
	"net/http"
	"path"
	"slices"
	"strings"

	"github.com/sangyongchoi/armeria/docs"
	"github.com/sangyongchoi/armeria/route"
)

// entry is one routable binding.
type entry struct {
	binding route.Binding

	// methods is empty or holds docs.MethodAny for handlers serving every
	// verb.
	methods []docs.HTTPMethod
	handler http.Handler
}

func (e *entry) allows(m docs.HTTPMethod) bool {
	return len(e.methods) == 0 || slices.Contains(e.methods, docs.MethodAny) || slices.Contains(e.methods, m)
}

// router dispatches to the first entry matching host, path, and verb.
// Entries are tried in registration order.
type router struct {
	entries []*entry

	notFound         http.Handler
	methodNotAllowed http.Handler
}

func (rt *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if cleaned := cleanPath(req.URL.Path); cleaned != req.URL.Path {
		u := *req.URL
		u.Path = cleaned
		u.RawPath = ""
		req = req.Clone(req.Context())
		req.URL = &u
	}

	verb := docs.ParseHTTPMethod(req.Method)
	var allowed []docs.HTTPMethod
	pathMatched := false

	for _, e := range rt.entries {
		if !route.MatchHost(e.binding.Hostname, req.Host) {
			continue
		}
		vars, ok := e.binding.Mapping.Match(req.URL.Path)
		if !ok {
			continue
		}
		if !e.allows(verb) {
			pathMatched = true
			allowed = append(allowed, e.methods...)
			continue
		}
		e.handler.ServeHTTP(w, req.WithContext(route.WithParams(req.Context(), vars)))
		return
	}

	if pathMatched {
		w.Header().Set("Allow", allowHeader(allowed))
		rt.methodNotAllowed.ServeHTTP(w, req)
		return
	}
	rt.notFound.ServeHTTP(w, req)
}

// allowHeader lists the verbs in canonical order. MethodAny never reaches
// here because such entries allow every verb.
func allowHeader(methods []docs.HTTPMethod) string {
	seen := make([]string, 0, len(methods))
	for _, m := range docs.HTTPMethods {
		if slices.Contains(methods, m) {
			seen = append(seen, string(m))
		}
	}
	return strings.Join(seen, ", ")
}

func defaultMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// cleanPath returns the canonical form of p, keeping a trailing slash.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		p = "/" + p
	}
	np := path.Clean(p)
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np
}

// PathParams returns the path parameters captured for r.
func PathParams(r *http.Request) map[string]string {
	return route.ParamsFromContext(r.Context())
}

// PathParam returns one captured path parameter.
func PathParam(r *http.Request, name string) (string, bool) {
	v, ok := PathParams(r)[name]
	return v, ok
}
