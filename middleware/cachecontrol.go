package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// ErrNoCacheControlRules is returned when CacheControlConfig.Rules is empty.
var ErrNoCacheControlRules = errors.New("cache control: at least one rule is required")

// CacheControlRule maps a Content-Type prefix to a Cache-Control value.
// An empty ContentType matches every response.
type CacheControlRule struct {
	ContentType string
	Value       string

	// Expires is added to the current time to compute the Expires header.
	// Zero means already expired; a negative value sends no Expires.
	Expires time.Duration
}

// CacheControlConfig configures CacheControlMiddleware.
type CacheControlConfig struct {
	// Rules are tried in order; the first match wins. Required.
	Rules []CacheControlRule

	// DefaultValue is used when no rule matches. Empty sends nothing.
	DefaultValue string

	// DefaultExpires follows the same rules as CacheControlRule.Expires.
	DefaultExpires time.Duration
}

// CacheControlMiddleware sets Cache-Control and Expires from the response
// Content-Type just before the header is written. Headers already set by
// the handler are left alone.
func CacheControlMiddleware(cfg CacheControlConfig) (MiddlewareFunc, error) {
	if len(cfg.Rules) == 0 {
		return nil, ErrNoCacheControlRules
	}

	rules := make([]CacheControlRule, len(cfg.Rules))
	for i, r := range cfg.Rules {
		r.ContentType = strings.ToLower(r.ContentType)
		rules[i] = r
	}
	fallback := CacheControlRule{Value: cfg.DefaultValue, Expires: cfg.DefaultExpires}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(&cacheControlWriter{ResponseWriter: w, rules: rules, fallback: fallback}, r)
		})
	}, nil
}

type cacheControlWriter struct {
	http.ResponseWriter
	rules       []CacheControlRule
	fallback    CacheControlRule
	wroteHeader bool
}

func (cw *cacheControlWriter) match(contentType string) CacheControlRule {
	contentType = strings.ToLower(contentType)
	for _, rule := range cw.rules {
		if strings.HasPrefix(contentType, rule.ContentType) {
			return rule
		}
	}
	return cw.fallback
}

func (cw *cacheControlWriter) WriteHeader(statusCode int) {
	if cw.wroteHeader {
		return
	}
	cw.wroteHeader = true

	h := cw.Header()
	rule := cw.match(h.Get("Content-Type"))
	if h.Get("Cache-Control") == "" && rule.Value != "" {
		h.Set("Cache-Control", rule.Value)
	}
	if h.Get("Expires") == "" && rule.Expires >= 0 {
		h.Set("Expires", time.Now().UTC().Add(rule.Expires).Format(http.TimeFormat))
	}

	cw.ResponseWriter.WriteHeader(statusCode)
}

func (cw *cacheControlWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	return cw.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter.
func (cw *cacheControlWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}
