package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "ok")
	})
}

func corsRequest(t *testing.T, cfg CORSConfig, method, origin string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	mw, err := CORSMiddleware(cfg)
	require.NoError(t, err)

	req := httptest.NewRequest(method, "/docs/specification.json", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(w, req)
	return w
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("allows matching origin", func(t *testing.T) {
		w := corsRequest(t, CORSConfig{AllowedOrigins: []string{"https://example.com"}}, http.MethodGet, "https://example.com", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, []string{"Origin"}, w.Header().Values("Vary"))
	})

	t.Run("ignores other origins", func(t *testing.T) {
		w := corsRequest(t, CORSConfig{AllowedOrigins: []string{"https://example.com"}}, http.MethodGet, "https://evil.com", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("wildcard origin", func(t *testing.T) {
		w := corsRequest(t, CORSConfig{AllowedOrigins: []string{"*"}}, http.MethodGet, "https://any.org", nil)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, w.Header().Values("Vary"))
	})

	t.Run("subdomain pattern", func(t *testing.T) {
		cfg := CORSConfig{AllowedOrigins: []string{"https://*.Example.com"}}
		w := corsRequest(t, cfg, http.MethodGet, "https://docs.example.com", nil)
		assert.Equal(t, "https://docs.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		w = corsRequest(t, cfg, http.MethodGet, "https://example.org", nil)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		cfg := CORSConfig{AllowedOrigins: []string{"https://example.com"}, MaxAge: 600, AllowCredentials: true}
		w := corsRequest(t, cfg, http.MethodOptions, "https://example.com", map[string]string{
			"Access-Control-Request-Method":  http.MethodPost,
			"Access-Control-Request-Headers": "x-request-id",
		})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, "GET,HEAD,POST,PUT,PATCH,DELETE", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "x-request-id", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("plain options passes through", func(t *testing.T) {
		w := corsRequest(t, CORSConfig{AllowedOrigins: []string{"*"}}, http.MethodOptions, "https://example.com", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
	})

	t.Run("expose headers", func(t *testing.T) {
		cfg := CORSConfig{AllowedOrigins: []string{"*"}, ExposeHeaders: []string{DefaultRequestIDHeader}}
		w := corsRequest(t, cfg, http.MethodGet, "https://example.com", nil)
		assert.Equal(t, DefaultRequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("invalid configs", func(t *testing.T) {
		_, err := CORSMiddleware(CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})
		assert.ErrorIs(t, err, ErrWildcardCredentials)

		_, err = CORSMiddleware(CORSConfig{AllowedOrigins: []string{"https://*.*.example.com"}})
		assert.Error(t, err)
	})
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	_, err := RequestSizeLimitMiddleware(RequestSizeLimitConfig{})
	assert.ErrorIs(t, err, ErrInvalidMaxSize)

	mw, err := RequestSizeLimitMiddleware(RequestSizeLimitConfig{MaxBytes: 4})
	require.NoError(t, err)

	var readErr error
	h := mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 16)
		for readErr == nil {
			_, readErr = r.Body.Read(buf)
		}
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.ErrorIs(t, readErr, io.EOF)

	readErr = nil
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large")))
	var tooLarge *http.MaxBytesError
	assert.ErrorAs(t, readErr, &tooLarge)
}
