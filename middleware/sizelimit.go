package middleware

import (
	"errors"
	"net/http"
)

// ErrInvalidMaxSize is returned when RequestSizeLimitConfig.MaxBytes is
// not positive.
var ErrInvalidMaxSize = errors.New("request size limit: max size must be greater than zero")

// RequestSizeLimitConfig configures RequestSizeLimitMiddleware.
type RequestSizeLimitConfig struct {
	MaxBytes int64
}

// RequestSizeLimitMiddleware wraps request bodies with
// http.MaxBytesReader. Handlers see a *http.MaxBytesError once the limit
// is crossed.
func RequestSizeLimitMiddleware(cfg RequestSizeLimitConfig) (MiddlewareFunc, error) {
	if cfg.MaxBytes <= 0 {
		return nil, ErrInvalidMaxSize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxBytes)
			next.ServeHTTP(w, r)
		})
	}, nil
}
