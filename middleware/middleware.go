// Package middleware provides the HTTP middleware used by the server and
// the specification endpoint.
//
// Every constructor returns a MiddlewareFunc; compose them with Chain:
//
//	h := middleware.Chain(
//	    middleware.RecoveryMiddleware(middleware.RecoveryConfig{Logger: logger}),
//	    middleware.RequestIDMiddleware(middleware.RequestIDConfig{}),
//	    middleware.LoggingMiddleware(middleware.LoggingConfig{Logger: logger}),
//	)(handler)
package middleware

import "net/http"

// MiddlewareFunc wraps an http.Handler.
type MiddlewareFunc func(http.Handler) http.Handler

// Chain composes middlewares so that the first one is the outermost.
func Chain(mws ...MiddlewareFunc) MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
