package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// DefaultRequestIDHeader carries the request ID in both directions.
const DefaultRequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestIDFromContext returns the ID stored by RequestIDMiddleware, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDAttr returns the request ID as a log attribute.
func RequestIDAttr(ctx context.Context) slog.Attr {
	return slog.String("request_id", RequestIDFromContext(ctx))
}

// RequestIDConfig configures RequestIDMiddleware.
type RequestIDConfig struct {
	// HeaderName defaults to DefaultRequestIDHeader.
	HeaderName string

	// Generate returns a new ID. Defaults to a random UUID.
	Generate func(r *http.Request) string

	// TrustIncoming reuses an ID sent by the client.
	TrustIncoming bool
}

// RequestIDMiddleware assigns every request an ID, exposes it on the
// response header, and stores it in the request context.
func RequestIDMiddleware(cfg RequestIDConfig) MiddlewareFunc {
	header := cfg.HeaderName
	if header == "" {
		header = DefaultRequestIDHeader
	}
	generate := cfg.Generate
	if generate == nil {
		generate = NewUUID
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cfg.TrustIncoming {
				id = r.Header.Get(header)
			}
			if id == "" {
				id = generate(r)
			}
			if id != "" {
				r.Header.Set(header, id)
				w.Header().Set(header, id)
				r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewUUID returns a random (version 4) UUID.
func NewUUID(_ *http.Request) string {
	return uuid.NewString()
}

// NewUUIDv7 returns a time-ordered (version 7) UUID.
func NewUUIDv7(_ *http.Request) string {
	return uuid.Must(uuid.NewV7()).String()
}
