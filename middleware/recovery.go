package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// RecoveryConfig configures RecoveryMiddleware.
type RecoveryConfig struct {
	// Logger receives one error record per panic. Defaults to slog.Default().
	Logger *slog.Logger

	// Stack adds the goroutine stack to the log record.
	Stack bool
}

// RecoveryMiddleware turns a handler panic into a 500 response.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func RecoveryMiddleware(cfg RecoveryConfig) MiddlewareFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}

				attrs := []any{
					slog.Any("panic", rv),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					RequestIDAttr(r.Context()),
				}
				if cfg.Stack {
					attrs = append(attrs, slog.String("stack", string(debug.Stack())))
				}
				logger.ErrorContext(r.Context(), "handler panic", attrs...)

				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
