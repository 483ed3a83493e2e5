package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sangyongchoi/armeria/annotated"
	"github.com/sangyongchoi/armeria/docs"
	"github.com/sangyongchoi/armeria/middleware"
	"github.com/sangyongchoi/armeria/route"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// DefaultShutdownTimeout bounds graceful shutdown in Serve.
const DefaultShutdownTimeout = 10 * time.Second

type annotatedMount struct {
	prefix string
	svc    *annotated.Service
}

type handlerMount struct {
	spec  string
	strip string
	h     http.Handler
}

// Builder assembles a Server.
//
//	srv, err := server.NewBuilder().
//	    AnnotatedService("/api", users).
//	    ServiceUnder("/docs", docService).
//	    Build()
type Builder struct {
	annotated   []annotatedMount
	handlers    []handlerMount
	middlewares []middleware.MiddlewareFunc
	logger      *slog.Logger
	defaults    bool
	h2c         bool

	shutdownTimeout   time.Duration
	readHeaderTimeout time.Duration
}

// NewBuilder returns a builder with the default middleware enabled.
func NewBuilder() *Builder {
	return &Builder{
		defaults:          true,
		shutdownTimeout:   DefaultShutdownTimeout,
		readHeaderTimeout: 10 * time.Second,
	}
}

// AnnotatedService mounts every method of svc under prefix.
func (b *Builder) AnnotatedService(prefix string, svc *annotated.Service) *Builder {
	b.annotated = append(b.annotated, annotatedMount{prefix: prefix, svc: svc})
	return b
}

// Service binds h to a path specification, for every verb.
func (b *Builder) Service(pathSpec string, h http.Handler) *Builder {
	b.handlers = append(b.handlers, handlerMount{spec: pathSpec, h: h})
	return b
}

// ServiceUnder binds h to every path under prefix. The prefix is stripped
// before h sees the request.
func (b *Builder) ServiceUnder(prefix string, h http.Handler) *Builder {
	prefix = strings.TrimRight(prefix, "/")
	b.handlers = append(b.handlers, handlerMount{spec: route.MarkerPrefix + prefix + "/", strip: prefix, h: h})
	return b
}

// Use appends middleware applied to every request, after the defaults.
func (b *Builder) Use(mw ...middleware.MiddlewareFunc) *Builder {
	b.middlewares = append(b.middlewares, mw...)
	return b
}

// Logger sets the logger. Defaults to slog.Default().
func (b *Builder) Logger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// DefaultMiddleware toggles the recovery, request ID, and access log
// middleware.
func (b *Builder) DefaultMiddleware(enabled bool) *Builder {
	b.defaults = enabled
	return b
}

// H2C enables HTTP/2 over cleartext connections.
func (b *Builder) H2C(enabled bool) *Builder {
	b.h2c = enabled
	return b
}

// ShutdownTimeout bounds graceful shutdown in Serve.
func (b *Builder) ShutdownTimeout(d time.Duration) *Builder {
	b.shutdownTimeout = d
	return b
}

// Build routes every service and initializes every handler implementing
// docs.Initializer with the annotated services. Any failure aborts the
// build.
func (b *Builder) Build() (*Server, error) {
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	rt := &router{
		notFound:         http.NotFoundHandler(),
		methodNotAllowed: http.HandlerFunc(defaultMethodNotAllowed),
	}

	var sources []docs.Source
	for _, am := range b.annotated {
		ms, err := am.svc.Mount(am.prefix)
		if err != nil {
			return nil, fmt.Errorf("server: mount %s: %w", am.svc.Name(), err)
		}
		for _, r := range ms.Routes() {
			rt.entries = append(rt.entries, &entry{binding: r.Binding, methods: r.HTTPMethods, handler: r.Handler})
		}
		sources = append(sources, ms)
	}

	var initializers []docs.Initializer
	for _, hm := range b.handlers {
		mapping, err := route.Parse(hm.spec)
		if err != nil {
			return nil, fmt.Errorf("server: service %q: %w", hm.spec, err)
		}
		h := hm.h
		if hm.strip != "" {
			h = http.StripPrefix(hm.strip, h)
		}
		rt.entries = append(rt.entries, &entry{binding: route.Binding{Mapping: mapping}, handler: h})
		if in, ok := hm.h.(docs.Initializer); ok {
			initializers = append(initializers, in)
		}
	}

	for _, in := range initializers {
		if err := in.Initialize(sources); err != nil {
			return nil, fmt.Errorf("server: initialize: %w", err)
		}
	}

	var chain []middleware.MiddlewareFunc
	if b.defaults {
		chain = append(chain,
			middleware.RecoveryMiddleware(middleware.RecoveryConfig{Logger: logger}),
			middleware.RequestIDMiddleware(middleware.RequestIDConfig{}),
			middleware.LoggingMiddleware(middleware.LoggingConfig{Logger: logger}),
		)
	}
	chain = append(chain, b.middlewares...)

	var handler http.Handler = middleware.Chain(chain...)(rt)
	if b.h2c {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}

	logger.Info("server built",
		slog.Int("routes", len(rt.entries)),
		slog.Int("services", len(sources)))

	return &Server{
		handler:           handler,
		logger:            logger,
		sources:           sources,
		shutdownTimeout:   b.shutdownTimeout,
		readHeaderTimeout: b.readHeaderTimeout,
	}, nil
}

// Server serves the built routes.
type Server struct {
	handler http.Handler
	logger  *slog.Logger
	sources []docs.Source

	shutdownTimeout   time.Duration
	readHeaderTimeout time.Duration
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Sources returns the mounted annotated services.
func (s *Server) Sources() []docs.Source {
	return append([]docs.Source{}, s.sources...)
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is done, then shuts down
// gracefully. The listener is closed on return.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
