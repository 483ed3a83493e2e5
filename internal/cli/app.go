package cli

import (
	"context"
	"log/slog"

	"github.com/sangyongchoi/armeria/config"
	"github.com/sangyongchoi/armeria/docs"
	"github.com/sangyongchoi/armeria/docstring"
	"github.com/sangyongchoi/armeria/internal/sample"
	"github.com/sangyongchoi/armeria/server"
)

// app is a built server and the documentation service it hosts.
type app struct {
	server *server.Server
	docs   *docs.DocService
}

// newApp mounts the sample service under cfg.Server.APIPath and the
// specification under cfg.Server.DocsPath. Building the server also builds
// the specification, so a bad overlay fails here.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, docPatterns []string) (*app, error) {
	b := sample.NewDocServiceBuilder().Logger(logger)
	if err := cfg.Docs.Apply(b); err != nil {
		return nil, err
	}
	if len(docPatterns) > 0 {
		comments, err := docstring.Extract(ctx, docPatterns...)
		if err != nil {
			return nil, err
		}
		logger.Debug("doc comments loaded", slog.Int("count", len(comments)))
		b.DocStrings(comments)
	}

	ds, err := b.Build()
	if err != nil {
		return nil, err
	}

	mws, err := cfg.Server.Middlewares()
	if err != nil {
		return nil, err
	}

	srv, err := server.NewBuilder().
		Logger(logger).
		Use(mws...).
		H2C(cfg.Server.H2C).
		ShutdownTimeout(cfg.Server.ShutdownTimeout).
		AnnotatedService(cfg.Server.APIPath, sample.NewService()).
		ServiceUnder(cfg.Server.DocsPath, ds).
		Build()
	if err != nil {
		return nil, err
	}
	return &app{server: srv, docs: ds}, nil
}
