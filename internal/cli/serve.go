package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCommand(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts.cfg, opts.logger, opts.docStrings)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = opts.cfg.Server.Addr
			}

			opts.logger.Info("server starting",
				slog.String("addr", addr),
				slog.String("api", opts.cfg.Server.APIPath),
				slog.String("docs", opts.cfg.Server.DocsPath+"/specification.json"))
			return a.server.Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}
