// Package cli provides the command-line interface of armeria-docs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/sangyongchoi/armeria/config"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configFile string
	envFile    string
	docStrings []string

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand returns the armeria-docs command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "armeria-docs",
		Short: "Serve annotated services and their specification",
		Long: `armeria-docs hosts the demo services and a documentation endpoint that
describes them.

Example:
  armeria-docs serve                        # listen on :8080
  armeria-docs serve -c armeria.yaml        # use a config file
  armeria-docs dump -f yaml                 # print the specification`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default: armeria.yaml)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")
	flags.StringSliceVar(&opts.docStrings, "docstrings", nil, "package patterns to read doc comments from")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newDumpCommand(opts))
	return cmd
}

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

func (o *options) load(cmd *cobra.Command) error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", o.envFile, err)
		}
	}

	cfg, err := config.Load(o.configFile)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = cfg.Log.NewLogger(cmd.ErrOrStderr())
	return nil
}
