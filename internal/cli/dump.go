package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDumpCommand(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the specification without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts.cfg, opts.logger, opts.docStrings)
			if err != nil {
				return err
			}
			spec := a.docs.Specification()

			var data []byte
			switch format {
			case "json":
				data, err = json.MarshalIndent(spec, "", "  ")
				data = append(data, '\n')
			case "yaml":
				data, err = yaml.Marshal(spec)
			default:
				return fmt.Errorf("unknown format %q: want json or yaml", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml")
	return cmd
}
