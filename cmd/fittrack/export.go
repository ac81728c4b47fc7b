package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sakif/fittrack/internal/model"
)

func (c *cli) newExportCmd() *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export <username>",
		Short: "Export a user's stats, routes and activities",
		Long: `Export everything stored for a user.

EXAMPLES:

  fittrack export alice                          # YAML to stdout
  fittrack export alice --format json -o a.json  # JSON to a file`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unknown format: %s (use yaml or json)", format)
			}

			app, err := c.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			data, err := app.Export.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			b, err := encodeExport(data, format)
			if err != nil {
				return err
			}

			if out == "" {
				_, err := cmd.OutOrStdout().Write(b)
				return err
			}
			if err := os.WriteFile(out, b, 0o600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Exported to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func encodeExport(data *model.Export, format string) ([]byte, error) {
	if format == "json" {
		b, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json: %w", err)
		}
		return append(b, '\n'), nil
	}
	b, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding yaml: %w", err)
	}
	return b, nil
}
