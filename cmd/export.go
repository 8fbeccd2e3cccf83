package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modir/modir/internal/directory"
	"github.com/modir/modir/internal/export"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the registry as documentation",
	Long: `Render the module registry as a human-readable document in Markdown or
reStructuredText. The format defaults to the registry's own export settings
when present, then to the configured default.

Examples:
  modir export                    # Print using the default format
  modir export -f md              # Markdown to stdout
  modir export -f rst -o docs/owners.rst`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "output format (md, rst)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	d, err := directory.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}

	format := exportFormat
	if format == "" && d.Export != nil {
		format = d.Export.Format
	}
	if format == "" {
		format = cfg.Export.Format
	}

	content, err := export.Render(d, format, export.Options{
		SearchfoxURL: cfg.Export.SearchfoxURL,
		PeopleURL:    cfg.Export.PeopleURL,
		ReviewURL:    cfg.Export.ReviewURL,
	})
	if err != nil {
		return err
	}
	logger.Debug("rendered export", "format", format, "bytes", len(content))

	if exportOutput != "" {
		return os.WriteFile(exportOutput, content, 0o644)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(content))
	return nil
}
