package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modir/modir/internal/bugzilla"
	"github.com/modir/modir/internal/clean"
	"github.com/modir/modir/internal/config"
	"github.com/modir/modir/internal/directory"
	"github.com/modir/modir/internal/export"
)

var cleanDryRun bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Normalize the registry",
	Long: `Normalize the module registry: resolve owner and peer identities through
Bugzilla, generate missing machine names, drop person records no module
references, and sort modules and people deterministically.

Individual identity lookup failures are reported but do not abort the run;
the affected records keep their bare IDs. When the registry configures an
export, the export file and its hash are refreshed too.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "n", false, "report changes without writing the registry")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	d, err := directory.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}

	lookup := bugzilla.NewClient(cfg.Bugzilla.URL, cfg.Bugzilla.APIKey)
	result, err := clean.Clean(cmd.Context(), d, lookup, clean.Options{
		Workers: cfg.Bugzilla.Workers,
		Timeout: cfg.Bugzilla.Timeout,
		Logger:  logger.WithComponent("clean"),
	})
	if err != nil {
		return err
	}

	for _, failure := range result.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not resolve bmo_id %d: %v\n", failure.BMOID, failure.Err)
	}

	if cleanDryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry run, registry not written.")
		return nil
	}

	if err := writeExport(result.Directory, cfg); err != nil {
		return err
	}
	if err := directory.Save(cfg.RegistryFile, result.Directory); err != nil {
		return err
	}

	logger.Debug("registry cleaned", "path", cfg.RegistryFile, "lookup_failures", len(result.Failures))
	fmt.Fprintf(cmd.OutOrStdout(), "Cleaned registry at %s\n", cfg.RegistryFile)
	return nil
}

// writeExport refreshes the configured export file and its stored hash.
// Registries without export settings are left alone.
func writeExport(d *directory.Directory, cfg *config.Config) error {
	if d.Export == nil || d.Export.Format == "" {
		return nil
	}

	content, err := export.Render(d, d.Export.Format, export.Options{
		SearchfoxURL: cfg.Export.SearchfoxURL,
		PeopleURL:    cfg.Export.PeopleURL,
		ReviewURL:    cfg.Export.ReviewURL,
	})
	if err != nil {
		return err
	}

	if d.Hashes == nil {
		d.Hashes = &directory.Hashes{}
	}
	d.Hashes.Export = directory.ExportHash(content)

	if d.Export.Path != "" {
		if err := os.WriteFile(d.Export.Path, content, 0o644); err != nil {
			return fmt.Errorf("writing export to %s: %w", d.Export.Path, err)
		}
	}
	return nil
}
