package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modir/modir/internal/directory"
)

var ciCmd = &cobra.Command{
	Use:   "ci",
	Short: "Check that stored registry hashes are up to date",
	Long: `Verify the content hashes stored in the registry against freshly computed
ones. A mismatch means the registry or its export file was edited without
running clean, which is the signal CI uses to fail a change.`,
	RunE: runCI,
}

func init() {
	rootCmd.AddCommand(ciCmd)
}

func runCI(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	d, err := directory.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}

	var exportContent []byte
	if d.Export != nil && d.Export.Path != "" {
		exportContent, err = os.ReadFile(d.Export.Path)
		if err != nil {
			return fmt.Errorf("reading export file: %w", err)
		}
	}

	mismatches, err := directory.CheckHashes(d, exportContent)
	if err != nil {
		return err
	}
	if len(mismatches) > 0 {
		for _, m := range mismatches {
			fmt.Fprintln(cmd.ErrOrStderr(), m)
		}
		return fmt.Errorf("registry hashes are stale, run `modir clean`")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Hashes are up to date.")
	return nil
}
