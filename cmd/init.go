package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modir/modir/internal/directory"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a module registry in this repository",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	d, err := directory.Init(cfg.RegistryFile)
	if errors.Is(err, directory.ErrAlreadyInitialized) {
		fmt.Fprintf(cmd.OutOrStdout(), "Registry already exists at %s\n", cfg.RegistryFile)
		return nil
	}
	if err != nil {
		return err
	}

	logger.Debug("registry initialized", "path", cfg.RegistryFile, "repo", d.Repo)
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized registry for %q at %s\n", d.Repo, cfg.RegistryFile)
	return nil
}
