// Package cmd provides the modir command-line interface.
//
// Settings resolve from flags, MODIR_-prefixed environment variables and an
// optional ~/.modir/settings.yaml overrides file, in that order of
// precedence. The registry file itself defaults to modir.yaml in the
// current directory and can be pointed elsewhere with the persistent
// --path flag.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/modir/modir/internal/config"
	"github.com/modir/modir/internal/logging"
)

var (
	debugFlag    bool
	registryPath string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "modir",
	Short: "Manage a module ownership registry for a source tree",
	Long: `modir maintains a YAML registry that maps file path patterns to owning
modules, with owners and peers resolved against Bugzilla identities.

Quick start:
  modir init                      Initialize a registry in this repo
  modir module list               List all modules
  modir module add                Add a module interactively
  modir validate                  Check the registry for problems
  modir query src/foo.c           Find the module that owns a path
  modir clean                     Normalize the registry
  modir export                    Render the registry as documentation`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Accept underscore spellings for multi-word flags, matching the
	// registry's snake_case key style.
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVarP(&registryPath, "path", "p", "", "path of the registry file (default modir.yaml, or MODIR_REGISTRY_FILE)")
}

// setup loads process settings and builds the root logger, applying flag
// overrides on top.
func setup() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if debugFlag {
		cfg.Debug = true
	}
	if registryPath != "" {
		cfg.RegistryFile = registryPath
	}
	logger := logging.New(&logging.Config{Debug: cfg.Debug})
	return cfg, logger, nil
}
