package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/modir/modir/internal/directory"
	"github.com/modir/modir/internal/logging"
	"github.com/modir/modir/internal/validate"
)

var (
	validateFormat string
	validateWatch  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the registry for structural problems",
	Long: `Validate the module registry: duplicate machine names, missing required
fields, owner or peer references without a person record, modules without
owners, and glob patterns that do not compile.

All issues are collected and reported in one pass. Error-severity issues
make the command exit non-zero; warnings are printed but do not.

Examples:
  modir validate                  # Validate once
  modir validate -f json          # Machine-readable output
  modir validate --watch          # Re-validate whenever the file changes`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "output format (text, json)")
	validateCmd.Flags().BoolVarP(&validateWatch, "watch", "w", false, "re-run validation when the registry file changes")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	if validateWatch {
		return watchValidate(cmd, cfg.RegistryFile, logger)
	}
	return validateOnce(cmd, cfg.RegistryFile)
}

func validateOnce(cmd *cobra.Command, path string) error {
	d, err := directory.Load(path)
	if err != nil {
		return err
	}

	issues := validate.Validate(d)
	if err := printIssues(cmd, issues); err != nil {
		return err
	}

	if validate.HasErrors(issues) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

type issueReport struct {
	Kind        string `json:"kind"`
	Severity    string `json:"severity"`
	MachineName string `json:"machine_name,omitempty"`
	Message     string `json:"message"`
}

func printIssues(cmd *cobra.Command, issues []validate.Issue) error {
	out := cmd.OutOrStdout()

	switch validateFormat {
	case "json":
		reports := make([]issueReport, 0, len(issues))
		for _, issue := range issues {
			reports = append(reports, issueReport{
				Kind:        string(issue.Kind),
				Severity:    issue.Severity.String(),
				MachineName: issue.MachineName,
				Message:     issue.Message,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	case "text":
		if len(issues) == 0 {
			fmt.Fprintln(out, "Registry is valid.")
			return nil
		}
		for _, issue := range issues {
			fmt.Fprintln(out, issue.String())
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", validateFormat)
	}
}

// watchValidate re-runs validation on every write to the registry file
// until interrupted. Watch the containing directory rather than the file:
// editors replace files on save, which breaks direct file watches.
func watchValidate(cmd *cobra.Command, path string, logger *logging.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := func() {
		if err := validateOnce(cmd, path); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
		}
	}
	report()

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("registry changed, re-validating", "event", event.Op.String())
			report()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error(err, "watch error")
		}
	}
}
