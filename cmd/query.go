package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modir/modir/internal/directory"
	"github.com/modir/modir/internal/resolve"
)

var queryCmd = &cobra.Command{
	Use:   "query <path>...",
	Short: "Find the module that owns each given path",
	Long: `Resolve one or more paths against the module registry. Each result is
printed as <path>:<machine_name>, or <path>:unowned when no module covers
the path. A path covered by overlapping sibling modules prints every
candidate and makes the command exit non-zero, since overlap is a
configuration error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	d, err := directory.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}

	resolver := resolve.New(d)
	results := resolver.ResolveAll(args)
	logger.Debug("resolved paths", "count", len(results))

	ambiguous := 0
	for _, result := range results {
		fmt.Fprintln(cmd.OutOrStdout(), formatResult(result))
		if result.Kind == resolve.Ambiguous {
			ambiguous++
		}
	}

	if ambiguous > 0 {
		return fmt.Errorf("%d path(s) matched overlapping modules", ambiguous)
	}
	return nil
}

// formatResult renders one resolution as <path>:<owner>. Ambiguous paths
// list every candidate in declaration order.
func formatResult(r resolve.Result) string {
	switch r.Kind {
	case resolve.Owned:
		return fmt.Sprintf("%s:%s", r.Path, r.Module)
	case resolve.Ambiguous:
		return fmt.Sprintf("%s:%s", r.Path, strings.Join(r.Candidates, ","))
	default:
		return fmt.Sprintf("%s:unowned", r.Path)
	}
}
