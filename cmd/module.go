package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/modir/modir/internal/directory"
)

var (
	moduleListFormat string
	moduleAddParent  string
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Inspect and edit registry modules",
}

var moduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all modules and submodules",
	Long: `List every module and submodule in declaration order. The table shows
effective values, so submodules display inherited owners and patterns.

Examples:
  modir module list               # Table output
  modir module list -f json       # Machine-readable output
  modir module list -f yaml`,
	RunE: runModuleList,
}

var moduleShowCmd = &cobra.Command{
	Use:   "show <machine-name>",
	Short: "Show one module as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runModuleShow,
}

var moduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a module interactively",
	Long: `Add a module by answering prompts for its name, description, include and
exclude patterns, and owner and peer Bugzilla IDs. The machine name is
derived from the display name. With --parent the module is added as a
submodule of an existing one.

Run clean afterwards to resolve the new owner identities.`,
	RunE: runModuleAdd,
}

func init() {
	rootCmd.AddCommand(moduleCmd)
	moduleCmd.AddCommand(moduleListCmd)
	moduleCmd.AddCommand(moduleShowCmd)
	moduleCmd.AddCommand(moduleAddCmd)

	moduleListCmd.Flags().StringVarP(&moduleListFormat, "format", "f", "table", "output format (table, json, yaml)")
	moduleAddCmd.Flags().StringVar(&moduleAddParent, "parent", "", "machine name of the parent module")
}

// moduleRow is the flattened, effective view of one module used by list
// output in every format.
type moduleRow struct {
	MachineName string   `json:"machine_name" yaml:"machine_name"`
	Name        string   `json:"name" yaml:"name"`
	Parent      string   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Includes    []string `json:"includes" yaml:"includes"`
	Owners      []int    `json:"owners" yaml:"owners"`
	Peers       []int    `json:"peers,omitempty" yaml:"peers,omitempty"`
}

func runModuleList(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	d, err := directory.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}

	rows := make([]moduleRow, 0, len(d.Modules))
	for _, entry := range d.Flatten() {
		rows = append(rows, moduleRow{
			MachineName: entry.Module.MachineName,
			Name:        entry.Module.Name,
			Parent:      entry.ParentName(),
			Includes:    entry.Includes(),
			Owners:      refIDs(entry.Owners()),
			Peers:       refIDs(entry.Peers()),
		})
	}

	out := cmd.OutOrStdout()
	switch moduleListFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "MACHINE NAME\tNAME\tPARENT\tINCLUDES\tOWNERS")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				row.MachineName, row.Name, row.Parent,
				strings.Join(row.Includes, ","), joinIDs(row.Owners))
		}
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format: %s", moduleListFormat)
	}
}

func runModuleShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}

	d, err := directory.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}

	m, ok := d.FindModule(args[0])
	if !ok {
		return fmt.Errorf("module %q not found", args[0])
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

func runModuleAdd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	d, err := directory.Load(cfg.RegistryFile)
	if err != nil {
		return err
	}

	prompter := &prompter{
		in:  bufio.NewScanner(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
	}

	name, err := prompter.ask("Module name")
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("module name is required")
	}

	m := &directory.Module{
		MachineName: directory.GenerateMachineName(name),
		Name:        name,
	}
	if _, ok := d.FindModule(m.MachineName); ok {
		return fmt.Errorf("module %q already exists", m.MachineName)
	}

	if m.Description, err = prompter.ask("Description"); err != nil {
		return err
	}
	if m.Includes, err = prompter.askList("Include patterns (comma-separated)"); err != nil {
		return err
	}
	if m.Excludes, err = prompter.askList("Exclude patterns (comma-separated)"); err != nil {
		return err
	}
	if m.Owners, err = prompter.askRefs("Owner Bugzilla IDs (comma-separated)"); err != nil {
		return err
	}
	if m.Peers, err = prompter.askRefs("Peer Bugzilla IDs (comma-separated)"); err != nil {
		return err
	}

	if err := d.AddModule(m, moduleAddParent); err != nil {
		return err
	}
	if err := directory.Save(cfg.RegistryFile, d); err != nil {
		return err
	}

	logger.Debug("module added", "machine_name", m.MachineName, "parent", moduleAddParent)
	fmt.Fprintf(cmd.OutOrStdout(), "Added module %s. Run `modir clean` to resolve identities.\n", m.MachineName)
	return nil
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *prompter) askList(label string) ([]string, error) {
	line, err := p.ask(label)
	if err != nil || line == "" {
		return nil, err
	}
	var items []string
	for _, item := range strings.Split(line, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items, nil
}

func (p *prompter) askRefs(label string) ([]directory.PersonRef, error) {
	items, err := p.askList(label)
	if err != nil {
		return nil, err
	}
	var refs []directory.PersonRef
	for _, item := range items {
		id, err := strconv.Atoi(item)
		if err != nil {
			return nil, fmt.Errorf("invalid Bugzilla ID %q", item)
		}
		refs = append(refs, directory.PersonRef{BMOID: id})
	}
	return refs, nil
}

func refIDs(refs []directory.PersonRef) []int {
	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.BMOID)
	}
	return ids
}

func joinIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}
