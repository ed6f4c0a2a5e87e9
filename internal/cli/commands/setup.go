package commands

import (
	"fmt"
	"os"

	"github.com/mcpmon/mcpmon/internal/cli/setup"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// executeSetup implements `mcpmon setup <client-or-path> [--list]`,
// spec.md §6's setup helper. Its flag set (one positional argument, one
// boolean flag) is small and fixed, unlike the default run path, so it's
// built as a real cobra.Command — grounded on the teacher's
// internal/cli/commands tree, just scoped to a single subcommand instead
// of the teacher's full multi-command daemon client.
func executeSetup(args []string) int {
	var list bool

	cmd := &cobra.Command{
		Use:           "setup <client-or-config-path>",
		Short:         "wrap an MCP client's stdio servers with mcpmon",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			return runSetup(cmdArgs[0], list)
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "preview changes without writing them")
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func runSetup(clientOrPath string, list bool) error {
	mcpmonPath, err := os.Executable()
	if err != nil {
		return err
	}

	home, _ := os.UserHomeDir()
	if path, ok := setup.Paths(home, os.Getenv("APPDATA"))[clientOrPath]; ok {
		clientOrPath = path
	}

	if list {
		rows, err := setup.Preview(clientOrPath, mcpmonPath)
		if err != nil {
			return err
		}
		table := tablewriter.NewTable(os.Stdout, tablewriter.WithHeader([]string{"Server", "Command", "Status"}))
		for _, row := range rows {
			table.Append([]string{row.Name, row.Command, row.Status})
		}
		table.Render()
		return nil
	}

	res, err := setup.Rewrite(clientOrPath, mcpmonPath)
	if err != nil {
		return err
	}

	fmt.Printf("backed up %s to %s\n", clientOrPath, res.BackupPath)
	printNames("wrapped", res.Wrapped)
	printNames("skipped (not stdio)", res.Skipped)
	printNames("already wrapped", res.AlreadyOK)
	return nil
}

func printNames(label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Printf("%s:", label)
	for _, n := range names {
		fmt.Printf(" %s", n)
	}
	fmt.Println()
}
