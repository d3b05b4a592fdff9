package driver

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ptest"
)

// NewListCommand creates the list command.
func NewListCommand(reg *ptest.Registry, rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [filter]",
		Short: "List registered tests",
		Long: `List the registered tests in the order they would run.

With a filter, only the tests whose names contain it are listed. Nothing is
executed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTests(reg, rootOpts, args, cmd)
		},
	}
}

func listTests(reg *ptest.Registry, opts *RootOptions, args []string, cmd *cobra.Command) error {
	entries := reg.Entries()
	if len(args) == 1 {
		entries = reg.Match(args[0])
	}

	if opts.Format == "json" {
		tests := make([]any, len(entries))
		for i, e := range entries {
			tests[i] = map[string]any{
				"index":        e.Index(),
				"name":         e.Name,
				"kind":         e.Kind.String(),
				"has_teardown": e.HasTeardown(),
			}
		}
		return opts.formatter(cmd).Success(map[string]any{
			"tests": tests,
			"total": len(entries),
		})
	}

	w := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(w, "%3d  %-8s  %s\n", e.Index(), e.Kind, e.Name)
	}
	fmt.Fprintf(w, "\n%d test(s)\n", len(entries))
	return nil
}
