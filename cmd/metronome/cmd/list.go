package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [suite ...]",
		Short: "List the built-in benchmarks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			suites, err := buildSuites(args)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 1, 1, ' ', 0)
			fmt.Fprintln(w, "BENCHMARK\tKIND")
			for _, s := range suites {
				for _, b := range s.Benchmarks() {
					fmt.Fprintf(w, "%s\t%s\n", b.Name, b.Kind())
				}
			}
			return w.Flush()
		},
	}
	return cmd
}
