package cmd

import (
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Populated at release build time via -ldflags.
var (
	releaseVersion = "dev"
	gitCommit      = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 1, 1, 1, ' ', 0)
			fmt.Fprintf(w, "Version:\t%s\n", releaseVersion)
			fmt.Fprintf(w, "Commit:\t%s\n", gitCommit)
			fmt.Fprintf(w, "Go version:\t%s\n", runtime.Version())
			return w.Flush()
		},
	}
}
