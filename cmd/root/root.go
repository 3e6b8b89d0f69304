package root

import (
	"github.com/spf13/cobra"

	"github.com/xs2maverick/flint/cmd/dcmst"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flint",
		Short: "Flint is a constraint-programming solver over integer and graph variables",
		Long: `A constraint-programming solver written in Go: backtrackable domains,
event-driven propagation and branch-and-bound search over integer and
graph variables.`,
	}

	// add sub-commands
	rootCmd.AddCommand(dcmst.NewDcmstCommand())

	return rootCmd
}
