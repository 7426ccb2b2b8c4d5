package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docflow/pkg/docflow"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docflow version",
		Args:  exactArgs(0),
		// Needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "docflow v%s\nmodule: %s\n", docflow.Version, docflow.ModulePath)
			return nil
		},
	}
}
