package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/pkg/lineage"
)

func newVersionCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lineage version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version": lineage.Version,
					"module":  lineage.ModulePath,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lineage v%s\nmodule: %s\n", lineage.Version, lineage.ModulePath)
			return nil
		},
	}
}
