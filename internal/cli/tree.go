package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/internal/tree"
	"github.com/mesh-intelligence/lineage/pkg/types"
)

func newTreeCmd(flags *rootFlags) *cobra.Command {
	var person, partner int64
	cmd := &cobra.Command{
		Use:   "tree [union-id]",
		Short: "Print the ancestor tree around a union",
		Long: "Build the ancestor tree of a union. Without a union id the tree is\n" +
			"built around --person (and optionally --partner) as a synthetic family.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			union := types.NoID
			if len(args) == 1 {
				id, err := parseIDArg("union id", args[0])
				if err != nil {
					return err
				}
				union = id
			}
			if !union.Valid() && person <= 0 {
				return userError("tree needs a union id or --person")
			}
			e, err := flags.openEngine(cmd, engineHooks{})
			if err != nil {
				return err
			}
			t := e.builder.Build(union, types.ID(person), types.ID(partner))
			if flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), t)
			}
			return tree.Render(cmd.OutOrStdout(), t, e.namer)
		},
	}
	cmd.Flags().Int64Var(&person, "person", 0, "first partner of the focal family")
	cmd.Flags().Int64Var(&partner, "partner", 0, "second partner of the focal family")
	return cmd
}
