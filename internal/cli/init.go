package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/internal/store"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	var noSeed bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize lineage storage",
		Long: "Create the configuration and data directories, initialize the storage\n" +
			"backend and seed the built-in event types and calendars.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, logger, err := flags.commandLogger(cmd)
			if err != nil {
				return err
			}
			loaded, err := loadStore(s.config, logger)
			if err != nil {
				return err
			}
			st, ok := loaded.(*store.Store)
			if !ok {
				return sysError("backend %s returned an unsupported store", s.config.Backend)
			}
			added := 0
			if !noSeed {
				added = store.SeedVocabulary(st)
			}
			if _, err := saveStore(s.config, st, logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lineage initialized: %s backend in %s (%d rows seeded)\n",
				s.config.Backend, s.config.DataDir, added)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noSeed, "no-seed", false, "do not seed built-in event types and calendars")
	return cmd
}
