package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/pkg/types"
)

// fileConfig describes a fixture path as a backend config. A path ending in
// .yaml or .yml is a YAML fixture, anything else a JSONL directory, unless
// format names one explicitly.
func fileConfig(path, format string) (types.Config, error) {
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			format = types.BackendYAML
		default:
			format = types.BackendJSONL
		}
	}
	if format != types.BackendYAML && format != types.BackendJSONL {
		return types.Config{}, userError("unsupported format %q: use yaml or jsonl", format)
	}
	return types.Config{Backend: format, DataDir: path}, nil
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Replace the configured store with a YAML or JSONL fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return userError("import source: %w", err)
			}
			src, err := fileConfig(args[0], format)
			if err != nil {
				return err
			}
			s, logger, err := flags.commandLogger(cmd)
			if err != nil {
				return err
			}
			st, err := loadStore(src, logger)
			if err != nil {
				return err
			}
			sum, err := saveStore(s.config, st, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows in %d tables into %s\n", sum.rows, sum.tables, s.config.Backend)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "fixture format: yaml or jsonl (default: by extension)")
	return cmd
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write the configured store to a YAML or JSONL fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst, err := fileConfig(args[0], format)
			if err != nil {
				return err
			}
			s, logger, err := flags.commandLogger(cmd)
			if err != nil {
				return err
			}
			st, err := loadStore(s.config, logger)
			if err != nil {
				return err
			}
			sum, err := saveStore(dst, st, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows in %d tables to %s\n", sum.rows, sum.tables, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "fixture format: yaml or jsonl (default: by extension)")
	return cmd
}
