// Package cli implements the lineage command-line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

func sysError(format string, args ...any) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, args...)}
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	depth     int
	logLevel  string
	jsonMode  bool
}

// NewRootCmd creates the top-level "lineage" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "lineage",
		Short: "Browse family relationships in a genealogy store",
		Long: "lineage resolves partners, children, parents and dated events from a\n" +
			"genealogy store and assembles ancestor trees around a union.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&flags.dataDir, "data-dir", "", "data directory (default: .lineage)")
	pf.StringVar(&flags.backend, "backend", "", "storage backend: sqlite, jsonl or yaml (overrides config)")
	pf.IntVar(&flags.depth, "depth", 0, "tree depth, 3 or 4 (overrides config)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(flags),
		newInitCmd(flags),
		newImportCmd(flags),
		newExportCmd(flags),
		newPartnersCmd(flags),
		newChildrenCmd(flags),
		newParentsCmd(flags),
		newUnionsCmd(flags),
		newAdoptedCmd(flags),
		newDatesCmd(flags),
		newTreeCmd(flags),
		newBrowseCmd(flags),
		newServeCmd(flags),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lineage:", err)
		os.Exit(exitCode(err))
	}
}
