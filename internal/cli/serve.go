package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lineage/internal/metrics"
	"github.com/mesh-intelligence/lineage/internal/relation"
	"github.com/mesh-intelligence/lineage/internal/server"
	"github.com/mesh-intelligence/lineage/internal/session"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve relationship queries and browsing sessions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m := metrics.New(reg)

			e, err := flags.openEngine(cmd, engineHooks{
				Observer: func(i relation.Inconsistency) {
					m.IncrementInconsistency(string(i.Kind))
				},
				OnBuild: m.TreeBuilt,
			})
			if err != nil {
				return err
			}
			if addr == "" {
				addr = e.settings.addr
			}

			sessions := session.NewRegistry(e.rel, e.builder,
				session.WithLogger(e.logger),
				session.WithMetrics(m),
			)
			srv := server.New(e.rel, e.builder, sessions,
				server.WithLogger(e.logger),
				server.WithGatherer(reg),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.Run(ctx, addr); err != nil {
				return sysError("serve: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: addr from config)")
	return cmd
}
