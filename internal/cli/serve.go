package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gymleadhub/atlas-agent/internal/server"
	"github.com/gymleadhub/atlas-agent/internal/tools"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service and the follow-up scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			// Keep the tools table in step with the compiled registry on boot.
			if err := tools.SyncToDB(ctx, a.registry, a.db); err != nil {
				a.logger.Warn("tool sync failed", "error", err)
			}

			if a.cfg.Scheduler.Enabled {
				a.runner.Start()
				defer a.runner.Stop()
			}

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			srv := server.New(a.orch, a.runner, a.registry, a.logger)
			return srv.Start(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides ATLAS_HTTP_ADDR)")
	return cmd
}
