package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gymleadhub/atlas-agent/internal/tools"
)

func newSyncToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-tools",
		Short: "Project the compiled tool registry into the tools table",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			if err := tools.SyncToDB(cmd.Context(), a.registry, a.db); err != nil {
				return err
			}
			for _, tool := range a.registry.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", tool.Category(), tool.Name())
			}
			return nil
		},
	}
}
