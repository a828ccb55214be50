// Package cli wires the cobra command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "atlas-agent",
		Short:         "AI agent orchestration service for gym operations",
		Long:          "atlas-agent runs the AI assistant core: the tool-calling loop, the gym tool registry, the follow-up scheduler, and the HTTP control surface.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSyncToolsCmd())
	cmd.AddCommand(newCheckTasksCmd())
	return cmd
}
