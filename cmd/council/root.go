package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "council",
	Short: "council - AI marketing council with debate-driven campaigns",
	Long: `council runs a panel of persona-driven marketing agents through a
propose/critique/arbitrate loop, generates the winning post, simulates
its engagement, and adapts each agent's voting weight from the result.

State lives in a .council directory under the current project.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

func workingDir() (string, error) {
	if dir := os.Getenv("COUNCIL_PROJECT_DIR"); dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashCmd)
}
