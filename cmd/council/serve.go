package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/tkaria/council/internal/bridge"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only JSON bridge for dashboards",
	Long: `Serve starts an HTTP server exposing iteration history, weight
snapshots, and comparisons over GET endpoints. It runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := buildRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		settings := bridgeSettings(rt)
		settings.Enabled = true
		server := bridge.NewServer(settings, rt.orch, bridge.WithLogger(rt.logger))
		if err := server.Start(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("bridge listening on %s\n", server.BaseURL())

		<-cmd.Context().Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}
