package cmd

import (
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the news API and run the enrichment worker",
		Long: `Starts the HTTP API, loads the enrichment service in the background,
consumes the enrichment queue, and, when scheduler.enabled is set, collects
on a fixed interval. SIGINT or SIGTERM drains in-flight work and exits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return appInstance.Run(cmd.Context())
		},
	}
}
