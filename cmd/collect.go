package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Run one collection pass and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			report, err := appInstance.Collect(cmd.Context())
			if err != nil {
				return fmt.Errorf("collect: %w", err)
			}
			appInstance.Logger().Info("collect command finished",
				zap.String("run_id", report.RunID),
				zap.Int("saved", report.Saved),
				zap.Int("failed_sources", len(report.FailedSources)),
			)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			return nil
		},
	}
}
