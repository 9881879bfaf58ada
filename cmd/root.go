// Package cmd defines the newspulse CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/newspulse/internal/app"
	"github.com/JakeFAU/newspulse/internal/collector"
	"github.com/JakeFAU/newspulse/internal/config"
	"github.com/JakeFAU/newspulse/internal/logging"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App is the surface subcommands use. Tests swap in a fake through newApp.
type App interface {
	Run(ctx context.Context) error
	Collect(ctx context.Context) (collector.Report, error)
	Logger() *zap.Logger
	Close()
}

type builtApp struct {
	*app.App
}

func (b builtApp) Collect(ctx context.Context) (collector.Report, error) {
	return b.Collector().Collect(ctx)
}

// newApp is the application factory.
var newApp = func(ctx context.Context, cfgFile string) (App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(logging.Options{
		Development: cfg.Logging.Development,
		Level:       cfg.Logging.Level,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return builtApp{a}, nil
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "newspulse",
		Short: "Financial news aggregation with staged enrichment.",
		Long: `newspulse collects headlines from HTML pages and RSS/Atom feeds, keeps
the finance-relevant ones, and serves them over HTTP. Every article is
readable immediately; richer analysis is filled in by a background worker.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context(), cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); env vars use the NEWSPULSE_ prefix")
	cmd.AddCommand(newServeCmd(), newCollectCmd())
	return cmd
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		zap.L().Error("command execution failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
