package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pharmacy-copilot/internal/app"
	"pharmacy-copilot/internal/config"
	"pharmacy-copilot/internal/logger"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "copilot",
		Short:         "Pharmacy copilot demo: prompt dispatch with model fallbacks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.AddCommand(
		newServeCmd(opts),
		newDispatchCmd(opts),
		newStatusCmd(opts),
	)
	return cmd
}

// bootstrap loads configuration, builds the logger and wires the app.
func bootstrap(cmd *cobra.Command, opts *rootOptions) (*app.App, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return a, nil
}

func shutdown(a *app.App) {
	a.Close()
	if err := a.Log.Sync(); err != nil {
		a.Log.Debug("logger sync", zap.Error(err))
	}
}
