package main

import (
	"context"
	"fmt"
	"os"

	service "github.com/okian/penrisk/internal/app"
	"github.com/okian/penrisk/internal/config"
	"github.com/okian/penrisk/internal/domain/capture"
	"github.com/okian/penrisk/internal/domain/scoring"
	"github.com/okian/penrisk/internal/modelconfig"
	"github.com/okian/penrisk/pkg/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "penrisk",
		Short:         "Handwriting-based cognitive risk screening",
		Long:          "penrisk turns pen drawings into features, validates the traced shape, and scores cognitive risk.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file (overrides PENRISK_CONFIG)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newAssessCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newLoadTestCmd())
	return root
}

// loadConfig resolves the config file from --config, then PENRISK_CONFIG,
// and loads the layered configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		if err := os.Setenv("PENRISK_CONFIG", p); err != nil {
			return nil, fmt.Errorf("set config path: %w", err)
		}
	}
	return config.Load(cmd.Context())
}

// initLogger initializes the global logger from cfg. An invalid level
// falls back to info.
func initLogger(ctx context.Context, cfg *config.Config) (logger.Logger, error) {
	if err := logger.InitWithWriter(os.Stderr, cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	l := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		l.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return l, nil
}

// newService builds the pipeline service from cfg. A malformed model file
// is an error; an empty path uses the embedded tables.
func newService(cfg *config.Config, l logger.Logger) (*service.Service, error) {
	tables, err := modelconfig.Load(cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("load model tables: %w", err)
	}
	m, err := scoring.NewModel(tables)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	return service.New(
		service.WithLogger(l),
		service.WithModel(m),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithStoreCapacity(cfg.StoreCapacity),
		service.WithRequirements(cfg.Requirements),
		service.WithReferenceShape(cfg.ReferenceShape),
		service.WithBlend(cfg.Blend),
		service.WithBiomarkerShare(cfg.BiomarkerShare),
	), nil
}

// captureOptions maps the capture section onto capturer options.
func captureOptions(c config.Capture) []capture.Option {
	policy := capture.RejectNew
	if c.ConflictPolicy == config.ConflictRestart {
		policy = capture.CancelAndRestart
	}
	return []capture.Option{
		capture.WithSmoothing(c.Smoothing),
		capture.WithPressure(c.PressureSensitivity, c.PressureMin, c.PressureMax),
		capture.WithConflictPolicy(policy),
	}
}
