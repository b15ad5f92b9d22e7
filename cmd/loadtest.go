package main

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/penrisk/internal/loadtest"
	"github.com/okian/penrisk/pkg/logger"
	"github.com/spf13/cobra"
)

const defaultLoadTestTimeout = 10 * time.Minute

func newLoadTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Drive a running server with synthetic sessions and verify the results",
		Args:  cobra.NoArgs,
		RunE:  runLoadTest,
	}
	cmd.Flags().String("url", loadtest.DefaultBaseURL, "Base URL of the service")
	cmd.Flags().Int("sessions", loadtest.DefaultSessions, "Number of sessions to generate and submit")
	cmd.Flags().Int("workers", runtime.NumCPU()*2, "Number of concurrent workers")
	cmd.Flags().Uint64("seed", uint64(time.Now().UnixNano()), "Generator seed")
	cmd.Flags().Duration("timeout", loadtest.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().Duration("poll-timeout", loadtest.DefaultPollTimeout, "How long to wait for results")
	cmd.Flags().String("output", "", "Write generated sessions to this file")
	cmd.Flags().String("log", "", "Log file (default loadtest_TIMESTAMP.log)")
	cmd.Flags().String("log-format", logger.FormatText, "Log format: text or json")
	cmd.Flags().Bool("verbose", false, "Log individual failures")
	return cmd
}

func runLoadTest(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	logFile, _ := flags.GetString("log")
	logFormat, _ := flags.GetString("log-format")
	l, closeLog, err := loadtest.SetupLogging(logFile, logFormat)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := loadtest.Config{Logger: l}
	cfg.BaseURL, _ = flags.GetString("url")
	cfg.Sessions, _ = flags.GetInt("sessions")
	cfg.Workers, _ = flags.GetInt("workers")
	cfg.Seed, _ = flags.GetUint64("seed")
	cfg.Timeout, _ = flags.GetDuration("timeout")
	cfg.PollTimeout, _ = flags.GetDuration("poll-timeout")
	cfg.OutputFile, _ = flags.GetString("output")
	cfg.Verbose, _ = flags.GetBool("verbose")

	ctx, cancel := context.WithTimeout(cmd.Context(), defaultLoadTestTimeout)
	defer cancel()

	_, err = loadtest.Run(ctx, cfg)
	return err
}
