package loadtest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/penrisk/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging initializes the global logger to write to stdout and to
// logFile. An empty logFile gets a timestamped name. The returned func
// closes the file.
func SetupLogging(logFile, format string) (logger.Logger, func(), error) {
	if logFile == "" {
		logFile = "loadtest_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file), format); err != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	l := logger.Named("loadtest")
	l.Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return l, func() { _ = file.Close() }, nil
}
