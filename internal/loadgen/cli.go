// Package loadgen drives many simulated browser sessions through the
// dashboard and checks that every exported report matches what was shown.
package loadgen

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/motionlab/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends structured logs to stdout and, when logFile is set, to
// that file as well.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		if err := logger.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return io.NopCloser(nil), nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file",
		logger.String("logFile", logFile),
		logger.String("started", time.Now().Format(time.RFC3339)))
	return file, nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	os.Stdout.WriteString(`MotionLab Load Tool
===================

Drives concurrent browser sessions through login, upload, analysis, chart
and report download, then verifies every report against the rendered results.

Usage:
  go run ./cmd/loadgen [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -sessions int
        Number of sessions to simulate (default 20)
  -workers int
        Number of concurrent sessions (default CPU cores)
  -timeout duration
        HTTP request timeout (default 30s)
  -poll duration
        State poll interval while a run is in flight (default 250ms)
  -video-bytes int
        Size of each generated upload (default 65536)
  -email string / -password string
        Demo account (default demo@example.com / password123)
  -output string
        JSON file for session outcomes
  -log string
        Log file for run output
  -verbose
        Log every finished session
  -help
        Show this help message

Examples:
  go run ./cmd/loadgen -sessions 200 -workers 32
  go run ./cmd/loadgen -url http://localhost:8080 -output out/outcomes.json
`)
}
