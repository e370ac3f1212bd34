package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/motionlab/internal/loadgen"
)

// Default configuration constants.
const (
	defaultSessions   = 20
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		sessions   = flag.Int("sessions", defaultSessions, "Number of sessions to simulate")
		workers    = flag.Int("workers", runtime.NumCPU(), "Number of concurrent sessions")
		timeout    = flag.Duration("timeout", loadgen.DefaultTimeout, "HTTP request timeout")
		poll       = flag.Duration("poll", loadgen.DefaultPollInterval, "State poll interval")
		videoBytes = flag.Int("video-bytes", loadgen.DefaultVideoBytes, "Size of each generated upload")
		email      = flag.String("email", loadgen.DefaultEmail, "Demo account email")
		password   = flag.String("password", loadgen.DefaultPassword, "Demo account password")
		outputFile = flag.String("output", "", "JSON file for session outcomes")
		logFile    = flag.String("log", "", "Log file for run output")
		verbose    = flag.Bool("verbose", false, "Log every finished session")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadgen.ShowHelp()
		return
	}

	closer, err := loadgen.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &loadgen.Config{
		BaseURL:      *baseURL,
		Sessions:     *sessions,
		Workers:      *workers,
		Timeout:      *timeout,
		PollInterval: *poll,
		VideoBytes:   *videoBytes,
		Email:        *email,
		Password:     *password,
		OutputFile:   *outputFile,
		LogFile:      *logFile,
		Verbose:      *verbose,
	}

	if _, err := loadgen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Load run failed: " + err.Error() + "\n")
		closer.Close()
		os.Exit(1)
	}
}
