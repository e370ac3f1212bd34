package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/motionlab/internal/adapters/cookiestore"
	"github.com/okian/motionlab/internal/adapters/http/api"
	"github.com/okian/motionlab/internal/adapters/wshub"
	app "github.com/okian/motionlab/internal/app"
	"github.com/okian/motionlab/internal/config"
	"github.com/okian/motionlab/internal/domain/analysis"
	"github.com/okian/motionlab/internal/domain/login"
	"github.com/okian/motionlab/internal/domain/upload"
	"github.com/okian/motionlab/pkg/logger"
	"github.com/okian/motionlab/pkg/metrics"
	"gopkg.in/yaml.v3"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants. Read and write timeouts are left unset:
// the progress websocket outlives any fixed deadline, and body reads are
// bounded per request by the API (uploads get a longer bound).
const (
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// stack is everything main starts and later stops.
type stack struct {
	svc     *app.Service
	hub     *wshub.Hub
	api     *api.Server
	handler http.Handler
}

func main() {
	printConfig := flag.Bool("print-config", false, "print the effective configuration as YAML and exit")
	flag.Parse()

	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if *printConfig {
		if err := yaml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
			os.Stderr.WriteString("failed to print config: " + err.Error() + "\n")
			os.Exit(1)
		}
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	if cfg.SessionSecret == config.New().SessionSecret {
		loggerInstance.Warn(ctx, "using the built-in session secret; set MOTIONLAB_SESSION_SECRET outside development")
	}

	st, err := build(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to start", logger.Error(err))
		os.Exit(1)
	}
	defer st.svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           st.handler,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	st.api.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// build wires the service, the progress hub and the HTTP API from cfg and
// starts the worker pool.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (*stack, error) {
	codec, err := cookiestore.NewCodec(cfg.SessionSecret, cookiestore.WithSecure(cfg.CookieSecure))
	if err != nil {
		return nil, fmt.Errorf("cookie codec: %w", err)
	}

	simOpts := []analysis.Option{analysis.WithStepDelay(cfg.StepDelay())}
	if cfg.RandomSeed != 0 {
		simOpts = append(simOpts, analysis.WithSeed(cfg.RandomSeed))
	}
	hub := wshub.NewHub()

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithSimulator(analysis.NewSimulator(simOpts...)),
		app.WithPublisher(hub),
		app.WithRunTimeout(cfg.RunTimeout()),
		app.WithRegenerateOnResize(cfg.RegenerateChartOnResize),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}

	flow := login.NewFlow(
		login.WithAccount(cfg.DemoEmail, cfg.DemoPassword),
		login.WithDelay(cfg.LoginDelay()),
		login.WithRedirectDelay(cfg.RedirectDelay()),
	)
	server := api.NewServer(svc, svc, codec,
		api.WithLoginFlow(flow),
		api.WithUploadPolicy(upload.Policy{MaxBytes: cfg.MaxUploadBytes, RequireVideoType: cfg.RequireVideoMediaType}),
		api.WithUploadDir(cfg.UploadDir),
		api.WithReadTimeout(cfg.ReadTimeout()),
		api.WithUploadTimeout(cfg.UploadTimeout()),
		api.WithHub(hub),
		api.WithChartSize(cfg.ChartWidth, cfg.ChartHeight),
		api.WithCORSOrigins(cfg.CORSAllowedOrigins),
	)

	return &stack{svc: svc, hub: hub, api: server, handler: server.Routes(ctx)}, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
