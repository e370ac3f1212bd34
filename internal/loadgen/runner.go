package loadgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/motionlab/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.Sessions <= 0 {
		c.Sessions = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.VideoBytes <= 0 {
		c.VideoBytes = DefaultVideoBytes
	}
	if c.Email == "" {
		c.Email = DefaultEmail
	}
	if c.Password == "" {
		c.Password = DefaultPassword
	}
}

// Run drives cfg.Sessions browser sessions through login, upload, analysis
// and export, then verifies what each saw. It fails if any session failed
// or any report disagreed with its rendered metrics.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	cfg.Normalize()
	stats := &Stats{StartTime: time.Now(), SessionsPlanned: cfg.Sessions}
	log := logger.Get().Named("loadgen")

	log.Info(ctx, "starting motionlab load run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Bool("verbose", cfg.Verbose))

	// Step 1: Check service health
	probe, err := newClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if err := probe.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Plan and run sessions
	plans := GeneratePlans(ctx, cfg.Sessions)
	outcomes := runSessions(ctx, cfg, plans)

	// Step 3: Verify
	verifyErr := verifyOutcomes(ctx, outcomes, stats)

	// Step 4: Save outcomes
	if err := saveOutcomes(ctx, cfg, outcomes); err != nil {
		log.Warn(ctx, "failed to save outcomes", logger.Error(err))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if verifyErr != nil {
		return stats, verifyErr
	}
	if stats.SessionsFailed > 0 {
		return stats, fmt.Errorf("%d of %d sessions failed", stats.SessionsFailed, stats.SessionsPlanned)
	}
	log.Info(ctx, "load run completed successfully")
	return stats, nil
}

// runSessions fans plans out over cfg.Workers goroutines.
func runSessions(ctx context.Context, cfg *Config, plans []Plan) []Outcome {
	outcomes := make([]Outcome, len(plans))
	work := make(chan int, cfg.Workers*WorkerChannelMultiplier)
	var done atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				outcomes[i] = runSession(ctx, cfg, plans[i])
				n := done.Add(1)
				if cfg.Verbose {
					logger.Get().Info(ctx, "session finished",
						logger.String("session", plans[i].SessionID),
						logger.String("status", outcomes[i].Status),
						logger.Int64("done", n),
						logger.Int("total", len(plans)))
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range plans {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()

	wg.Wait()
	for i := range outcomes {
		if outcomes[i].Status == "" {
			outcomes[i] = Outcome{Plan: plans[i], Status: StatusFailed, Error: "not run: " + context.Cause(ctx).Error()}
		}
	}
	return outcomes
}

// runSession walks one plan through the dashboard.
func runSession(ctx context.Context, cfg *Config, p Plan) Outcome {
	start := time.Now()
	out := Outcome{Plan: p}
	fail := func(step string, err error) Outcome {
		out.Status = StatusFailed
		var se *StatusError
		if errors.As(err, &se) && (se.Status == http.StatusTooManyRequests || se.Status == http.StatusServiceUnavailable) {
			out.Status = StatusRejected
		}
		out.Error = step + ": " + err.Error()
		out.Duration = time.Since(start)
		return out
	}

	c, err := newClient(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return fail("client", err)
	}
	if err := c.login(ctx, cfg.Email, cfg.Password, p.Remember); err != nil {
		return fail("login", err)
	}
	if err := c.upload(ctx, p.VideoName, videoPayload(cfg.VideoBytes)); err != nil {
		return fail("upload", err)
	}
	started, err := c.start(ctx, p.AnalysisType)
	if err != nil {
		return fail("start", err)
	}
	if err := waitForResult(ctx, c, cfg.PollInterval, started.JobID); err != nil {
		return fail("analysis", err)
	}

	v, err := c.results(ctx)
	if err != nil {
		return fail("results", err)
	}
	out.Metrics = v.Metrics
	out.TimelinePoints = len(v.Timeline)

	if out.ChartBytes, err = c.chart(ctx); err != nil {
		return fail("chart", err)
	}
	if out.Report, out.ReportName, err = c.report(ctx); err != nil {
		return fail("report", err)
	}
	if err := c.logout(ctx); err != nil {
		return fail("logout", err)
	}

	out.Status = StatusCompleted
	out.Duration = time.Since(start)
	return out
}

// waitForResult polls the state until jobID has finished.
func waitForResult(ctx context.Context, c *client, every time.Duration, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, maxRunWait)
	defer cancel()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		st, err := c.state(ctx)
		if err != nil {
			return err
		}
		switch {
		case st.Analyzing && st.JobID != jobID:
			return fmt.Errorf("job %s replaced by %q", jobID, st.JobID)
		case st.LastError != "":
			return errors.New(st.LastError)
		case !st.Analyzing && st.HasResult:
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for job %s: %w", jobID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// saveOutcomes writes the outcomes as a JSON array.
func saveOutcomes(ctx context.Context, cfg *Config, outcomes []Outcome) error {
	filename := cfg.OutputFile
	if filename == "" {
		return nil
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcomes); err != nil {
		return fmt.Errorf("failed to write outcomes: %w", err)
	}
	logger.Get().Info(ctx, "outcomes saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, sessionsPerSecond float64
	if stats.SessionsPlanned > 0 {
		successRate = float64(stats.SessionsCompleted) / float64(stats.SessionsPlanned) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		sessionsPerSecond = float64(stats.SessionsCompleted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("sessionsPlanned", stats.SessionsPlanned),
		logger.Int("sessionsCompleted", stats.SessionsCompleted),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("sessionsRejected", stats.SessionsRejected),
		logger.Int("reportsVerified", stats.ReportsVerified),
		logger.Int("reportMismatches", stats.ReportMismatches),
		logger.Duration("duration", stats.Duration),
		logger.Duration("averageRun", stats.AverageRunDuration),
		logger.Float64("successRate", successRate),
		logger.Float64("sessionsPerSecond", sessionsPerSecond))
}
