// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and MOTIONLAB_ environment variables on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"runtime"
	"time"
)

// MiB is one mebibyte.
const MiB = 1 << 20

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" yaml:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" yaml:"addr"`

	// QueueSize bounds the in-memory analysis job queue.
	QueueSize int `koanf:"queue_size" yaml:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count" yaml:"worker_count"`

	// MaxUploadBytes is the largest accepted video, inclusive.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" yaml:"max_upload_bytes"`

	// RequireVideoMediaType applies the video/* check to picker uploads too.
	// Drop uploads are always checked.
	RequireVideoMediaType bool `koanf:"require_video_media_type" yaml:"require_video_media_type"`

	// ReadTimeoutMS bounds reading a request body other than an upload.
	ReadTimeoutMS int `koanf:"read_timeout_ms" yaml:"read_timeout_ms"`

	// UploadTimeoutMS bounds reading an upload body. At the default it
	// allows a 500 MiB file over a link of roughly 2.5 Mbit/s.
	UploadTimeoutMS int `koanf:"upload_timeout_ms" yaml:"upload_timeout_ms"`

	// UploadDir holds uploaded files for the lifetime of a client session.
	// Empty means os.TempDir().
	UploadDir string `koanf:"upload_dir" yaml:"upload_dir"`

	// StepDelayMS is the pause after each simulated analysis step.
	StepDelayMS int `koanf:"step_delay_ms" yaml:"step_delay_ms"`

	// RunTimeoutMS fails an analysis run still going after this long. Zero
	// disables the bound.
	RunTimeoutMS int `koanf:"run_timeout_ms" yaml:"run_timeout_ms"`

	// LoginDelayMS simulates the login round trip.
	LoginDelayMS int `koanf:"login_delay_ms" yaml:"login_delay_ms"`

	// RedirectDelayMS is how long the client shows the success message.
	RedirectDelayMS int `koanf:"redirect_delay_ms" yaml:"redirect_delay_ms"`

	// DemoEmail and DemoPassword are the only accepted credentials.
	DemoEmail    string `koanf:"demo_email" yaml:"demo_email"`
	DemoPassword string `koanf:"demo_password" yaml:"demo_password"`

	// SessionSecret signs the key-value cookies.
	SessionSecret string `koanf:"session_secret" yaml:"-"`

	// CookieSecure marks cookies Secure.
	CookieSecure bool `koanf:"cookie_secure" yaml:"cookie_secure"`

	// ChartWidth and ChartHeight are used when a request omits a size.
	ChartWidth  int `koanf:"chart_width" yaml:"chart_width"`
	ChartHeight int `koanf:"chart_height" yaml:"chart_height"`

	// RegenerateChartOnResize redraws resized charts from a fresh random
	// timeline instead of the displayed result's timeline.
	RegenerateChartOnResize bool `koanf:"regenerate_chart_on_resize" yaml:"regenerate_chart_on_resize"`

	// RandomSeed seeds the simulator. Zero seeds from the clock.
	RandomSeed int64 `koanf:"random_seed" yaml:"random_seed"`

	// CORSAllowedOrigins lists origins allowed on /api.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" yaml:"cors_allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		QueueSize:               1_000,
		WorkerCount:             runtime.NumCPU() * 2,
		MaxUploadBytes:          500 * MiB,
		RequireVideoMediaType:   false,
		ReadTimeoutMS:           10_000,
		UploadTimeoutMS:         1_800_000,
		StepDelayMS:             1000,
		RunTimeoutMS:            300_000,
		LoginDelayMS:            1500,
		RedirectDelayMS:         1500,
		DemoEmail:               "demo@example.com",
		DemoPassword:            "password123",
		SessionSecret:           "motionlab-dev-secret-change-me",
		ChartWidth:              800,
		ChartHeight:             300,
		RegenerateChartOnResize: true,
		CORSAllowedOrigins:      []string{"*"},
	}
}

// StepDelay returns StepDelayMS as a duration.
func (c *Config) StepDelay() time.Duration { return time.Duration(c.StepDelayMS) * time.Millisecond }

// RunTimeout returns RunTimeoutMS as a duration.
func (c *Config) RunTimeout() time.Duration { return time.Duration(c.RunTimeoutMS) * time.Millisecond }

// ReadTimeout returns ReadTimeoutMS as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// UploadTimeout returns UploadTimeoutMS as a duration.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.UploadTimeoutMS) * time.Millisecond
}

// LoginDelay returns LoginDelayMS as a duration.
func (c *Config) LoginDelay() time.Duration { return time.Duration(c.LoginDelayMS) * time.Millisecond }

// RedirectDelay returns RedirectDelayMS as a duration.
func (c *Config) RedirectDelay() time.Duration {
	return time.Duration(c.RedirectDelayMS) * time.Millisecond
}
