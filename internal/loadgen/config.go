package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Sessions     int           // Number of browser sessions to simulate
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Pause between state polls while a run is in flight
	VideoBytes   int           // Size of each generated upload
	Email        string        // Demo account email
	Password     string        // Demo account password
	OutputFile   string        // Output file for session outcomes
	LogFile      string        // Log file for run output
	Verbose      bool          // Enable verbose logging
}

// Plan is one simulated browser session.
type Plan struct {
	SessionID    string `json:"session_id"`
	VideoName    string `json:"video_name"`
	AnalysisType string `json:"analysis_type"`
	Remember     bool   `json:"remember_me"`
}

// Metrics are the displayed score strings.
type Metrics struct {
	Speed        string `json:"speed"`
	Agility      string `json:"agility"`
	Coordination string `json:"coordination"`
	Overall      string `json:"overall"`
}

// Outcome records what one session observed.
type Outcome struct {
	Plan
	Status         string        `json:"status"`
	Error          string        `json:"error,omitempty"`
	Metrics        Metrics       `json:"metrics"`
	TimelinePoints int           `json:"timeline_points"`
	Report         string        `json:"-"`
	ReportName     string        `json:"report_name,omitempty"`
	ChartBytes     int           `json:"chart_bytes"`
	Duration       time.Duration `json:"duration_ns"`
}

// Stats holds run statistics.
type Stats struct {
	SessionsPlanned    int
	SessionsCompleted  int
	SessionsFailed     int
	SessionsRejected   int
	ReportsVerified    int
	ReportMismatches   int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
	AverageRunDuration time.Duration
}
