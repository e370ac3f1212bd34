package model

import "time"

// Progress is one simulator step.
type Progress struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

// Progress event types pushed to subscribers.
const (
	EventProgress = "progress"
	EventComplete = "complete"
	EventFailed   = "failed"
)

// ProgressEvent is the wire form of a run update.
type ProgressEvent struct {
	Type    string `json:"type"`
	JobID   string `json:"jobId"`
	Label   string `json:"label,omitempty"`
	Percent int    `json:"percent"`
	Message string `json:"message,omitempty"`
}

// Job is one queued analysis run.
type Job struct {
	ID         string
	ClientID   string
	Type       AnalysisType
	EnqueuedAt time.Time
}
