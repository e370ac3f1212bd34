// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// AnalysisType selects the multiplier triple applied to base scores.
type AnalysisType string

// Supported analysis types. The values are the selector option values.
const (
	AnalysisCNN    AnalysisType = "cnn"
	AnalysisRNN    AnalysisType = "rnn"
	AnalysisHybrid AnalysisType = "hybrid"
)

// AnalysisTypes lists every type in selector order.
var AnalysisTypes = []AnalysisType{AnalysisCNN, AnalysisRNN, AnalysisHybrid} //nolint:gochecknoglobals // fixed enum

// ParseAnalysisType accepts a selector value, case-insensitively.
func ParseAnalysisType(s string) (AnalysisType, error) {
	t := AnalysisType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case AnalysisCNN, AnalysisRNN, AnalysisHybrid:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAnalysisType, s)
}

// Valid reports whether t is one of AnalysisTypes.
func (t AnalysisType) Valid() bool {
	switch t {
	case AnalysisCNN, AnalysisRNN, AnalysisHybrid:
		return true
	}
	return false
}

// Multipliers returns the (speed, agility, coordination) factors for t.
func (t AnalysisType) Multipliers() (speed, agility, coordination float64) {
	switch t {
	case AnalysisRNN:
		return 1.10, 1.15, 1
	case AnalysisHybrid:
		return 1.20, 1.20, 1.10
	default:
		return 1, 1, 1
	}
}

// DisplayName is the selector option text shown to the user.
func (t AnalysisType) DisplayName() string {
	switch t {
	case AnalysisCNN:
		return "CNN (Convolutional Neural Network)"
	case AnalysisRNN:
		return "RNN (Recurrent Neural Network)"
	case AnalysisHybrid:
		return "Hybrid Model"
	}
	return string(t)
}

// Upper is the label used in step and report text, e.g. "RNN".
func (t AnalysisType) Upper() string { return strings.ToUpper(string(t)) }

// Metrics holds the four headline scores, each in [0,100].
type Metrics struct {
	Speed        int `json:"speed"`
	Agility      int `json:"agility"`
	Coordination int `json:"coordination"`
	Overall      int `json:"overall"`
}

// Movement is one detected movement row.
type Movement struct {
	Time       string `json:"time"`
	Label      string `json:"label"`
	Quality    string `json:"quality"`
	Confidence int    `json:"confidence"`
}

// Technique is one technique assessment row.
type Technique struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// TimelinePoint is one chart sample.
type TimelinePoint struct {
	T            int     `json:"t"`
	Speed        float64 `json:"speed"`
	Agility      float64 `json:"agility"`
	Coordination float64 `json:"coordination"`
}

// KeyMoment is one highlighted moment of the clip.
type KeyMoment struct {
	Time        string `json:"time"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// AnalysisResult is produced fresh by each run and replaces any prior one.
type AnalysisResult struct {
	Type            AnalysisType    `json:"type"`
	Metrics         Metrics         `json:"metrics"`
	Movements       []Movement      `json:"movements"`
	Techniques      []Technique     `json:"techniques"`
	Recommendations []string        `json:"recommendations"`
	Timeline        []TimelinePoint `json:"timeline"`
	KeyMoments      []KeyMoment     `json:"keyMoments"`
	PlayersDetected int             `json:"playersDetected"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

// DisplayedMetrics are the formatted "<n>/100" strings currently shown.
type DisplayedMetrics struct {
	Speed        string `json:"speed"`
	Agility      string `json:"agility"`
	Coordination string `json:"coordination"`
	Overall      string `json:"overall"`
}
