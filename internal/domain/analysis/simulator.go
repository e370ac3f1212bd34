// Package analysis synthesizes sports performance results for an uploaded clip.
//
// Nothing is inferred from the video. A Simulator walks a fixed list of
// progress steps with an artificial pause after each, then draws base scores
// from a random Source and scales them by the analysis type's multipliers.
package analysis

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/motionlab/internal/domain/model"
)

const (
	defaultStepDelay = time.Second
	maxScore         = 100
	timelineLength   = 30
)

// Source yields uniform values in [0,1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithSource sets the random source. Tests use a scripted one.
func WithSource(src Source) Option {
	return func(s *Simulator) {
		if src != nil {
			s.src = src
		}
	}
}

// WithSeed seeds a math/rand source. Zero keeps the clock-seeded default.
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		if seed != 0 {
			s.src = rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic demo data
		}
	}
}

// WithStepDelay sets the pause after each step.
func WithStepDelay(d time.Duration) Option {
	return func(s *Simulator) {
		if d >= 0 {
			s.stepDelay = d
		}
	}
}

// WithSleeper replaces the pause implementation.
func WithSleeper(fn Sleeper) Option {
	return func(s *Simulator) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// WithClock sets the clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		if now != nil {
			s.now = now
		}
	}
}

// Simulator produces fabricated analysis results.
type Simulator struct {
	// mu serializes draws; a shared *rand.Rand is not safe for concurrent use.
	mu        sync.Mutex
	src       Source
	stepDelay time.Duration
	sleep     Sleeper
	now       func() time.Time
}

// NewSimulator creates a simulator with a clock-seeded source and one second steps.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		src:       rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // synthetic demo data
		stepDelay: defaultStepDelay,
		sleep:     sleepContext,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StepDelay reports the configured pause per step.
func (s *Simulator) StepDelay() time.Duration { return s.stepDelay }

// Run emits the six progress steps, pausing after each, then returns a fresh
// result. Steps run strictly in sequence. Cancelling ctx abandons the run
// between steps.
func (s *Simulator) Run(ctx context.Context, t model.AnalysisType, onProgress func(model.Progress)) (model.AnalysisResult, error) {
	if _, err := model.ParseAnalysisType(string(t)); err != nil {
		return model.AnalysisResult{}, err
	}
	for _, step := range Steps(t) {
		if onProgress != nil {
			onProgress(step)
		}
		if err := s.sleep(ctx, s.stepDelay); err != nil {
			return model.AnalysisResult{}, fmt.Errorf("analysis interrupted at %q: %w", step.Label, err)
		}
	}
	return s.Generate(t), nil
}

// Generate synthesizes a result without the progress pauses.
func (s *Simulator) Generate(t model.AnalysisType) model.AnalysisResult {
	s.mu.Lock()
	base := DrawBase(s.src)
	timeline := Timeline(s.src)
	players := drawPlayers(s.src)
	s.mu.Unlock()

	return model.AnalysisResult{
		Type:            t,
		Metrics:         Score(t, base),
		Movements:       Movements(),
		Techniques:      Techniques(),
		Recommendations: Recommendations(),
		Timeline:        timeline,
		KeyMoments:      KeyMoments(),
		PlayersDetected: players,
		GeneratedAt:     s.now(),
	}
}

// Timeline draws a fresh timeline from the simulator's source.
func (s *Simulator) Timeline() []model.TimelinePoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Timeline(s.src)
}

// Base holds unscaled scores.
type Base struct {
	Speed        float64
	Agility      float64
	Coordination float64
}

// DrawBase draws speed in [75,95), agility in [70,95) and coordination in
// [80,95), in that order.
func DrawBase(src Source) Base {
	return Base{
		Speed:        uniform(src, 75, 95),
		Agility:      uniform(src, 70, 95),
		Coordination: uniform(src, 80, 95),
	}
}

// Score scales base by t's multipliers, rounds each score and clamps it to
// [0,100]. Overall is the rounded mean of the three rounded scores.
func Score(t model.AnalysisType, b Base) model.Metrics {
	ms, ma, mc := t.Multipliers()
	speed := clampScore(b.Speed * ms)
	agility := clampScore(b.Agility * ma)
	coordination := clampScore(b.Coordination * mc)
	return model.Metrics{
		Speed:        speed,
		Agility:      agility,
		Coordination: coordination,
		Overall:      int(math.Round(float64(speed+agility+coordination) / 3)),
	}
}

// Steps returns the progress steps for t.
func Steps(t model.AnalysisType) []model.Progress {
	return []model.Progress{
		{Label: "Loading video...", Percent: 10},
		{Label: "Extracting frames...", Percent: 25},
		{Label: "Running " + t.Upper() + " model...", Percent: 50},
		{Label: "Analyzing movements...", Percent: 70},
		{Label: "Calculating metrics...", Percent: 85},
		{Label: "Generating report...", Percent: 100},
	}
}

// Timeline draws thirty points, each as speed in [60,90), agility in [65,90)
// and coordination in [75,95).
func Timeline(src Source) []model.TimelinePoint {
	points := make([]model.TimelinePoint, timelineLength)
	for i := range points {
		points[i] = model.TimelinePoint{
			T:            i,
			Speed:        uniform(src, 60, 90),
			Agility:      uniform(src, 65, 90),
			Coordination: uniform(src, 75, 95),
		}
	}
	return points
}

// drawPlayers draws a player count in [5,11).
func drawPlayers(src Source) int {
	return 5 + int(src.Float64()*6)
}

func uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

func clampScore(v float64) int {
	return int(math.Max(0, math.Min(maxScore, math.Round(v))))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil || d <= 0 {
		return err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
