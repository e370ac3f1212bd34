package analysis_test

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	analysis "github.com/okian/motionlab/internal/domain/analysis"
	"github.com/okian/motionlab/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// scripted replays values in order, then repeats 0.5.
type scripted struct {
	values []float64
}

func (s *scripted) Float64() float64 {
	if len(s.values) == 0 {
		return 0.5
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func TestSimulator_Run(t *testing.T) {
	Convey("Given a simulator with scripted base draws speed=80 agility=80 coordination=85", t, func() {
		var slept []time.Duration
		fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		sim := analysis.NewSimulator(
			analysis.WithSource(&scripted{values: []float64{0.25, 0.4, 1.0 / 3}}),
			analysis.WithStepDelay(250*time.Millisecond),
			analysis.WithSleeper(func(_ context.Context, d time.Duration) error {
				slept = append(slept, d)
				return nil
			}),
			analysis.WithClock(func() time.Time { return fixed }),
		)

		Convey("When running an rnn analysis", func() {
			var steps []model.Progress
			result, err := sim.Run(context.Background(), model.AnalysisRNN, func(p model.Progress) {
				steps = append(steps, p)
			})

			Convey("Then the scores match the worked example", func() {
				So(err, ShouldBeNil)
				So(result.Metrics, ShouldResemble, model.Metrics{Speed: 88, Agility: 92, Coordination: 85, Overall: 88})
				So(result.Type, ShouldEqual, model.AnalysisRNN)
				So(result.GeneratedAt, ShouldEqual, fixed)
			})

			Convey("Then six steps are emitted in order, each followed by a pause", func() {
				So(len(steps), ShouldEqual, 6)
				So(steps[0], ShouldResemble, model.Progress{Label: "Loading video...", Percent: 10})
				So(steps[2].Label, ShouldEqual, "Running RNN model...")
				So(steps[5], ShouldResemble, model.Progress{Label: "Generating report...", Percent: 100})
				So(slept, ShouldResemble, []time.Duration{
					250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond,
					250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond,
				})
			})

			Convey("Then the static content and timeline are attached", func() {
				So(len(result.Movements), ShouldEqual, 5)
				So(result.Movements[0].Label, ShouldEqual, "Sprint Start")
				So(len(result.Techniques), ShouldEqual, 4)
				So(len(result.Recommendations), ShouldEqual, 5)
				So(len(result.KeyMoments), ShouldEqual, 4)
				So(len(result.Timeline), ShouldEqual, 30)
				So(result.Timeline[29].T, ShouldEqual, 29)
				So(result.PlayersDetected, ShouldEqual, 8)
			})
		})

		Convey("When the type is unknown", func() {
			_, err := sim.Run(context.Background(), model.AnalysisType("svm"), nil)
			So(errors.Is(err, model.ErrUnknownAnalysisType), ShouldBeTrue)
		})
	})

	Convey("Given a simulator whose pause is interrupted", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sim := analysis.NewSimulator(analysis.WithSleeper(noSleep))

		Convey("Then Run stops at the first step", func() {
			var count int
			_, err := sim.Run(ctx, model.AnalysisCNN, func(model.Progress) { count++ })
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(count, ShouldEqual, 1)
		})
	})

	Convey("Given the default sleeper and a short step delay", t, func() {
		sim := analysis.NewSimulator(analysis.WithSeed(7), analysis.WithStepDelay(time.Millisecond))

		Convey("Then a run completes", func() {
			start := time.Now()
			_, err := sim.Run(context.Background(), model.AnalysisHybrid, nil)
			So(err, ShouldBeNil)
			So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 6*time.Millisecond)
			So(sim.StepDelay(), ShouldEqual, time.Millisecond)
		})
	})
}

func TestScoreProperties(t *testing.T) {
	Convey("Given 10,000 random base draws", t, func() {
		rng := rand.New(rand.NewSource(42))

		Convey("Then every score stays in [0,100] and overall is the rounded mean", func() {
			ok := true
			for i := 0; i < 10_000 && ok; i++ {
				base := analysis.DrawBase(rng)
				for _, at := range model.AnalysisTypes {
					m := analysis.Score(at, base)
					for _, v := range []int{m.Speed, m.Agility, m.Coordination, m.Overall} {
						if v < 0 || v > 100 {
							ok = false
						}
					}
					if m.Overall != int(math.Round(float64(m.Speed+m.Agility+m.Coordination)/3)) {
						ok = false
					}
				}
			}
			So(ok, ShouldBeTrue)
		})

		Convey("Then hybrid never scores below cnn and lifts coordination", func() {
			ok := true
			for i := 0; i < 10_000 && ok; i++ {
				base := analysis.DrawBase(rng)
				cnn := analysis.Score(model.AnalysisCNN, base)
				hybrid := analysis.Score(model.AnalysisHybrid, base)
				rnn := analysis.Score(model.AnalysisRNN, base)
				ok = hybrid.Speed >= cnn.Speed &&
					hybrid.Agility >= cnn.Agility &&
					hybrid.Coordination > cnn.Coordination &&
					rnn.Coordination == cnn.Coordination
			}
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given base draws in range", t, func() {
		base := analysis.DrawBase(&scripted{values: []float64{0, 0.999999, 0.5}})
		So(base.Speed, ShouldEqual, 75)
		So(base.Agility, ShouldBeLessThan, 95)
		So(base.Coordination, ShouldEqual, 87.5)
	})
}

func TestTimeline(t *testing.T) {
	Convey("Given a seeded source", t, func() {
		points := analysis.Timeline(rand.New(rand.NewSource(1)))

		Convey("Then thirty indexed points stay inside their ranges", func() {
			So(len(points), ShouldEqual, 30)
			for i, p := range points {
				So(p.T, ShouldEqual, i)
				So(p.Speed, ShouldBeBetweenOrEqual, 60, 90)
				So(p.Agility, ShouldBeBetweenOrEqual, 65, 90)
				So(p.Coordination, ShouldBeBetweenOrEqual, 75, 95)
			}
		})

		Convey("Then the same seed reproduces the same timeline", func() {
			again := analysis.Timeline(rand.New(rand.NewSource(1)))
			So(again, ShouldResemble, points)
		})
	})

	Convey("Given the static content helpers", t, func() {
		a := analysis.Recommendations()
		a[0] = "changed"
		So(analysis.Recommendations()[0], ShouldEqual, "Focus on improving initial acceleration phase")
		So(analysis.KeyMoments()[2].Description, ShouldEqual, "Maximum vertical jump height: 65cm")
		So(analysis.Techniques()[2].Score, ShouldEqual, 90)
	})
}
