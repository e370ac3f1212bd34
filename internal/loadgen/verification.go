package loadgen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/motionlab/pkg/logger"
)

// ErrVerification is returned when a completed session saw inconsistent data.
var ErrVerification = errors.New("verification failed")

// expectedTimelinePoints is the length of every performance timeline.
const expectedTimelinePoints = 30

// verifyOutcomes tallies outcomes into stats and checks each completed one.
func verifyOutcomes(ctx context.Context, outcomes []Outcome, stats *Stats) error {
	log := logger.Get().Named("loadgen")
	log.Info(ctx, "verifying outcomes", logger.Int("sessions", len(outcomes)))

	var problems []error
	var total time.Duration
	for _, o := range outcomes {
		switch o.Status {
		case StatusCompleted:
			stats.SessionsCompleted++
			total += o.Duration
		case StatusRejected:
			stats.SessionsRejected++
			continue
		default:
			stats.SessionsFailed++
			log.Warn(ctx, "session failed", logger.String("session", o.SessionID), logger.String("error", o.Error))
			continue
		}

		if err := verifyOutcome(o); err != nil {
			stats.ReportMismatches++
			problems = append(problems, fmt.Errorf("session %s: %w", o.SessionID, err))
			continue
		}
		stats.ReportsVerified++
	}
	if stats.SessionsCompleted > 0 {
		stats.AverageRunDuration = total / time.Duration(stats.SessionsCompleted)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrVerification, errors.Join(problems...))
	}
	log.Info(ctx, "outcome verification completed", logger.Int("verified", stats.ReportsVerified))
	return nil
}

// verifyOutcome checks that the scores are well formed, that overall is the
// rounded mean of the other three, that the timeline is complete, and that
// the report repeats exactly what the results showed.
func verifyOutcome(o Outcome) error {
	scores := map[string]string{
		"speed":        o.Metrics.Speed,
		"agility":      o.Metrics.Agility,
		"coordination": o.Metrics.Coordination,
		"overall":      o.Metrics.Overall,
	}
	values := map[string]int{}
	for name, raw := range scores {
		v, err := parseScore(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		values[name] = v
	}
	mean := int(math.Round(float64(values["speed"]+values["agility"]+values["coordination"]) / 3))
	if values["overall"] != mean {
		return fmt.Errorf("overall %d is not the mean %d", values["overall"], mean)
	}
	if o.TimelinePoints != expectedTimelinePoints {
		return fmt.Errorf("timeline has %d points, want %d", o.TimelinePoints, expectedTimelinePoints)
	}
	if o.ChartBytes == 0 {
		return errors.New("empty chart")
	}

	for _, line := range []string{
		"Speed Score: " + o.Metrics.Speed,
		"Agility Score: " + o.Metrics.Agility,
		"Coordination: " + o.Metrics.Coordination,
		"Overall Rating: " + o.Metrics.Overall,
		"advanced " + strings.ToUpper(o.AnalysisType) + " analysis",
	} {
		if !strings.Contains(o.Report, line) {
			return fmt.Errorf("report is missing %q", line)
		}
	}
	if !strings.HasPrefix(o.ReportName, "sports_analysis_report_") {
		return fmt.Errorf("unexpected report name %q", o.ReportName)
	}
	return nil
}

// parseScore reads "<n>/100" with n in [0,100].
func parseScore(s string) (int, error) {
	num, ok := strings.CutSuffix(s, "/100")
	if !ok {
		return 0, fmt.Errorf("score %q lacks /100", s)
	}
	v, err := strconv.Atoi(num)
	if err != nil {
		return 0, fmt.Errorf("score %q: %w", s, err)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("score %q out of range", s)
	}
	return v, nil
}
