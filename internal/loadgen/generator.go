package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/okian/motionlab/pkg/logger"
)

// analysisTypes are the selector values sessions pick from.
var analysisTypes = []string{"cnn", "rnn", "hybrid"} //nolint:gochecknoglobals // fixed enum

// Sample clip names, cycled through by sessions.
var videoNames = []string{ //nolint:gochecknoglobals // sample data
	"penalty_kick.mp4",
	"sprint_drill.mp4",
	"dribbling_session.webm",
	"match_highlights.mov",
	"agility_ladder.mp4",
}

// mp4Header makes generated uploads sniff as ISO media.
var mp4Header = []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'} //nolint:gochecknoglobals // magic

// randomInt returns a uniform int in [0,n) using crypto/rand.
func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// GeneratePlans builds n session plans with random analysis types.
func GeneratePlans(ctx context.Context, n int) []Plan {
	plans := make([]Plan, n)
	counts := map[string]int{}
	for i := range plans {
		t := analysisTypes[randomInt(len(analysisTypes))]
		counts[t]++
		plans[i] = Plan{
			SessionID:    uuid.NewString(),
			VideoName:    fmt.Sprintf("%03d_%s", i, videoNames[i%len(videoNames)]),
			AnalysisType: t,
			Remember:     randomInt(2) == 1,
		}
	}
	logger.Get().Info(ctx, "session plans generated",
		logger.Int("sessions", n),
		logger.Int("cnn", counts["cnn"]),
		logger.Int("rnn", counts["rnn"]),
		logger.Int("hybrid", counts["hybrid"]))
	return plans
}

// videoPayload returns size bytes that start with an mp4 box header.
func videoPayload(size int) []byte {
	if size < len(mp4Header) {
		size = len(mp4Header)
	}
	b := make([]byte, size)
	copy(b, mp4Header)
	_, _ = rand.Read(b[len(mp4Header):])
	return b
}
