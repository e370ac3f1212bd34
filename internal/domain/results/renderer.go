// Package results projects an analysis result onto a display surface.
package results

import (
	"fmt"
	"strconv"

	"github.com/okian/motionlab/internal/domain/model"
)

// Element ids written by the renderer.
const (
	SpeedScore          = "speedScore"
	AgilityScore        = "agilityScore"
	CoordinationScore   = "coordinationScore"
	OverallRating       = "overallRating"
	MovementList        = "movementList"
	TechniqueAnalysis   = "techniqueAnalysis"
	RecommendationsList = "recommendationsList"
	KeyMomentsList      = "keyMoments"
	ResultsSection      = "resultsSection"
)

// Item is one rendered list entry. Lead is emphasized, Detail goes on a
// second line. Recommendations only carry Text.
type Item struct {
	Lead   string `json:"lead,omitempty"`
	Text   string `json:"text"`
	Detail string `json:"detail,omitempty"`
}

// Display is the surface results are rendered onto.
type Display interface {
	SetText(id, text string)
	ClearList(id string)
	AppendItem(id string, item Item)
	DrawChart(timeline []model.TimelinePoint)
	ScrollIntoView(id string)
}

// FormatScore renders v as "<v>/100".
func FormatScore(v int) string {
	return strconv.Itoa(v) + "/100"
}

// Renderer writes results in full. Nothing from a previous render survives.
type Renderer struct{}

// NewRenderer creates a renderer.
func NewRenderer() *Renderer { return &Renderer{} }

// Render sets the four scores, replaces the four lists, draws the chart and
// scrolls the results section into view, in that order.
func (r *Renderer) Render(d Display, res model.AnalysisResult) {
	d.SetText(SpeedScore, FormatScore(res.Metrics.Speed))
	d.SetText(AgilityScore, FormatScore(res.Metrics.Agility))
	d.SetText(CoordinationScore, FormatScore(res.Metrics.Coordination))
	d.SetText(OverallRating, FormatScore(res.Metrics.Overall))

	d.ClearList(MovementList)
	for _, m := range res.Movements {
		d.AppendItem(MovementList, Item{
			Lead:   m.Time,
			Text:   m.Label,
			Detail: fmt.Sprintf("Quality: %s (%d%% confidence)", m.Quality, m.Confidence),
		})
	}

	d.ClearList(TechniqueAnalysis)
	for _, t := range res.Techniques {
		d.AppendItem(TechniqueAnalysis, Item{
			Lead:   t.Name + ":",
			Text:   FormatScore(t.Score),
			Detail: t.Feedback,
		})
	}

	d.ClearList(RecommendationsList)
	for _, rec := range res.Recommendations {
		d.AppendItem(RecommendationsList, Item{Text: rec})
	}

	d.ClearList(KeyMomentsList)
	for _, k := range res.KeyMoments {
		d.AppendItem(KeyMomentsList, Item{Lead: k.Time, Text: k.Label, Detail: k.Description})
	}

	d.DrawChart(res.Timeline)
	d.ScrollIntoView(ResultsSection)
}
