package results_test

import (
	"testing"

	"github.com/okian/motionlab/internal/domain/analysis"
	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/internal/domain/results"
	. "github.com/smartystreets/goconvey/convey"
)

// recorder logs every call in order.
type recorder struct {
	calls []string
}

func (r *recorder) SetText(id, _ string)                 { r.calls = append(r.calls, "text:"+id) }
func (r *recorder) ClearList(id string)                  { r.calls = append(r.calls, "clear:"+id) }
func (r *recorder) AppendItem(id string, _ results.Item) { r.calls = append(r.calls, "item:"+id) }
func (r *recorder) DrawChart(_ []model.TimelinePoint)    { r.calls = append(r.calls, "chart") }
func (r *recorder) ScrollIntoView(id string)             { r.calls = append(r.calls, "scroll:"+id) }

func sampleResult(speed int) model.AnalysisResult {
	return model.AnalysisResult{
		Type:            model.AnalysisRNN,
		Metrics:         model.Metrics{Speed: speed, Agility: 92, Coordination: 85, Overall: 88},
		Movements:       analysis.Movements(),
		Techniques:      analysis.Techniques(),
		Recommendations: analysis.Recommendations(),
		KeyMoments:      analysis.KeyMoments(),
		Timeline:        []model.TimelinePoint{{T: 0, Speed: 70, Agility: 70, Coordination: 80}},
	}
}

func TestRenderer_Render(t *testing.T) {
	Convey("Given a renderer and a document", t, func() {
		r := results.NewRenderer()
		doc := results.NewDocument()

		Convey("When a result is rendered", func() {
			r.Render(doc, sampleResult(88))
			view := doc.View()

			Convey("Then scores are formatted as <n>/100", func() {
				So(view.Metrics, ShouldResemble, model.DisplayedMetrics{
					Speed: "88/100", Agility: "92/100", Coordination: "85/100", Overall: "88/100",
				})
				So(doc.Displayed(), ShouldResemble, view.Metrics)
			})

			Convey("Then each list carries the result's rows", func() {
				So(len(view.Movements), ShouldEqual, 5)
				So(view.Movements[0], ShouldResemble, results.Item{
					Lead: "0:05", Text: "Sprint Start", Detail: "Quality: Excellent (95% confidence)",
				})
				So(view.Techniques[1], ShouldResemble, results.Item{
					Lead: "Arm Movement:", Text: "82/100", Detail: "Effective arm coordination during sprint",
				})
				So(view.Recommendations[4].Text, ShouldEqual, "Review and refine arm swing technique")
				So(view.KeyMoments[0].Detail, ShouldEqual, "Reached maximum velocity of 8.5 m/s")
			})

			Convey("Then the chart is drawn and the section scrolled into view", func() {
				So(len(view.Timeline), ShouldEqual, 1)
				So(view.ScrollTarget, ShouldEqual, results.ResultsSection)
				So(view.Renders, ShouldEqual, 1)
			})

			Convey("And a second render replaces rather than appends", func() {
				r.Render(doc, sampleResult(70))
				again := doc.View()
				So(len(again.Movements), ShouldEqual, 5)
				So(len(again.Recommendations), ShouldEqual, 5)
				So(again.Metrics.Speed, ShouldEqual, "70/100")
				So(again.Renders, ShouldEqual, 2)
			})
		})

		Convey("When nothing was rendered", func() {
			So(doc.Displayed(), ShouldResemble, model.DisplayedMetrics{})
			So(doc.List(results.MovementList), ShouldBeEmpty)
		})
	})

	Convey("Given a recording display", t, func() {
		rec := &recorder{}
		results.NewRenderer().Render(rec, sampleResult(80))

		Convey("Then every list is cleared before its first item", func() {
			for _, id := range []string{results.MovementList, results.TechniqueAnalysis,
				results.RecommendationsList, results.KeyMomentsList} {
				clearAt, firstItem := -1, -1
				for i, c := range rec.calls {
					if c == "clear:"+id && clearAt < 0 {
						clearAt = i
					}
					if c == "item:"+id && firstItem < 0 {
						firstItem = i
					}
				}
				So(clearAt, ShouldBeGreaterThanOrEqualTo, 0)
				So(clearAt, ShouldBeLessThan, firstItem)
			}
		})

		Convey("Then the chart and scroll come last", func() {
			n := len(rec.calls)
			So(rec.calls[n-2], ShouldEqual, "chart")
			So(rec.calls[n-1], ShouldEqual, "scroll:resultsSection")
		})
	})

	Convey("Given FormatScore", t, func() {
		So(results.FormatScore(0), ShouldEqual, "0/100")
		So(results.FormatScore(100), ShouldEqual, "100/100")
	})
}
