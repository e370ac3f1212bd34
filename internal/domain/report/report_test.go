package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/internal/domain/report"
	"github.com/pmezard/go-difflib/difflib"
	. "github.com/smartystreets/goconvey/convey"
)

var at = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func TestSerialize_Golden(t *testing.T) {
	actual, err := report.Serialize(model.DisplayedMetrics{
		Speed: "88/100", Agility: "92/100", Coordination: "85/100", Overall: "88/100",
	}, model.AnalysisRNN, at)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	goldenPath := filepath.Join("testdata", "report_rnn.golden")
	if os.Getenv("UPDATE_GOLDENS") == "true" {
		if err := os.WriteFile(goldenPath, []byte(actual), 0o644); err != nil {
			t.Fatalf("write golden: %v", err)
		}
		return
	}
	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if actual != string(expected) {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(expected)),
			B:        difflib.SplitLines(actual),
			FromFile: "Expected",
			ToFile:   "Actual",
			Context:  3,
		})
		t.Errorf("report mismatch:\n%s", diff)
	}
}

func TestSerialize(t *testing.T) {
	Convey("Given displayed metrics and a type", t, func() {
		m := model.DisplayedMetrics{Speed: "77/100", Agility: "100/100", Coordination: "81/100", Overall: "86/100"}

		Convey("Then every metric string and the uppercased label appear verbatim", func() {
			for _, at2 := range append(model.AnalysisTypes, model.AnalysisType("custom")) {
				out, err := report.Serialize(m, at2, at)
				So(err, ShouldBeNil)
				for _, s := range []string{m.Speed, m.Agility, m.Coordination, m.Overall} {
					So(out, ShouldContainSubstring, s)
				}
				So(out, ShouldContainSubstring, "advanced "+strings.ToUpper(string(at2))+" analysis.")
			}
		})

		Convey("When the metrics were never set", func() {
			out, err := report.Serialize(model.DisplayedMetrics{}, model.AnalysisCNN, at)

			Convey("Then the empty values are embedded as-is", func() {
				So(err, ShouldBeNil)
				So(out, ShouldContainSubstring, "Speed Score: \n")
				So(out, ShouldContainSubstring, "Overall Rating: \n")
			})
		})

		Convey("When metric strings contain markup", func() {
			out, _ := report.Serialize(model.DisplayedMetrics{Speed: "<b>&"}, model.AnalysisCNN, at)
			So(out, ShouldContainSubstring, "Speed Score: <b>&\n")
		})
	})

	Convey("Given a timestamp", t, func() {
		So(report.Filename(at), ShouldEqual, "sports_analysis_report_1740823200000.txt")
	})
}
