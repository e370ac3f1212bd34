package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/motionlab/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseAnalysisType(t *testing.T) {
	convey.Convey("Given selector values", t, func() {
		convey.Convey("When they are known", func() {
			for in, want := range map[string]model.AnalysisType{
				"cnn": model.AnalysisCNN, "RNN": model.AnalysisRNN, " hybrid ": model.AnalysisHybrid,
			} {
				got, err := model.ParseAnalysisType(in)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, want)
			}
		})

		convey.Convey("When they are unknown", func() {
			_, err := model.ParseAnalysisType("svm")
			convey.So(errors.Is(err, model.ErrUnknownAnalysisType), convey.ShouldBeTrue)
			_, err = model.ParseAnalysisType("")
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(model.AnalysisType("svm").Valid(), convey.ShouldBeFalse)
			convey.So(model.AnalysisType("RNN").Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestAnalysisTypeMultipliers(t *testing.T) {
	convey.Convey("Given each analysis type", t, func() {
		s, a, c := model.AnalysisCNN.Multipliers()
		convey.So([]float64{s, a, c}, convey.ShouldResemble, []float64{1, 1, 1})
		s, a, c = model.AnalysisRNN.Multipliers()
		convey.So([]float64{s, a, c}, convey.ShouldResemble, []float64{1.10, 1.15, 1})
		s, a, c = model.AnalysisHybrid.Multipliers()
		convey.So([]float64{s, a, c}, convey.ShouldResemble, []float64{1.20, 1.20, 1.10})

		convey.Convey("Then every type is at least as strong as cnn", func() {
			for _, at := range model.AnalysisTypes {
				s, a, c := at.Multipliers()
				convey.So(s, convey.ShouldBeGreaterThanOrEqualTo, 1)
				convey.So(a, convey.ShouldBeGreaterThanOrEqualTo, 1)
				convey.So(c, convey.ShouldBeGreaterThanOrEqualTo, 1)
			}
		})

		convey.Convey("Then labels match the selector", func() {
			convey.So(model.AnalysisRNN.Upper(), convey.ShouldEqual, "RNN")
			convey.So(model.AnalysisHybrid.DisplayName(), convey.ShouldEqual, "Hybrid Model")
			convey.So(model.AnalysisCNN.DisplayName(), convey.ShouldEqual, "CNN (Convolutional Neural Network)")
		})
	})
}
