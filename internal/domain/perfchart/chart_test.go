package perfchart_test

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/okian/motionlab/internal/domain/analysis"
	"github.com/okian/motionlab/internal/domain/model"
	"github.com/okian/motionlab/internal/domain/perfchart"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

type op struct {
	name string
	x, y int
	text string
}

// fakeSurface records drawing calls.
type fakeSurface struct {
	ops     []op
	strokes []drawing.Color
	stroke  drawing.Color
}

func (f *fakeSurface) SetStrokeColor(c drawing.Color) { f.stroke = c }
func (f *fakeSurface) SetFillColor(drawing.Color)     {}
func (f *fakeSurface) SetStrokeWidth(float64)         {}
func (f *fakeSurface) MoveTo(x, y int)                { f.ops = append(f.ops, op{name: "move", x: x, y: y}) }
func (f *fakeSurface) LineTo(x, y int)                { f.ops = append(f.ops, op{name: "line", x: x, y: y}) }
func (f *fakeSurface) Close()                         {}
func (f *fakeSurface) Stroke()                        { f.strokes = append(f.strokes, f.stroke) }
func (f *fakeSurface) Fill()                          {}
func (f *fakeSurface) SetFontColor(drawing.Color)     {}
func (f *fakeSurface) SetFontSize(float64)            {}
func (f *fakeSurface) Text(body string, x, y int) {
	f.ops = append(f.ops, op{name: "text", x: x, y: y, text: body})
}

func texts(f *fakeSurface) []op {
	var out []op
	for _, o := range f.ops {
		if o.name == "text" {
			out = append(out, o)
		}
	}
	return out
}

func TestProject(t *testing.T) {
	Convey("Given random timelines and surface sizes", t, func() {
		rng := rand.New(rand.NewSource(3))

		Convey("Then every plotted point stays inside the padded plot", func() {
			ok := true
			for trial := 0; trial < 2_000 && ok; trial++ {
				n := 1 + rng.Intn(60)
				l := perfchart.NewLayout(80+rng.Intn(1200), 80+rng.Intn(600))
				timeline := make([]model.TimelinePoint, n)
				for i := range timeline {
					// Include out-of-domain values; they are clamped.
					timeline[i] = model.TimelinePoint{T: i, Speed: rng.Float64()*140 - 20, Agility: rng.Float64() * 100, Coordination: 100}
				}
				for _, s := range perfchart.DefaultSeries() {
					for _, p := range perfchart.Project(l, timeline, s.Value) {
						if p.X < l.Padding || p.X > l.Width-l.Padding || p.Y < l.Padding || p.Y > l.Height-l.Padding {
							ok = false
						}
					}
				}
			}
			So(ok, ShouldBeTrue)
		})
	})

	Convey("Given the canvas layout 800x300", t, func() {
		l := perfchart.NewLayout(800, perfchart.DefaultHeight)
		timeline := []model.TimelinePoint{{Speed: 0}, {Speed: 50}, {Speed: 100}}
		points := perfchart.Project(l, timeline, func(p model.TimelinePoint) float64 { return p.Speed })

		Convey("Then x spreads evenly and y is inverted", func() {
			So(points, ShouldResemble, []perfchart.Point{{X: 40, Y: 260}, {X: 400, Y: 150}, {X: 760, Y: 40}})
		})

		Convey("Then a single point sits at x = padding", func() {
			one := perfchart.Project(l, timeline[:1], func(p model.TimelinePoint) float64 { return p.Speed })
			So(one, ShouldResemble, []perfchart.Point{{X: 40, Y: 260}})
		})
	})
}

func TestDraw(t *testing.T) {
	Convey("Given a fake surface", t, func() {
		f := &fakeSurface{}
		l := perfchart.NewLayout(800, 300)

		Convey("When drawing a thirty point timeline", func() {
			err := perfchart.Draw(f, l, analysis.Timeline(rand.New(rand.NewSource(9))))
			So(err, ShouldBeNil)

			Convey("Then the axis and three series are stroked in order", func() {
				So(f.strokes, ShouldResemble, []drawing.Color{
					perfchart.AxisColor, perfchart.SpeedColor, perfchart.AgilityColor, perfchart.CoordinationColor,
				})
			})

			Convey("Then the title and legend are placed like the canvas version", func() {
				So(texts(f), ShouldResemble, []op{
					{name: "text", x: 300, y: 20, text: "Performance Over Time"},
					{name: "text", x: 10, y: 20, text: "Speed"},
					{name: "text", x: 10, y: 50, text: "Agility"},
					{name: "text", x: 10, y: 80, text: "Coordination"},
				})
			})
		})

		Convey("When drawing an empty timeline", func() {
			So(perfchart.Draw(f, l, nil), ShouldBeNil)

			Convey("Then only the axis is stroked", func() {
				So(f.strokes, ShouldResemble, []drawing.Color{perfchart.AxisColor})
				So(len(texts(f)), ShouldEqual, 4)
			})
		})

		Convey("When the surface is smaller than the padding", func() {
			err := perfchart.Draw(f, perfchart.NewLayout(60, 300), nil)
			So(errors.Is(err, perfchart.ErrSurfaceTooSmall), ShouldBeTrue)
			So(f.ops, ShouldBeEmpty)
		})
	})
}

func TestRender(t *testing.T) {
	Convey("Given a timeline", t, func() {
		timeline := analysis.Timeline(rand.New(rand.NewSource(5)))
		var buf bytes.Buffer

		Convey("When rendering svg", func() {
			err := perfchart.Render(perfchart.FormatSVG, perfchart.NewLayout(640, 300), timeline, &buf)

			Convey("Then an svg document with the title is written", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "<svg")
				So(buf.String(), ShouldContainSubstring, "Performance Over Time")
			})
		})

		Convey("When rendering png", func() {
			err := perfchart.Render(perfchart.FormatPNG, perfchart.NewLayout(320, 200), timeline, &buf)

			Convey("Then png bytes are written", func() {
				So(err, ShouldBeNil)
				So(bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), ShouldBeTrue)
			})
		})
	})

	Convey("Given format names", t, func() {
		f, err := perfchart.ParseFormat("")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, perfchart.FormatSVG)
		So(f.ContentType(), ShouldEqual, "image/svg+xml")
		f, _ = perfchart.ParseFormat("png")
		So(f.ContentType(), ShouldEqual, "image/png")
		_, err = perfchart.ParseFormat("gif")
		So(errors.Is(err, perfchart.ErrUnknownFormat), ShouldBeTrue)
	})
}
