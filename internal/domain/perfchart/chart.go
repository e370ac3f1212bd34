// Package perfchart draws the "Performance Over Time" line chart.
//
// Draw issues path and text calls against a Surface, which go-chart's SVG
// and PNG renderers satisfy. The layout is fixed: 40 units of padding on
// every side, a [0,100] value domain with 100 at the top of the plot, and one
// polyline per series with points evenly spaced by index.
package perfchart

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/okian/motionlab/internal/domain/model"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Layout constants.
const (
	DefaultPadding = 40
	DefaultHeight  = 300
	maxValue       = 100
	lineWidth      = 3
	fontSize       = 14
	title          = "Performance Over Time"
)

// Palette.
var (
	AxisColor         = drawing.ColorFromHex("8338ec") //nolint:gochecknoglobals // palette
	SpeedColor        = drawing.ColorFromHex("ff006e") //nolint:gochecknoglobals // palette
	AgilityColor      = drawing.ColorFromHex("3a86ff") //nolint:gochecknoglobals // palette
	CoordinationColor = drawing.ColorFromHex("06ffa5") //nolint:gochecknoglobals // palette
	LabelColor        = drawing.ColorFromHex("1a1a1a") //nolint:gochecknoglobals // palette
	BackgroundColor   = drawing.ColorWhite             //nolint:gochecknoglobals // palette
)

// ErrSurfaceTooSmall is returned when the surface cannot hold the padding.
var ErrSurfaceTooSmall = errors.New("chart surface smaller than padding")

// ErrUnknownFormat is returned for formats other than svg and png.
var ErrUnknownFormat = errors.New("unknown chart format")

// Surface is the subset of a go-chart Renderer the chart draws with.
type Surface interface {
	SetStrokeColor(drawing.Color)
	SetFillColor(drawing.Color)
	SetStrokeWidth(width float64)
	MoveTo(x, y int)
	LineTo(x, y int)
	Close()
	Stroke()
	Fill()
	SetFontColor(drawing.Color)
	SetFontSize(size float64)
	Text(body string, x, y int)
}

// Layout sizes the drawing region.
type Layout struct {
	Width   int
	Height  int
	Padding int
}

// NewLayout returns a layout of w x h with the default padding.
func NewLayout(w, h int) Layout {
	return Layout{Width: w, Height: h, Padding: DefaultPadding}
}

// Validate reports whether the layout can hold its padding on both axes.
func (l Layout) Validate() error {
	if l.Padding < 0 || l.Width < 2*l.Padding || l.Height < 2*l.Padding {
		return fmt.Errorf("%w: %dx%d with padding %d", ErrSurfaceTooSmall, l.Width, l.Height, l.Padding)
	}
	return nil
}

// PlotWidth is the horizontal extent available to series.
func (l Layout) PlotWidth() int { return l.Width - 2*l.Padding }

// PlotHeight is the vertical extent available to series.
func (l Layout) PlotHeight() int { return l.Height - 2*l.Padding }

// Point is a projected surface coordinate.
type Point struct {
	X int
	Y int
}

// Series selects one value from a timeline point.
type Series struct {
	Name  string
	Color drawing.Color
	Value func(model.TimelinePoint) float64
}

// DefaultSeries are drawn in this order.
func DefaultSeries() []Series {
	return []Series{
		{Name: "Speed", Color: SpeedColor, Value: func(p model.TimelinePoint) float64 { return p.Speed }},
		{Name: "Agility", Color: AgilityColor, Value: func(p model.TimelinePoint) float64 { return p.Agility }},
		{Name: "Coordination", Color: CoordinationColor, Value: func(p model.TimelinePoint) float64 { return p.Coordination }},
	}
}

// Project maps one series onto the layout. Values are clamped to [0,100]. A
// single point is placed at x = padding.
func Project(l Layout, timeline []model.TimelinePoint, value func(model.TimelinePoint) float64) []Point {
	n := len(timeline)
	points := make([]Point, n)
	plotW, plotH := float64(l.PlotWidth()), float64(l.PlotHeight())
	for i, p := range timeline {
		x := l.Padding
		if n > 1 {
			x += int(math.Round(float64(i) / float64(n-1) * plotW))
		}
		v := math.Max(0, math.Min(maxValue, value(p)))
		y := l.Height - l.Padding - int(math.Round(v/maxValue*plotH))
		points[i] = Point{X: x, Y: y}
	}
	return points
}

// Draw clears the surface, then draws the axes, the three series, the title
// and the legend, in that order. An empty timeline draws axes and labels only.
func Draw(s Surface, l Layout, timeline []model.TimelinePoint) error {
	if err := l.Validate(); err != nil {
		return err
	}

	s.SetFillColor(BackgroundColor)
	s.MoveTo(0, 0)
	s.LineTo(l.Width, 0)
	s.LineTo(l.Width, l.Height)
	s.LineTo(0, l.Height)
	s.Close()
	s.Fill()

	s.SetStrokeColor(AxisColor)
	s.SetStrokeWidth(lineWidth)
	s.MoveTo(l.Padding, l.Padding)
	s.LineTo(l.Padding, l.Height-l.Padding)
	s.LineTo(l.Width-l.Padding, l.Height-l.Padding)
	s.Stroke()

	series := DefaultSeries()
	for _, ser := range series {
		points := Project(l, timeline, ser.Value)
		if len(points) == 0 {
			continue
		}
		s.SetStrokeColor(ser.Color)
		s.SetStrokeWidth(lineWidth)
		s.MoveTo(points[0].X, points[0].Y)
		for _, p := range points[1:] {
			s.LineTo(p.X, p.Y)
		}
		s.Stroke()
	}

	s.SetFontColor(LabelColor)
	s.SetFontSize(fontSize)
	s.Text(title, l.Width/2-100, 20)
	for i, ser := range series {
		s.Text(ser.Name, l.Padding-30, 20+30*i)
	}
	return nil
}

// Format is an output encoding.
type Format string

// Supported formats.
const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat accepts "svg" or "png". Empty means svg.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the HTTP media type for f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Render draws timeline with go-chart's renderer for f and writes the encoded
// image to w.
func Render(f Format, l Layout, timeline []model.TimelinePoint, w io.Writer) error {
	if err := l.Validate(); err != nil {
		return err
	}
	provider := chart.SVG
	if f == FormatPNG {
		provider = chart.PNG
	}
	r, err := provider(l.Width, l.Height)
	if err != nil {
		return fmt.Errorf("create %s renderer: %w", f, err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("load chart font: %w", err)
	}
	r.SetFont(font)
	if err := Draw(r, l, timeline); err != nil {
		return err
	}
	if err := r.Save(w); err != nil {
		return fmt.Errorf("encode %s chart: %w", f, err)
	}
	return nil
}
