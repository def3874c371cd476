// Package gochart draws chart descriptions to PNG or SVG on the server with
// go-chart.
package gochart

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	domainchart "donorviz/domain/chart"
	"donorviz/internal/errors"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
)

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// Default canvas size.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

const (
	titleFontSize = 12.0
	titleTop      = 22
	titleLeading  = 18
	titlePadding  = 60
	markerSize    = 4.0
	lineWidth     = 2.0
	errorCapWidth = 4
)

var (
	canvasColor = drawing.Color{R: 235, G: 235, B: 235, A: 255}
	textColor   = drawing.Color{R: 51, G: 51, B: 51, A: 255}
	markerColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}
)

// ParseFormat maps a file extension or query value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unsupported image format %q", s))
	}
}

// ContentType is the HTTP media type of the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Renderer draws chart descriptions. The zero value is not usable; call New.
type Renderer struct {
	Width  int
	Height int
}

// New creates a renderer with the default canvas size.
func New() *Renderer {
	return &Renderer{Width: DefaultWidth, Height: DefaultHeight}
}

// Render writes the chart in the given format. The same input always
// produces the same bytes.
func (r *Renderer) Render(spec domainchart.ChartSpec, format Format, w io.Writer) error {
	provider := chart.PNG
	if format == FormatSVG {
		provider = chart.SVG
	}

	if spec.Empty || len(spec.Series) == 0 {
		return r.renderEmpty(spec, provider, w)
	}

	series, err := r.buildSeries(spec.Series)
	if err != nil {
		return err
	}

	xMin, xMax := xExtent(spec.Series)
	if spec.XAxis.TickMode == domainchart.TickLinear || spec.XAxis.TickMode == domainchart.TickArray {
		xMin, xMax = xMin-0.5, xMax+0.5
	}
	xMin, xMax = pad(xMin, xMax, 0.02)
	yMin, yMax := yExtent(spec.Series)
	yMin, yMax = pad(yMin, yMax, 0.05)

	c := chart.Chart{
		Width:  r.Width,
		Height: r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: titlePadding, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{FillColor: canvasColor},
		XAxis: chart.XAxis{
			Name:  spec.XAxis.Title,
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
			Ticks: xTicks(spec.XAxis, xMin, xMax),
		},
		YAxis: chart.YAxis{
			Name:  spec.YAxis.Title,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series:   series,
		Elements: []chart.Renderable{titleElement(spec.Title, r.Width)},
	}

	var buf bytes.Buffer
	if err := c.Render(provider, &buf); err != nil {
		return errors.Wrap(err, "failed to render chart")
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// buildSeries maps chart series to go-chart series in drawing order. A
// series filled to the next one becomes a band polygon drawn before both
// bounds.
func (r *Renderer) buildSeries(in []domainchart.Series) ([]chart.Series, error) {
	var out []chart.Series
	for i, s := range in {
		if len(s.X) != len(s.Y) || len(s.X) == 0 {
			return nil, errors.InternalError(fmt.Sprintf("series %q has %d x and %d y values", s.Name, len(s.X), len(s.Y)))
		}

		if s.Fill == domainchart.FillToNext && i > 0 {
			prev := in[i-1]
			out = append(out, &bandSeries{
				name:  s.Name,
				xs:    s.X,
				upper: prev.Y,
				lower: s.Y,
				color: parseColor(s.FillColor),
			})
		}

		switch s.Mode {
		case domainchart.ModeMarkers:
			out = append(out, chart.ContinuousSeries{
				Name:    s.Name,
				XValues: s.X,
				YValues: s.Y,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    markerSize,
					DotColor:    markerColor,
				},
			})
			if s.HasErrorBars() {
				out = append(out, &errorBarSeries{
					name:  s.Name + " error",
					xs:    s.X,
					ys:    s.Y,
					plus:  s.ErrorPlus,
					minus: s.ErrorMinus,
					color: markerColor,
				})
			}
		default:
			if s.LineWidth != nil && *s.LineWidth <= 0 {
				continue
			}
			width := lineWidth
			if s.LineWidth != nil {
				width = *s.LineWidth
			}
			out = append(out, chart.ContinuousSeries{
				Name:    s.Name,
				XValues: s.X,
				YValues: s.Y,
				Style: chart.Style{
					StrokeWidth: width,
					StrokeColor: parseColor(s.LineColor),
				},
			})
		}
	}
	return out, nil
}

// renderEmpty draws the placeholder directly on a renderer. go-chart refuses
// charts without series.
func (r *Renderer) renderEmpty(spec domainchart.ChartSpec, provider chart.RendererProvider, w io.Writer) error {
	rr, err := provider(r.Width, r.Height)
	if err != nil {
		return errors.Wrap(err, "failed to create renderer")
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return errors.Wrap(err, "failed to load font")
	}
	rr.SetDPI(chart.DefaultDPI)

	rr.SetFillColor(drawing.ColorWhite)
	rr.SetStrokeWidth(0)
	rr.MoveTo(0, 0)
	rr.LineTo(r.Width, 0)
	rr.LineTo(r.Width, r.Height)
	rr.LineTo(0, r.Height)
	rr.Close()
	rr.Fill()

	rr.SetFont(font)
	rr.SetFontColor(textColor)

	rr.SetFontSize(titleFontSize + 2)
	tb := rr.MeasureText(spec.Title)
	rr.Text(spec.Title, (r.Width-tb.Width())/2, titleTop+tb.Height())

	rr.SetFontSize(titleFontSize)
	mb := rr.MeasureText(spec.Message)
	rr.Text(spec.Message, (r.Width-mb.Width())/2, (r.Height+mb.Height())/2)

	if err := rr.Save(w); err != nil {
		return errors.Wrap(err, "failed to write image")
	}
	return nil
}

// titleElement draws the title centred above the canvas, one line per
// <br>-separated part.
func titleElement(title string, width int) chart.Renderable {
	lines := strings.Split(title, "<br>")
	return func(r chart.Renderer, _ chart.Box, defaults chart.Style) {
		r.SetFont(defaults.GetFont())
		r.SetFontColor(textColor)
		r.SetFontSize(titleFontSize)
		for i, line := range lines {
			b := r.MeasureText(line)
			r.Text(line, (width-b.Width())/2, titleTop+i*titleLeading)
		}
	}
}

func xExtent(series []domainchart.Series) (float64, float64) {
	var xs []float64
	for _, s := range series {
		xs = append(xs, s.X...)
	}
	return floats.Min(xs), floats.Max(xs)
}

// yExtent covers every plotted value including error bar ends.
func yExtent(series []domainchart.Series) (float64, float64) {
	var ys []float64
	for _, s := range series {
		ys = append(ys, s.Y...)
		for i, y := range s.Y {
			if i < len(s.ErrorPlus) {
				ys = append(ys, y+s.ErrorPlus[i])
			}
			if i < len(s.ErrorMinus) {
				ys = append(ys, y-s.ErrorMinus[i])
			}
		}
	}
	return floats.Min(ys), floats.Max(ys)
}

// pad widens [min, max] by frac of its span, or by one unit when the span is
// zero.
func pad(min, max, frac float64) (float64, float64) {
	span := max - min
	if span == 0 {
		return min - 1, max + 1
	}
	return min - span*frac, max + span*frac
}

func xTicks(axis domainchart.Axis, min, max float64) []chart.Tick {
	var values []float64
	switch axis.TickMode {
	case domainchart.TickLinear:
		step := axis.Dtick
		if step <= 0 {
			return nil
		}
		for v := math.Ceil(min/step) * step; v <= max; v += step {
			values = append(values, v)
		}
	case domainchart.TickArray:
		for _, v := range axis.TickValues {
			if v >= min && v <= max {
				values = append(values, v)
			}
		}
	default:
		return nil
	}

	ticks := make([]chart.Tick, 0, len(values))
	for _, v := range values {
		ticks = append(ticks, chart.Tick{Value: v, Label: strconv.FormatFloat(v, 'f', -1, 64)})
	}
	return ticks
}

// parseColor understands #rgb, #rrggbb, rgb(r, g, b) and rgba(r, g, b, a).
func parseColor(s string) drawing.Color {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#"):
		return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
	case strings.HasPrefix(s, "rgb"):
		open, end := strings.Index(s, "("), strings.LastIndex(s, ")")
		if open < 0 || end < open {
			return drawing.ColorBlack
		}
		parts := strings.Split(s[open+1:end], ",")
		if len(parts) < 3 {
			return drawing.ColorBlack
		}
		c := drawing.Color{A: 255}
		channels := []*uint8{&c.R, &c.G, &c.B}
		for i, ch := range channels {
			v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
			if err != nil {
				return drawing.ColorBlack
			}
			*ch = uint8(clamp(float64(v), 0, 255))
		}
		if len(parts) == 4 {
			a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
			if err == nil {
				c.A = uint8(math.Round(clamp(a, 0, 1) * 255))
			}
		}
		return c
	default:
		return drawing.ColorBlack
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
