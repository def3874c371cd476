package gochart

import (
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// bandSeries fills the polygon between an upper and a lower line that share
// x values.
type bandSeries struct {
	name  string
	xs    []float64
	upper []float64
	lower []float64
	color drawing.Color
}

func (b *bandSeries) GetName() string { return b.name }

func (b *bandSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (b *bandSeries) GetStyle() chart.Style { return chart.Style{FillColor: b.color} }

func (b *bandSeries) Validate() error {
	if len(b.xs) == 0 || len(b.xs) != len(b.upper) || len(b.xs) != len(b.lower) {
		return fmt.Errorf("band series %q: mismatched lengths %d/%d/%d", b.name, len(b.xs), len(b.upper), len(b.lower))
	}
	return nil
}

func (b *bandSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	px := func(v float64) int { return canvasBox.Left + xrange.Translate(v) }
	py := func(v float64) int { return canvasBox.Bottom - yrange.Translate(v) }

	r.SetFillColor(b.color)
	r.SetStrokeWidth(0)
	r.MoveTo(px(b.xs[0]), py(b.upper[0]))
	for i := 1; i < len(b.xs); i++ {
		r.LineTo(px(b.xs[i]), py(b.upper[i]))
	}
	for i := len(b.xs) - 1; i >= 0; i-- {
		r.LineTo(px(b.xs[i]), py(b.lower[i]))
	}
	r.Close()
	r.Fill()
}

// errorBarSeries draws a vertical whisker with caps at every point.
type errorBarSeries struct {
	name  string
	xs    []float64
	ys    []float64
	plus  []float64
	minus []float64
	color drawing.Color
}

func (e *errorBarSeries) GetName() string { return e.name }

func (e *errorBarSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (e *errorBarSeries) GetStyle() chart.Style {
	return chart.Style{StrokeColor: e.color, StrokeWidth: 1}
}

func (e *errorBarSeries) Validate() error {
	if len(e.xs) != len(e.ys) {
		return fmt.Errorf("error bar series %q: %d x and %d y values", e.name, len(e.xs), len(e.ys))
	}
	return nil
}

func (e *errorBarSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	r.SetStrokeColor(e.color)
	r.SetStrokeWidth(1)
	for i := range e.xs {
		top, bottom := e.ys[i], e.ys[i]
		if i < len(e.plus) {
			top += e.plus[i]
		}
		if i < len(e.minus) {
			bottom -= e.minus[i]
		}

		x := canvasBox.Left + xrange.Translate(e.xs[i])
		yTop := canvasBox.Bottom - yrange.Translate(top)
		yBottom := canvasBox.Bottom - yrange.Translate(bottom)

		r.MoveTo(x, yTop)
		r.LineTo(x, yBottom)
		r.MoveTo(x-errorCapWidth, yTop)
		r.LineTo(x+errorCapWidth, yTop)
		r.MoveTo(x-errorCapWidth, yBottom)
		r.LineTo(x+errorCapWidth, yBottom)
		r.Stroke()
	}
}
