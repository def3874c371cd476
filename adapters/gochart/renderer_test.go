package gochart

import (
	"bytes"
	"testing"

	"donorviz/domain/association"
	domainchart "donorviz/domain/chart"
	"donorviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func rows(predictor string, xs ...float64) []association.ResultRow {
	out := make([]association.ResultRow, len(xs))
	for i, x := range xs {
		out[i] = association.ResultRow{
			Label: "HB", Predictor: predictor, PredictorValue: x,
			Predicted: x / 100, Lower: x/100 - 0.2, Upper: x/100 + 0.3,
		}
	}
	return out
}

func build(predictor string, xs ...float64) domainchart.ChartSpec {
	sig := &association.SignificanceRow{Label: "HB", Predictor: predictor, RawP: 0.0000432, FDRP: 0.5}
	return domainchart.Render(rows(predictor, xs...), sig, "HB", predictor, association.DefaultNames())
}

func render(t *testing.T, spec domainchart.ChartSpec, format Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, New().Render(spec, format, &buf))
	return buf.Bytes()
}

func TestRenderEveryClassAsPNG(t *testing.T) {
	cases := map[string]domainchart.ChartSpec{
		"band":       build("meandonorhb", 110, 120, 130, 140),
		"discrete":   build("donorparity", 0, 1, 2, 3),
		"wide ticks": build("timesincecat", 50, 150, 400, 950),
		"single":     build("meandonorage", 40),
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			out := render(t, spec, FormatPNG)
			assert.True(t, bytes.HasPrefix(out, pngMagic))
		})
	}
}

func TestRenderSVG(t *testing.T) {
	out := render(t, build("meandonorhb", 110, 120, 130), FormatSVG)
	assert.Contains(t, string(out), "<svg")
}

func TestRenderEmpty(t *testing.T) {
	out := render(t, domainchart.EmptySpec(), FormatPNG)
	assert.True(t, bytes.HasPrefix(out, pngMagic))

	svg := render(t, domainchart.EmptySpec(), FormatSVG)
	assert.Contains(t, string(svg), domainchart.EmptyTitle)
	assert.Contains(t, string(svg), domainchart.EmptyMessage)
}

func TestRenderIsIdempotent(t *testing.T) {
	spec := build("donorparity", 0, 1, 2)
	assert.Equal(t, render(t, spec, FormatPNG), render(t, spec, FormatPNG))
	assert.Equal(t, render(t, spec, FormatSVG), render(t, spec, FormatSVG))
}

func TestBuildSeriesBandOrder(t *testing.T) {
	series, err := New().buildSeries(build("meandonorhb", 110, 120).Series)
	require.NoError(t, err)

	// Bounds have zero width, so only the band and the prediction line draw.
	require.Len(t, series, 2)
	band, ok := series[0].(*bandSeries)
	require.True(t, ok)
	assert.Equal(t, []float64{1.1 + 0.3, 1.2 + 0.3}, band.upper)
	assert.Equal(t, "Prediction", series[1].GetName())
}

func TestBuildSeriesRejectsMismatch(t *testing.T) {
	_, err := New().buildSeries([]domainchart.Series{{Name: "x", X: []float64{1, 2}, Y: []float64{1}}})
	require.Error(t, err)
}

func TestXTicks(t *testing.T) {
	linear := xTicks(domainchart.Axis{TickMode: domainchart.TickLinear, Dtick: 1}, -0.5, 3.5)
	require.Len(t, linear, 4)
	assert.Equal(t, "0", linear[0].Label)
	assert.Equal(t, 3.0, linear[3].Value)

	wide := xTicks(domainchart.Axis{TickMode: domainchart.TickArray, TickValues: domainchart.WideTickValues()}, 40, 460)
	require.Len(t, wide, 4)
	assert.Equal(t, 100.0, wide[0].Value)

	assert.Nil(t, xTicks(domainchart.Axis{TickMode: domainchart.TickAuto}, 0, 10))
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, drawing.Color{R: 68, G: 68, B: 68, A: 255}, parseColor("#444"))
	assert.Equal(t, drawing.Color{R: 31, G: 119, B: 180, A: 255}, parseColor("rgb(31, 119, 180)"))
	assert.Equal(t, drawing.Color{R: 68, G: 68, B: 68, A: 77}, parseColor("rgba(68, 68, 68, 0.3)"))
	assert.Equal(t, drawing.ColorBlack, parseColor("teal"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".SVG")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
