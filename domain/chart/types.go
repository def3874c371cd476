// Package chart turns a filtered slice of the association tables into a
// renderer-neutral chart description.
package chart

// Theme is the visual template applied to every chart.
const Theme = "ggplot2"

// Empty-state text.
const (
	EmptyTitle   = "Combination not possible"
	EmptyMessage = "No data available for the selected combination"
)

// Series plotting modes.
const (
	ModeMarkers = "markers"
	ModeLines   = "lines"
)

// FillToNext fills the area between a series and the one drawn before it.
const FillToNext = "tonexty"

// Colours of the band and prediction line.
const (
	BoundColor      = "#444"
	BandFillColor   = "rgba(68, 68, 68, 0.3)"
	PredictionColor = "rgb(31, 119, 180)"
)

// Tick modes understood by the renderers.
const (
	TickAuto   = "auto"
	TickLinear = "linear"
	TickArray  = "array"
)

// SeriesRole says what a series represents in the chart.
type SeriesRole string

const (
	RolePoints     SeriesRole = "points"
	RoleUpperBound SeriesRole = "upper_bound"
	RoleLowerBound SeriesRole = "lower_bound"
	RolePrediction SeriesRole = "prediction"
)

// ChartSpec is everything a renderer needs to draw one selection.
type ChartSpec struct {
	Empty      bool           `json:"empty"`
	Class      PredictorClass `json:"class,omitempty"`
	Title      string         `json:"title"`
	Message    string         `json:"message,omitempty"`
	XAxis      Axis           `json:"xaxis"`
	YAxis      Axis           `json:"yaxis"`
	ShowLegend bool           `json:"showlegend"`
	Theme      string         `json:"template"`
	Series     []Series       `json:"series"`
	RawP       float64        `json:"raw_p,omitempty"`
	FDRP       float64        `json:"fdr_p,omitempty"`
}

// Axis describes one chart axis.
type Axis struct {
	Title      string    `json:"title"`
	Visible    bool      `json:"visible"`
	TickMode   string    `json:"tickmode,omitempty"`
	Dtick      float64   `json:"dtick,omitempty"`
	TickValues []float64 `json:"tickvals,omitempty"`
}

// Series is one plotted trace.
type Series struct {
	Name       string     `json:"name"`
	Role       SeriesRole `json:"role"`
	Mode       string     `json:"mode"`
	X          []float64  `json:"x"`
	Y          []float64  `json:"y"`
	ErrorPlus  []float64  `json:"error_plus,omitempty"`
	ErrorMinus []float64  `json:"error_minus,omitempty"`
	Fill       string     `json:"fill,omitempty"`
	FillColor  string     `json:"fillcolor,omitempty"`
	LineColor  string     `json:"line_color,omitempty"`
	LineWidth  *float64   `json:"line_width,omitempty"`
}

// HasErrorBars reports whether the series carries asymmetric error bars.
func (s Series) HasErrorBars() bool {
	return len(s.ErrorPlus) > 0 || len(s.ErrorMinus) > 0
}
