package chart

// PredictorClass selects how a predictor's curve is drawn.
type PredictorClass string

const (
	// DiscreteErrorBar draws one marker per category with asymmetric error
	// bars and an integer x-axis.
	DiscreteErrorBar PredictorClass = "discrete_error_bar"
	// DiscreteErrorBarWideTicks is DiscreteErrorBar with ticks every 100
	// over [0, 1000).
	DiscreteErrorBarWideTicks PredictorClass = "discrete_error_bar_wide_ticks"
	// ContinuousBand draws a prediction line inside a shaded confidence band.
	ContinuousBand PredictorClass = "continuous_band"
)

var predictorClasses = map[string]PredictorClass{
	"donorparity":     DiscreteErrorBar,
	"idbloodgroupcat": DiscreteErrorBar,
	"meandonorsex":    DiscreteErrorBar,
	"meanweekday":     DiscreteErrorBar,
	"numdoncat":       DiscreteErrorBar,
	"timesincecat":    DiscreteErrorBarWideTicks,
}

// ClassOf returns the render class of a predictor code. Predictors not listed
// as categorical are continuous.
func ClassOf(predictor string) PredictorClass {
	if class, ok := predictorClasses[predictor]; ok {
		return class
	}
	return ContinuousBand
}

// Discrete reports whether the class renders error bars.
func (c PredictorClass) Discrete() bool {
	return c == DiscreteErrorBar || c == DiscreteErrorBarWideTicks
}

// WideTickValues are the fixed x ticks of DiscreteErrorBarWideTicks.
func WideTickValues() []float64 {
	ticks := make([]float64, 0, 10)
	for v := 0; v < 1000; v += 100 {
		ticks = append(ticks, float64(v))
	}
	return ticks
}
