package chart

import (
	"fmt"

	"donorviz/domain/association"
)

// Querier is the read side of the association data store.
type Querier interface {
	Query(key association.Key) ([]association.ResultRow, *association.SignificanceRow)
}

// Build answers one selector change: it queries the store and renders the
// result. It has no side effects.
func Build(q Querier, names association.Names, sel association.SelectorState) ChartSpec {
	rows, sig := q.Query(sel.Key())
	return Render(rows, sig, sel.Label, sel.Predictor, names)
}

// Render maps the rows of one label/predictor/adjustment group to a chart.
// rows must be ordered by predictor value. A missing significance row or an
// empty group yields the empty chart.
func Render(rows []association.ResultRow, sig *association.SignificanceRow, label, predictor string, names association.Names) ChartSpec {
	if len(rows) == 0 || sig == nil {
		return EmptySpec()
	}

	labelName, ok := names.Labels.Lookup(label)
	if !ok {
		return EmptySpec()
	}
	predictorName, ok := names.Predictors.Lookup(predictor)
	if !ok {
		return EmptySpec()
	}

	class := ClassOf(predictor)
	spec := ChartSpec{
		Class:      class,
		Title:      Title(predictorName, labelName, sig.RawP, sig.FDRP),
		XAxis:      Axis{Title: predictorName, Visible: true, TickMode: TickAuto},
		YAxis:      Axis{Title: fmt.Sprintf("Delta %s (95%% CI)", labelName), Visible: true, TickMode: TickAuto},
		ShowLegend: false,
		Theme:      Theme,
		RawP:       sig.RawP,
		FDRP:       sig.FDRP,
	}

	switch class {
	case DiscreteErrorBar:
		spec.Series = []Series{pointSeries(rows)}
		spec.XAxis.TickMode = TickLinear
		spec.XAxis.Dtick = 1
	case DiscreteErrorBarWideTicks:
		spec.Series = []Series{pointSeries(rows)}
		spec.XAxis.TickMode = TickArray
		spec.XAxis.TickValues = WideTickValues()
	default:
		spec.Series = bandSeries(rows)
	}

	return spec
}

// EmptySpec is the placeholder shown for a selection without data.
func EmptySpec() ChartSpec {
	return ChartSpec{
		Empty:   true,
		Title:   EmptyTitle,
		Message: EmptyMessage,
		XAxis:   Axis{Visible: false},
		YAxis:   Axis{Visible: false},
		Theme:   Theme,
		Series:  []Series{},
	}
}

// Title builds the two-line chart title. Lines are separated by <br>.
func Title(predictorName, labelName string, rawP, fdrP float64) string {
	return fmt.Sprintf("Association between %s and Δ%s:<br>Raw p=%s, FDR-p=%s",
		predictorName, labelName, FormatPValue(rawP), FormatPValue(fdrP))
}

func pointSeries(rows []association.ResultRow) Series {
	s := Series{
		Name:       "Prediction",
		Role:       RolePoints,
		Mode:       ModeMarkers,
		X:          make([]float64, len(rows)),
		Y:          make([]float64, len(rows)),
		ErrorPlus:  make([]float64, len(rows)),
		ErrorMinus: make([]float64, len(rows)),
	}
	for i, r := range rows {
		s.X[i] = r.PredictorValue
		s.Y[i] = r.Predicted
		s.ErrorPlus[i] = r.Upper - r.Predicted
		s.ErrorMinus[i] = r.Predicted - r.Lower
	}
	return s
}

// bandSeries returns upper bound, lower bound filled back to the upper bound,
// and the prediction line, in drawing order.
func bandSeries(rows []association.ResultRow) []Series {
	n := len(rows)
	xs := make([]float64, n)
	upper := make([]float64, n)
	lower := make([]float64, n)
	predicted := make([]float64, n)
	for i, r := range rows {
		xs[i] = r.PredictorValue
		upper[i] = r.Upper
		lower[i] = r.Lower
		predicted[i] = r.Predicted
	}

	hidden := 0.0
	return []Series{
		{
			Name:      "Upper Bound",
			Role:      RoleUpperBound,
			Mode:      ModeLines,
			X:         xs,
			Y:         upper,
			LineColor: BoundColor,
			LineWidth: &hidden,
		},
		{
			Name:      "Lower Bound",
			Role:      RoleLowerBound,
			Mode:      ModeLines,
			X:         append([]float64(nil), xs...),
			Y:         lower,
			LineColor: BoundColor,
			LineWidth: &hidden,
			Fill:      FillToNext,
			FillColor: BandFillColor,
		},
		{
			Name:      "Prediction",
			Role:      RolePrediction,
			Mode:      ModeLines,
			X:         append([]float64(nil), xs...),
			Y:         predicted,
			LineColor: PredictionColor,
		},
	}
}
