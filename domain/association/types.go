// Package association holds the precomputed regression output that the
// dashboard displays: fitted effect curves per label/predictor pair and the
// significance of each pair.
package association

import (
	"fmt"
	"math"
)

// ResultRow is one point on a fitted association curve.
type ResultRow struct {
	Label          string  `json:"label" db:"label"`
	Predictor      string  `json:"predictor" db:"predictor"`
	PredictorValue float64 `json:"predictor_value" db:"predictorvalue"`
	Predicted      float64 `json:"predicted" db:"predicted"`
	Lower          float64 `json:"lower" db:"lower"`
	Upper          float64 `json:"upper" db:"upper"`
	Adjusted       bool    `json:"adjusted" db:"adjusted"`
}

// Key returns the join key of the row.
func (r ResultRow) Key() Key {
	return Key{Label: r.Label, Predictor: r.Predictor, Adjusted: r.Adjusted}
}

// Bounded reports whether the prediction lies inside its confidence bounds.
func (r ResultRow) Bounded() bool {
	return r.Lower <= r.Predicted && r.Predicted <= r.Upper
}

// Finite reports whether every numeric field is a finite number.
func (r ResultRow) Finite() bool {
	return finite(r.PredictorValue, r.Predicted, r.Lower, r.Upper)
}

// SignificanceRow is the test result for one label/predictor/adjustment group.
type SignificanceRow struct {
	Label     string  `json:"label" db:"label"`
	Predictor string  `json:"predictor" db:"predictor"`
	Adjusted  bool    `json:"adjusted" db:"adjusted"`
	RawP      float64 `json:"raw_p" db:"probf"`
	FDRP      float64 `json:"fdr_p" db:"fdr_p"`
}

// Key returns the join key of the row.
func (s SignificanceRow) Key() Key {
	return Key{Label: s.Label, Predictor: s.Predictor, Adjusted: s.Adjusted}
}

// Finite reports whether both p-values are finite numbers.
func (s SignificanceRow) Finite() bool {
	return finite(s.RawP, s.FDRP)
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Key joins result rows to their significance row.
type Key struct {
	Label     string `json:"label"`
	Predictor string `json:"predictor"`
	Adjusted  bool   `json:"adjusted"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/adjusted=%t", k.Label, k.Predictor, k.Adjusted)
}

// SelectorState is the current choice of the three dashboard controls.
type SelectorState struct {
	Label     string `json:"label" form:"label"`
	Predictor string `json:"predictor" form:"predictor"`
	Adjusted  bool   `json:"adjusted" form:"adjusted"`
}

// Default selector values shown when the dashboard first loads.
const (
	DefaultLabel     = "HB"
	DefaultPredictor = "meandonorhb"
)

// DefaultSelector returns the initial dashboard selection.
func DefaultSelector() SelectorState {
	return SelectorState{Label: DefaultLabel, Predictor: DefaultPredictor, Adjusted: false}
}

// Key converts the selection into a table join key.
func (s SelectorState) Key() Key {
	return Key{Label: s.Label, Predictor: s.Predictor, Adjusted: s.Adjusted}
}

// ResultTable is a parsed results table together with the number of rows
// that were dropped for missing numeric values.
type ResultTable struct {
	Rows       []ResultRow
	Incomplete int
}

// SignificanceTable is a parsed significance table together with the number
// of rows that were dropped for missing numeric values.
type SignificanceTable struct {
	Rows       []SignificanceRow
	Incomplete int
}
