package association

// LoadStats counts what happened to the input rows while building the store.
type LoadStats struct {
	ResultRows             int `json:"result_rows"`
	SignificanceRows       int `json:"significance_rows"`
	IncompleteResults      int `json:"incomplete_results_dropped"`
	IncompleteSignificance int `json:"incomplete_significance_dropped"`
	UnboundedResults       int `json:"unbounded_results_dropped"`
	DuplicateSignificance  int `json:"duplicate_significance_dropped"`
	Groups                 int `json:"groups"`
}

// Dropped returns the total number of rows excluded at load time.
func (s LoadStats) Dropped() int {
	return s.IncompleteResults + s.IncompleteSignificance + s.UnboundedResults + s.DuplicateSignificance
}

// OverviewEntry is one label/predictor/adjustment combination of the
// significance table.
type OverviewEntry struct {
	Key           Key     `json:"key"`
	LabelName     string  `json:"label_name"`
	PredictorName string  `json:"predictor_name"`
	RawP          float64 `json:"raw_p"`
	FDRP          float64 `json:"fdr_p"`
	Significant   bool    `json:"significant"`
}

// Overview summarises the significance table.
type Overview struct {
	Alpha        float64         `json:"alpha"`
	Combinations int             `json:"combinations"`
	Significant  int             `json:"significant"`
	MedianRawP   float64         `json:"median_raw_p"`
	MedianFDRP   float64         `json:"median_fdr_p"`
	Top          []OverviewEntry `json:"top"`
}
