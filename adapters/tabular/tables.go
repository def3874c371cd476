package tabular

import (
	"context"
	"math"
	"strconv"
	"strings"

	"donorviz/domain/association"
	"donorviz/internal/errors"
)

// Column names of the two external tables.
const (
	ColLabel          = "label"
	ColPredictor      = "predictor"
	ColPredictorValue = "predictorvalue"
	ColPredicted      = "predicted"
	ColUpper          = "upper"
	ColLower          = "lower"
	ColAdjusted       = "adjusted"
	ColRawP           = "ProbF"
	ColFDRP           = "fdr_p"
)

var resultColumns = []string{ColLabel, ColPredictor, ColPredictorValue, ColPredicted, ColUpper, ColLower, ColAdjusted}

var significanceColumns = []string{ColLabel, ColPredictor, ColRawP, ColFDRP, ColAdjusted}

// FileSource reads the results and significance tables from two files.
type FileSource struct {
	results      *DataReader
	significance *DataReader
}

// NewFileSource creates a source over a results file and a significance file.
func NewFileSource(resultsPath, significancePath string) *FileSource {
	return &FileSource{
		results:      NewDataReader(resultsPath),
		significance: NewDataReader(significancePath),
	}
}

// Name describes the source for logs.
func (s *FileSource) Name() string {
	return "file:" + s.results.Path() + "," + s.significance.Path()
}

// Results reads and parses the results table.
func (s *FileSource) Results(ctx context.Context) (association.ResultTable, error) {
	if err := ctx.Err(); err != nil {
		return association.ResultTable{}, err
	}
	table, err := s.results.ReadData()
	if err != nil {
		return association.ResultTable{}, errors.DataSourceError("results file", err)
	}
	return ParseResults(table)
}

// Significance reads and parses the significance table.
func (s *FileSource) Significance(ctx context.Context) (association.SignificanceTable, error) {
	if err := ctx.Err(); err != nil {
		return association.SignificanceTable{}, err
	}
	table, err := s.significance.ReadData()
	if err != nil {
		return association.SignificanceTable{}, errors.DataSourceError("significance file", err)
	}
	return ParseSignificance(table)
}

// ParseResults converts a raw results table into typed rows. Rows with a
// missing or non-numeric required value are dropped and counted.
func ParseResults(t *Table) (association.ResultTable, error) {
	cols, err := resolveColumns(t.Headers, resultColumns, "results")
	if err != nil {
		return association.ResultTable{}, err
	}

	out := association.ResultTable{Rows: make([]association.ResultRow, 0, len(t.Rows))}
	for _, raw := range t.Rows {
		row, ok := parseResultRow(raw, cols)
		if !ok {
			out.Incomplete++
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// ParseSignificance converts a raw significance table into typed rows. Rows
// with a missing or non-numeric required value are dropped and counted.
func ParseSignificance(t *Table) (association.SignificanceTable, error) {
	cols, err := resolveColumns(t.Headers, significanceColumns, "significance")
	if err != nil {
		return association.SignificanceTable{}, err
	}

	out := association.SignificanceTable{Rows: make([]association.SignificanceRow, 0, len(t.Rows))}
	for _, raw := range t.Rows {
		row, ok := parseSignificanceRow(raw, cols)
		if !ok {
			out.Incomplete++
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

func parseResultRow(raw RawRow, cols map[string]string) (association.ResultRow, bool) {
	label, ok1 := parseCode(raw[cols[ColLabel]])
	predictor, ok2 := parseCode(raw[cols[ColPredictor]])
	x, ok3 := ParseNumber(raw[cols[ColPredictorValue]])
	predicted, ok4 := ParseNumber(raw[cols[ColPredicted]])
	upper, ok5 := ParseNumber(raw[cols[ColUpper]])
	lower, ok6 := ParseNumber(raw[cols[ColLower]])
	adjusted, ok7 := ParseAdjusted(raw[cols[ColAdjusted]])
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6 && ok7) {
		return association.ResultRow{}, false
	}
	return association.ResultRow{
		Label:          label,
		Predictor:      predictor,
		PredictorValue: x,
		Predicted:      predicted,
		Lower:          lower,
		Upper:          upper,
		Adjusted:       adjusted,
	}, true
}

func parseSignificanceRow(raw RawRow, cols map[string]string) (association.SignificanceRow, bool) {
	label, ok1 := parseCode(raw[cols[ColLabel]])
	predictor, ok2 := parseCode(raw[cols[ColPredictor]])
	rawP, ok3 := ParseNumber(raw[cols[ColRawP]])
	fdrP, ok4 := ParseNumber(raw[cols[ColFDRP]])
	adjusted, ok5 := ParseAdjusted(raw[cols[ColAdjusted]])
	if !(ok1 && ok2 && ok3 && ok4 && ok5) {
		return association.SignificanceRow{}, false
	}
	return association.SignificanceRow{
		Label:     label,
		Predictor: predictor,
		Adjusted:  adjusted,
		RawP:      rawP,
		FDRP:      fdrP,
	}, true
}

// resolveColumns maps each required column to the header spelling used in
// the file. Matching ignores case.
func resolveColumns(headers []string, required []string, table string) (map[string]string, error) {
	byLower := make(map[string]string, len(headers))
	for _, h := range headers {
		key := strings.ToLower(h)
		if _, dup := byLower[key]; !dup {
			byLower[key] = h
		}
	}

	cols := make(map[string]string, len(required))
	var missing []string
	for _, name := range required {
		h, ok := byLower[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = h
	}
	if len(missing) > 0 {
		return nil, errors.ConfigInvalid(table + " table is missing columns: " + strings.Join(missing, ", "))
	}
	return cols, nil
}

var missingMarkers = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"none": true,
	".":    true,
}

// ParseNumber parses a numeric cell. Missing markers and non-finite values
// report false.
func ParseNumber(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if missingMarkers[strings.ToLower(cell)] {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseAdjusted parses the 0/1 adjustment flag. Booleans and 0.0/1.0 are
// accepted as well.
func ParseAdjusted(cell string) (bool, bool) {
	cell = strings.TrimSpace(cell)
	if b, err := strconv.ParseBool(cell); err == nil {
		return b, true
	}
	v, ok := ParseNumber(cell)
	if !ok {
		return false, false
	}
	switch v {
	case 0:
		return false, true
	case 1:
		return true, true
	default:
		return false, false
	}
}

// parseCode only treats an empty cell as missing: "NA" is the sodium label.
func parseCode(cell string) (string, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return "", false
	}
	return cell, true
}
