package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"donorviz/domain/association"
	"donorviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const resultsCSV = `,label,predictor,predictorvalue,predicted,upper,lower,adjusted
0,HB,meandonorhb,130,0.2,0.5,-0.1,0
1,HB,meandonorhb,120,0.1,0.4,-0.2,0
2,HB,meandonorhb,,0.1,0.4,-0.2,0
3,NA,donorparity,1,1.5,2.0,1.0,1
4,HB,donorparity,2,NA,2.0,1.0,1
5,HB,donorparity,3,1.0,2.0,0.5,
`

func TestParseResultsDropsIncompleteRows(t *testing.T) {
	path := writeFile(t, "results.csv", resultsCSV)

	table, err := NewDataReader(path).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"", "label", "predictor", "predictorvalue", "predicted", "upper", "lower", "adjusted"}, table.Headers)

	results, err := ParseResults(table)
	require.NoError(t, err)

	assert.Equal(t, 3, results.Incomplete)
	require.Len(t, results.Rows, 3)
	assert.Equal(t, association.ResultRow{
		Label: "HB", Predictor: "meandonorhb", PredictorValue: 130, Predicted: 0.2, Upper: 0.5, Lower: -0.1, Adjusted: false,
	}, results.Rows[0])
	// The sodium label code is not a missing value.
	assert.Equal(t, "NA", results.Rows[2].Label)
	assert.True(t, results.Rows[2].Adjusted)
}

func TestParseSignificanceColumnOrderAndCase(t *testing.T) {
	path := writeFile(t, "fdr.csv", "adjusted,FDR_P,probf,predictor,label\n0,0.5,0.0000432,meandonorhb,HB\n1,0.2,0.01,meandonorhb,HB\n1,,0.01,donorparity,HB\n")

	table, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	sig, err := ParseSignificance(table)
	require.NoError(t, err)

	assert.Equal(t, 1, sig.Incomplete)
	require.Len(t, sig.Rows, 2)
	assert.Equal(t, association.SignificanceRow{Label: "HB", Predictor: "meandonorhb", Adjusted: false, RawP: 0.0000432, FDRP: 0.5}, sig.Rows[0])
	assert.True(t, sig.Rows[1].Adjusted)
}

func TestParseMissingColumnIsConfigError(t *testing.T) {
	path := writeFile(t, "results.csv", "label,predictor,predicted,upper,lower,adjusted\nHB,meandonorhb,1,2,0,0\n")

	table, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	_, err = ParseResults(table)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "predictorvalue")
}

func TestShortRowsAreIncomplete(t *testing.T) {
	path := writeFile(t, "results.csv", "label,predictor,predictorvalue,predicted,upper,lower,adjusted\nHB,meandonorhb,1,2\n")

	table, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	results, err := ParseResults(table)
	require.NoError(t, err)
	assert.Empty(t, results.Rows)
	assert.Equal(t, 1, results.Incomplete)
}

func TestReadExcelWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"label", "predictor", "predictorvalue", "predicted", "upper", "lower", "adjusted"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"HB", "donorparity", 1, 0.5, 0.9, 0.1, 0}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"HB", "donorparity", 2, 0.7, 1.1, 0.3, 1}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := NewDataReader(path).ReadData()
	require.NoError(t, err)

	results, err := ParseResults(table)
	require.NoError(t, err)
	require.Len(t, results.Rows, 2)
	assert.Equal(t, 0.5, results.Rows[0].Predicted)
	assert.Equal(t, 2.0, results.Rows[1].PredictorValue)
	assert.True(t, results.Rows[1].Adjusted)
}

func TestReadMissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.csv")).ReadData()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFileSource(t *testing.T) {
	results := writeFile(t, "results.csv", resultsCSV)
	sig := writeFile(t, "fdr.csv", "label,predictor,ProbF,fdr_p,adjusted\nHB,meandonorhb,0.001,0.01,0\n")
	src := NewFileSource(results, sig)

	rt, err := src.Results(context.Background())
	require.NoError(t, err)
	assert.Len(t, rt.Rows, 3)

	st, err := src.Significance(context.Background())
	require.NoError(t, err)
	assert.Len(t, st.Rows, 1)
	assert.Contains(t, src.Name(), "results.csv")

	missing := NewFileSource(filepath.Join(t.TempDir(), "x.csv"), sig)
	_, err = missing.Results(context.Background())
	assert.Equal(t, errors.CodeDataSourceError, errors.GetCode(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Significance(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseNumber(t *testing.T) {
	for _, cell := range []string{"", " ", "NA", "nan", "NaN", "null", ".", "abc", "Inf"} {
		_, ok := ParseNumber(cell)
		assert.False(t, ok, "cell %q", cell)
	}
	v, ok := ParseNumber(" 1.5e-3 ")
	assert.True(t, ok)
	assert.Equal(t, 0.0015, v)
}

func TestParseAdjusted(t *testing.T) {
	cases := map[string]struct {
		want bool
		ok   bool
	}{
		"0":     {false, true},
		"1":     {true, true},
		"1.0":   {true, true},
		"0.0":   {false, true},
		"true":  {true, true},
		"FALSE": {false, true},
		"2":     {false, false},
		"":      {false, false},
		"yes":   {false, false},
	}
	for cell, tc := range cases {
		got, ok := ParseAdjusted(cell)
		assert.Equal(t, tc.ok, ok, "cell %q", cell)
		assert.Equal(t, tc.want, got, "cell %q", cell)
	}
}
