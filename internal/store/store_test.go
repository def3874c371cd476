package store

import (
	"encoding/json"
	"math"
	"sort"
	"sync"
	"testing"

	"donorviz/domain/association"
	domainchart "donorviz/domain/chart"
	"donorviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(label, predictor string, adjusted bool, x, predicted float64) association.ResultRow {
	return association.ResultRow{
		Label: label, Predictor: predictor, Adjusted: adjusted,
		PredictorValue: x, Predicted: predicted, Lower: predicted - 1, Upper: predicted + 1,
	}
}

func sig(label, predictor string, adjusted bool, rawP, fdrP float64) association.SignificanceRow {
	return association.SignificanceRow{Label: label, Predictor: predictor, Adjusted: adjusted, RawP: rawP, FDRP: fdrP}
}

func fixture() (association.ResultTable, association.SignificanceTable) {
	results := association.ResultTable{
		Rows: []association.ResultRow{
			row("HB", "meandonorhb", false, 150, 0.3),
			row("HB", "meandonorhb", false, 110, 0.1),
			row("HB", "meandonorhb", false, 130, 0.2),
			row("HB", "meandonorhb", true, 120, 0.05),
			row("HB", "donorparity", false, 2, 0.4),
			row("HB", "donorparity", false, 0, 0.0),
			row("HB", "donorparity", false, 1, 0.2),
			row("K", "meandonorage", false, 40, 0.1),
			{Label: "K", Predictor: "meandonorage", PredictorValue: 50, Predicted: 2, Lower: 2.5, Upper: 3},
		},
		Incomplete: 2,
	}
	significance := association.SignificanceTable{
		Rows: []association.SignificanceRow{
			sig("HB", "meandonorhb", false, 0.0001, 0.001),
			sig("HB", "meandonorhb", true, 0.2, 0.4),
			sig("HB", "donorparity", false, 0.01, 0.03),
			sig("HB", "donorparity", false, 0.9, 0.9),
			sig("NA", "meandonorhb", false, 0.5, 0.6),
		},
		Incomplete: 1,
	}
	return results, significance
}

func newFixtureStore(t *testing.T) *Store {
	t.Helper()
	results, significance := fixture()
	s, err := New(results, significance, association.DefaultNames())
	require.NoError(t, err)
	return s
}

func TestQueryOrdersByPredictorValue(t *testing.T) {
	s := newFixtureStore(t)

	rows, sigRow := s.Query(association.Key{Label: "HB", Predictor: "meandonorhb"})
	require.Len(t, rows, 3)
	require.NotNil(t, sigRow)

	xs := []float64{rows[0].PredictorValue, rows[1].PredictorValue, rows[2].PredictorValue}
	assert.Equal(t, []float64{110, 130, 150}, xs)
	assert.Equal(t, 0.0001, sigRow.RawP)
	assert.Equal(t, 0.001, sigRow.FDRP)
}

func TestQueryExactMatch(t *testing.T) {
	s := newFixtureStore(t)

	rows, sigRow := s.Query(association.Key{Label: "HB", Predictor: "meandonorhb", Adjusted: true})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Adjusted)
	require.NotNil(t, sigRow)
	assert.True(t, sigRow.Adjusted)

	rows, sigRow = s.Query(association.Key{Label: "HB", Predictor: "donorparity", Adjusted: true})
	assert.Empty(t, rows)
	assert.Nil(t, sigRow)

	rows, sigRow = s.Query(association.Key{Label: "hb", Predictor: "meandonorhb"})
	assert.Empty(t, rows)
	assert.Nil(t, sigRow)
}

func TestQueryReturnsCopy(t *testing.T) {
	s := newFixtureStore(t)
	key := association.Key{Label: "HB", Predictor: "donorparity"}

	rows, _ := s.Query(key)
	rows[0].Predicted = 99

	again, _ := s.Query(key)
	assert.Equal(t, 0.0, again[0].Predicted)
}

func TestSignificanceWithoutRows(t *testing.T) {
	s := newFixtureStore(t)

	rows, sigRow := s.Query(association.Key{Label: "NA", Predictor: "meandonorhb"})
	assert.Empty(t, rows)
	assert.NotNil(t, sigRow)
}

func TestLoadStats(t *testing.T) {
	s := newFixtureStore(t)
	stats := s.Stats()

	assert.Equal(t, 8, stats.ResultRows)
	assert.Equal(t, 1, stats.UnboundedResults)
	assert.Equal(t, 2, stats.IncompleteResults)
	assert.Equal(t, 1, stats.IncompleteSignificance)
	assert.Equal(t, 4, stats.SignificanceRows)
	assert.Equal(t, 1, stats.DuplicateSignificance)
	assert.Equal(t, 4, stats.Groups)
	assert.Equal(t, 5, stats.Dropped())
	assert.False(t, s.SnapshotID().String() == "")
}

func TestDuplicateSignificanceKeepsFirst(t *testing.T) {
	s := newFixtureStore(t)

	_, sigRow := s.Query(association.Key{Label: "HB", Predictor: "donorparity"})
	require.NotNil(t, sigRow)
	assert.Equal(t, 0.01, sigRow.RawP)
}

func TestUnboundedRowsExcluded(t *testing.T) {
	s := newFixtureStore(t)

	for _, label := range s.LabelCodes() {
		for _, predictor := range s.PredictorCodes() {
			for _, adjusted := range []bool{false, true} {
				rows, _ := s.Query(association.Key{Label: label, Predictor: predictor, Adjusted: adjusted})
				for _, r := range rows {
					assert.True(t, r.Bounded(), "row %+v", r)
				}
			}
		}
	}
}

func TestTablesReturnServedRows(t *testing.T) {
	s := newFixtureStore(t)

	results, significance := s.Tables()
	assert.Len(t, results.Rows, 8)
	assert.Equal(t, 2, results.Incomplete)
	for _, r := range results.Rows {
		assert.True(t, r.Bounded(), "row %+v", r)
	}
	assert.Equal(t, "donorparity", results.Rows[0].Predictor)
	assert.Equal(t, []float64{0, 1, 2}, []float64{
		results.Rows[0].PredictorValue, results.Rows[1].PredictorValue, results.Rows[2].PredictorValue,
	})

	require.Len(t, significance.Rows, 4)
	assert.Equal(t, 1, significance.Incomplete)
	assert.Equal(t, association.Key{Label: "HB", Predictor: "donorparity"}, significance.Rows[0].Key())
	assert.Equal(t, 0.01, significance.Rows[0].RawP)

	// A store rebuilt from its own tables drops nothing further.
	again, err := New(results, significance, association.DefaultNames())
	require.NoError(t, err)
	assert.Zero(t, again.Stats().UnboundedResults)
	assert.Zero(t, again.Stats().DuplicateSignificance)
}

func TestCodeUniverses(t *testing.T) {
	s := newFixtureStore(t)

	assert.Equal(t, []string{"HB", "K"}, s.LabelCodes())
	assert.Equal(t, []string{"donorparity", "meandonorage", "meandonorhb"}, s.PredictorCodes())
}

func TestUnmappedCodesFailFast(t *testing.T) {
	results, significance := fixture()
	results.Rows = append(results.Rows, row("ZZZ", "meandonorhb", false, 1, 1))

	_, err := New(results, significance, association.DefaultNames())
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "ZZZ")

	results, significance = fixture()
	significance.Rows = append(significance.Rows, sig("HB", "bloodtype", false, 0.1, 0.1))
	_, err = New(results, significance, association.DefaultNames())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "predictor codes without display name: bloodtype")
}

func TestOrderIndependentOfInputOrder(t *testing.T) {
	results, significance := fixture()
	reversed := make([]association.ResultRow, len(results.Rows))
	for i, r := range results.Rows {
		reversed[len(results.Rows)-1-i] = r
	}
	results.Rows = reversed

	s, err := New(results, significance, association.DefaultNames())
	require.NoError(t, err)

	rows, _ := s.Query(association.Key{Label: "HB", Predictor: "donorparity"})
	xs := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = r.PredictorValue
	}
	assert.True(t, sort.Float64sAreSorted(xs))
	assert.Equal(t, []float64{0, 1, 2}, xs)
}

func TestConcurrentReaders(t *testing.T) {
	s := newFixtureStore(t)
	key := association.Key{Label: "HB", Predictor: "meandonorhb"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rows, sigRow := s.Query(key)
				if len(rows) != 3 || sigRow == nil {
					t.Errorf("unexpected query result: %d rows", len(rows))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestOverview(t *testing.T) {
	s := newFixtureStore(t)

	ov := s.Overview(0.05, 2)

	// NA/meandonorhb has no result rows and is left out.
	assert.Equal(t, 3, ov.Combinations)
	assert.Equal(t, 2, ov.Significant)
	assert.Equal(t, 0.01, ov.MedianRawP)
	assert.Equal(t, 0.03, ov.MedianFDRP)
	require.Len(t, ov.Top, 2)
	assert.Equal(t, association.Key{Label: "HB", Predictor: "meandonorhb"}, ov.Top[0].Key)
	assert.Equal(t, "Hemoglobin", ov.Top[0].LabelName)
	assert.Equal(t, "Donor Hb", ov.Top[0].PredictorName)
	assert.True(t, ov.Top[0].Significant)
	assert.Equal(t, "donorparity", ov.Top[1].Key.Predictor)

	all := s.Overview(0.05, 100)
	assert.Len(t, all.Top, 3)
	assert.False(t, all.Top[2].Significant)
}

func TestOverviewEmpty(t *testing.T) {
	s, err := New(association.ResultTable{}, association.SignificanceTable{}, association.DefaultNames())
	require.NoError(t, err)

	ov := s.Overview(0.05, 10)
	assert.Zero(t, ov.Combinations)
	assert.Empty(t, ov.Top)
	assert.Zero(t, ov.MedianRawP)
}

func TestNonFiniteRowsAreIncomplete(t *testing.T) {
	results := association.ResultTable{Rows: []association.ResultRow{
		row("HB", "meandonorhb", false, 3, 0.3),
		row("HB", "meandonorhb", false, math.NaN(), 0.1),
		row("HB", "meandonorhb", false, 1, 0.1),
		row("HB", "meandonorhb", false, 2, 0.2),
		{Label: "HB", Predictor: "meandonorhb", PredictorValue: 4, Predicted: 0.1, Lower: math.Inf(-1), Upper: 1},
	}}
	significance := association.SignificanceTable{Rows: []association.SignificanceRow{
		sig("HB", "meandonorhb", false, math.NaN(), 0.5),
		sig("HB", "meandonorhb", false, 0.001, 0.5),
		sig("K", "meandonorage", false, 0.01, math.Inf(1)),
	}}

	s, err := New(results, significance, association.DefaultNames())
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 2, stats.IncompleteResults)
	assert.Equal(t, 2, stats.IncompleteSignificance)
	assert.Zero(t, stats.DuplicateSignificance)

	key := association.Key{Label: "HB", Predictor: "meandonorhb"}
	rows, sigRow := s.Query(key)
	xs := make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = r.PredictorValue
	}
	assert.Equal(t, []float64{1, 2, 3}, xs)
	require.NotNil(t, sigRow)
	assert.Equal(t, 0.001, sigRow.RawP)

	spec := domainchart.Build(s, s.Names(), association.SelectorState{Label: "HB", Predictor: "meandonorhb"})
	assert.Contains(t, spec.Title, "Raw p=1.00e-03")
	_, err = json.Marshal(spec)
	assert.NoError(t, err)
}
