// Package store holds the association tables in memory after startup. A Store
// is immutable once built, so any number of requests may read it without
// locking.
package store

import (
	"sort"

	"donorviz/domain/association"
	"donorviz/domain/core"
	"donorviz/internal/errors"
)

// Store is the read-only, indexed association data.
type Store struct {
	groups       map[association.Key][]association.ResultRow
	significance map[association.Key]association.SignificanceRow
	labels       []string
	predictors   []string
	names        association.Names
	stats        association.LoadStats
	snapshotID   core.SnapshotID
}

// New validates and indexes the two tables. Rows holding NaN or infinite
// numbers count as incomplete. Result rows whose prediction is outside its
// bounds are dropped, as are repeated significance keys (first
// wins); both are counted in Stats. Any label or predictor code without a
// display name is a configuration error.
func New(results association.ResultTable, significance association.SignificanceTable, names association.Names) (*Store, error) {
	if err := checkCodes(results, significance, names); err != nil {
		return nil, err
	}

	s := &Store{
		groups:       make(map[association.Key][]association.ResultRow),
		significance: make(map[association.Key]association.SignificanceRow, len(significance.Rows)),
		names:        names,
		snapshotID:   core.NewSnapshotID(),
		stats: association.LoadStats{
			IncompleteResults:      results.Incomplete,
			IncompleteSignificance: significance.Incomplete,
		},
	}

	labelSet := make(map[string]bool)
	predictorSet := make(map[string]bool)
	for _, row := range results.Rows {
		if !row.Finite() {
			s.stats.IncompleteResults++
			continue
		}
		if !row.Bounded() {
			s.stats.UnboundedResults++
			continue
		}
		key := row.Key()
		s.groups[key] = append(s.groups[key], row)
		labelSet[row.Label] = true
		predictorSet[row.Predictor] = true
		s.stats.ResultRows++
	}

	for key, rows := range s.groups {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].PredictorValue < rows[j].PredictorValue
		})
		s.groups[key] = rows
	}

	for _, row := range significance.Rows {
		if !row.Finite() {
			s.stats.IncompleteSignificance++
			continue
		}
		key := row.Key()
		if _, dup := s.significance[key]; dup {
			s.stats.DuplicateSignificance++
			continue
		}
		s.significance[key] = row
		s.stats.SignificanceRows++
	}

	s.stats.Groups = len(s.groups)
	s.labels = setToSorted(labelSet)
	s.predictors = setToSorted(predictorSet)
	return s, nil
}

func checkCodes(results association.ResultTable, significance association.SignificanceTable, names association.Names) error {
	var labels, predictors []string
	for _, r := range results.Rows {
		labels = append(labels, r.Label)
		predictors = append(predictors, r.Predictor)
	}
	for _, r := range significance.Rows {
		labels = append(labels, r.Label)
		predictors = append(predictors, r.Predictor)
	}

	if missing := names.Labels.Missing(labels); len(missing) > 0 {
		return errors.UnmappedCodes("label", missing)
	}
	if missing := names.Predictors.Missing(predictors); len(missing) > 0 {
		return errors.UnmappedCodes("predictor", missing)
	}
	return nil
}

// Query returns the rows of one group ordered by predictor value, and the
// matching significance row or nil. The returned slice is a copy.
func (s *Store) Query(key association.Key) ([]association.ResultRow, *association.SignificanceRow) {
	var rows []association.ResultRow
	if group := s.groups[key]; len(group) > 0 {
		rows = make([]association.ResultRow, len(group))
		copy(rows, group)
	}

	sig, ok := s.significance[key]
	if !ok {
		return rows, nil
	}
	return rows, &sig
}

// Tables returns the rows the store serves, ordered by key and then by
// predictor value. Rows dropped by New are not included; the incomplete
// counts reported by the source are carried over.
func (s *Store) Tables() (association.ResultTable, association.SignificanceTable) {
	results := association.ResultTable{
		Rows:       make([]association.ResultRow, 0, s.stats.ResultRows),
		Incomplete: s.stats.IncompleteResults,
	}
	for _, key := range sortedKeys(s.groups) {
		results.Rows = append(results.Rows, s.groups[key]...)
	}

	significance := association.SignificanceTable{
		Rows:       make([]association.SignificanceRow, 0, len(s.significance)),
		Incomplete: s.stats.IncompleteSignificance,
	}
	for _, key := range sortedKeys(s.significance) {
		significance.Rows = append(significance.Rows, s.significance[key])
	}
	return results, significance
}

// LabelCodes returns the label codes present in the results table.
func (s *Store) LabelCodes() []string {
	return append([]string(nil), s.labels...)
}

// PredictorCodes returns the predictor codes present in the results table.
func (s *Store) PredictorCodes() []string {
	return append([]string(nil), s.predictors...)
}

// Names returns the display-name tables the store was validated against.
func (s *Store) Names() association.Names {
	return s.names
}

// Stats reports load-time counts.
func (s *Store) Stats() association.LoadStats {
	return s.stats
}

// SnapshotID identifies this load of the tables.
func (s *Store) SnapshotID() core.SnapshotID {
	return s.snapshotID
}

func setToSorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys[V any](m map[association.Key]V) []association.Key {
	keys := make([]association.Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		if a.Predictor != b.Predictor {
			return a.Predictor < b.Predictor
		}
		return !a.Adjusted && b.Adjusted
	})
	return keys
}
