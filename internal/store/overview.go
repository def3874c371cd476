package store

import (
	"sort"

	"donorviz/domain/association"

	"github.com/montanaflynn/stats"
)

// Overview summarises the significance table: how many combinations reach
// FDR-p < alpha, the median p-values, and the top combinations ordered by
// FDR-p. Only combinations that also have result rows are counted, since the
// others cannot be charted.
func (s *Store) Overview(alpha float64, top int) association.Overview {
	entries := make([]association.OverviewEntry, 0, len(s.significance))
	rawPs := make(stats.Float64Data, 0, len(s.significance))
	fdrPs := make(stats.Float64Data, 0, len(s.significance))

	for key, sig := range s.significance {
		if len(s.groups[key]) == 0 {
			continue
		}
		labelName, _ := s.names.Labels.Lookup(key.Label)
		predictorName, _ := s.names.Predictors.Lookup(key.Predictor)
		entries = append(entries, association.OverviewEntry{
			Key:           key,
			LabelName:     labelName,
			PredictorName: predictorName,
			RawP:          sig.RawP,
			FDRP:          sig.FDRP,
			Significant:   sig.FDRP < alpha,
		})
		rawPs = append(rawPs, sig.RawP)
		fdrPs = append(fdrPs, sig.FDRP)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.FDRP != b.FDRP {
			return a.FDRP < b.FDRP
		}
		if a.RawP != b.RawP {
			return a.RawP < b.RawP
		}
		return a.Key.String() < b.Key.String()
	})

	ov := association.Overview{
		Alpha:        alpha,
		Combinations: len(entries),
	}
	for _, e := range entries {
		if e.Significant {
			ov.Significant++
		}
	}
	if len(entries) > 0 {
		ov.MedianRawP, _ = rawPs.Median()
		ov.MedianFDRP, _ = fdrPs.Median()
	}

	if top > len(entries) {
		top = len(entries)
	}
	ov.Top = entries[:top]
	return ov
}
