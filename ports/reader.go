package ports

import (
	"donorviz/domain/association"
	"donorviz/domain/core"
)

// ReaderPort provides read-only access to the loaded association tables.
// The UI cannot modify them.
type ReaderPort interface {
	Query(key association.Key) ([]association.ResultRow, *association.SignificanceRow)
	LabelCodes() []string
	PredictorCodes() []string
	Names() association.Names
	Stats() association.LoadStats
	SnapshotID() core.SnapshotID
	Overview(alpha float64, top int) association.Overview
}
