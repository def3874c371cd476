package ports

import (
	"context"

	"donorviz/domain/association"
)

// TableSource delivers the two precomputed tables produced by the upstream
// regression pipeline.
type TableSource interface {
	Name() string
	Results(ctx context.Context) (association.ResultTable, error)
	Significance(ctx context.Context) (association.SignificanceTable, error)
}
