package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"donorviz/domain/association"
	"donorviz/internal/errors"

	"github.com/jmoiron/sqlx"
)

// resultRecord mirrors one association_results row. Numeric columns are
// nullable in the schema, as they are in the exported tables.
type resultRecord struct {
	Label          string          `db:"label"`
	Predictor      string          `db:"predictor"`
	PredictorValue sql.NullFloat64 `db:"predictorvalue"`
	Predicted      sql.NullFloat64 `db:"predicted"`
	Lower          sql.NullFloat64 `db:"lower"`
	Upper          sql.NullFloat64 `db:"upper"`
	Adjusted       sql.NullBool    `db:"adjusted"`
}

type significanceRecord struct {
	Label     string          `db:"label"`
	Predictor string          `db:"predictor"`
	RawP      sql.NullFloat64 `db:"probf"`
	FDRP      sql.NullFloat64 `db:"fdr_p"`
	Adjusted  sql.NullBool    `db:"adjusted"`
}

// TableSource reads the two association tables from Postgres.
type TableSource struct {
	db *sqlx.DB
}

// NewTableSource creates a table source over an open connection.
func NewTableSource(db *sqlx.DB) *TableSource {
	return &TableSource{db: db}
}

// Name describes the source for logs.
func (s *TableSource) Name() string {
	return "postgres"
}

// Results loads association_results. Rows with a NULL or non-finite required
// column are dropped and counted as incomplete.
func (s *TableSource) Results(ctx context.Context) (association.ResultTable, error) {
	var records []resultRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT label, predictor, predictorvalue, predicted, lower, upper, adjusted
		FROM association_results
		ORDER BY id`)
	if err != nil {
		return association.ResultTable{}, errors.DataSourceError("association_results", err)
	}
	return convertResults(records), nil
}

// Significance loads association_significance.
func (s *TableSource) Significance(ctx context.Context) (association.SignificanceTable, error) {
	var records []significanceRecord
	err := s.db.SelectContext(ctx, &records, `
		SELECT label, predictor, probf, fdr_p, adjusted
		FROM association_significance
		ORDER BY id`)
	if err != nil {
		return association.SignificanceTable{}, errors.DataSourceError("association_significance", err)
	}
	return convertSignificance(records), nil
}

func convertResults(records []resultRecord) association.ResultTable {
	table := association.ResultTable{Rows: make([]association.ResultRow, 0, len(records))}
	for _, r := range records {
		if r.Label == "" || r.Predictor == "" || !r.PredictorValue.Valid || !r.Predicted.Valid ||
			!r.Lower.Valid || !r.Upper.Valid || !r.Adjusted.Valid {
			table.Incomplete++
			continue
		}
		row := association.ResultRow{
			Label:          r.Label,
			Predictor:      r.Predictor,
			PredictorValue: r.PredictorValue.Float64,
			Predicted:      r.Predicted.Float64,
			Lower:          r.Lower.Float64,
			Upper:          r.Upper.Float64,
			Adjusted:       r.Adjusted.Bool,
		}
		// float8 columns may hold 'NaN' or 'Infinity'.
		if !row.Finite() {
			table.Incomplete++
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func convertSignificance(records []significanceRecord) association.SignificanceTable {
	table := association.SignificanceTable{Rows: make([]association.SignificanceRow, 0, len(records))}
	for _, r := range records {
		if r.Label == "" || r.Predictor == "" || !r.RawP.Valid || !r.FDRP.Valid || !r.Adjusted.Valid {
			table.Incomplete++
			continue
		}
		row := association.SignificanceRow{
			Label:     r.Label,
			Predictor: r.Predictor,
			Adjusted:  r.Adjusted.Bool,
			RawP:      r.RawP.Float64,
			FDRP:      r.FDRP.Float64,
		}
		if !row.Finite() {
			table.Incomplete++
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Importer replaces the contents of both tables in one transaction.
type Importer struct {
	db *sqlx.DB
}

// NewImporter creates an importer over an open connection.
func NewImporter(db *sqlx.DB) *Importer {
	return &Importer{db: db}
}

// Import truncates both tables and inserts the given rows.
func (i *Importer) Import(ctx context.Context, results association.ResultTable, significance association.SignificanceTable) error {
	tx, err := i.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("begin import", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE association_results, association_significance RESTART IDENTITY`); err != nil {
		return errors.DatabaseError("truncate tables", err)
	}

	for n, row := range results.Rows {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO association_results (label, predictor, predictorvalue, predicted, lower, upper, adjusted)
			VALUES (:label, :predictor, :predictorvalue, :predicted, :lower, :upper, :adjusted)`, row)
		if err != nil {
			return errors.DatabaseError(fmt.Sprintf("insert result row %d", n), err)
		}
	}

	for n, row := range significance.Rows {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO association_significance (label, predictor, probf, fdr_p, adjusted)
			VALUES (:label, :predictor, :probf, :fdr_p, :adjusted)`, row)
		if err != nil {
			return errors.DatabaseError(fmt.Sprintf("insert significance row %d", n), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("commit import", err)
	}
	return nil
}
