// Package loader builds the in-memory store from the configured table source
// once at startup.
package loader

import (
	"context"
	"time"

	"donorviz/adapters/postgres"
	"donorviz/adapters/tabular"
	"donorviz/domain/association"
	"donorviz/internal"
	"donorviz/internal/config"
	"donorviz/internal/errors"
	"donorviz/internal/store"
	"donorviz/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

// SourceFromConfig opens the table source named by the configuration. The
// returned close function releases any database connection.
func SourceFromConfig(ctx context.Context, cfg *config.Config) (ports.TableSource, func() error, error) {
	switch cfg.Data.Source {
	case config.SourcePostgres:
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
		if err != nil {
			return nil, nil, errors.DataSourceError("postgres", err)
		}
		return postgres.NewTableSource(db), db.Close, nil
	default:
		return tabular.NewFileSource(cfg.Data.ResultsFile, cfg.Data.SignificanceFile), func() error { return nil }, nil
	}
}

// Load reads both tables concurrently and builds a validated store. Any error
// here is fatal: the dashboard must not start on bad input.
func Load(ctx context.Context, src ports.TableSource, names association.Names, logger *internal.Logger) (*store.Store, error) {
	start := time.Now()

	var (
		results      association.ResultTable
		significance association.SignificanceTable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = src.Results(gctx)
		return errors.Wrapf(err, "failed to load results table from %s", src.Name())
	})
	g.Go(func() error {
		var err error
		significance, err = src.Significance(gctx)
		return errors.Wrapf(err, "failed to load significance table from %s", src.Name())
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s, err := store.New(results, significance, names)
	if err != nil {
		return nil, errors.Wrap(err, "association tables failed validation")
	}

	stats := s.Stats()
	logger.Info("loaded %d result rows in %d groups and %d significance rows from %s in %s",
		stats.ResultRows, stats.Groups, stats.SignificanceRows, src.Name(), time.Since(start).Round(time.Millisecond))
	if stats.Dropped() > 0 {
		logger.Warn("dropped %d rows at load: %d incomplete results, %d incomplete significance, %d results outside bounds, %d duplicate significance",
			stats.Dropped(), stats.IncompleteResults, stats.IncompleteSignificance, stats.UnboundedResults, stats.DuplicateSignificance)
	}

	return s, nil
}
