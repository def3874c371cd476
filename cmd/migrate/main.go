package main

import (
	"context"
	"log"
	"os"
	"time"

	"donorviz/adapters/postgres"
	"donorviz/adapters/tabular"
	"donorviz/domain/association"
	"donorviz/internal/migration"
	"donorviz/internal/store"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [results_file significance_file]")
	}

	databaseURL := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema version %s is in place", runner.Version())

	if len(os.Args) < 4 {
		return
	}
	resultsFile, significanceFile := os.Args[2], os.Args[3]
	log.Printf("Importing %s and %s", resultsFile, significanceFile)

	src := tabular.NewFileSource(resultsFile, significanceFile)
	results, err := src.Results(ctx)
	if err != nil {
		log.Fatalf("Failed to read results: %v", err)
	}
	significance, err := src.Significance(ctx)
	if err != nil {
		log.Fatalf("Failed to read significance: %v", err)
	}

	// Refuse tables the dashboard would refuse to start on.
	s, err := store.New(results, significance, association.DefaultNames())
	if err != nil {
		log.Fatalf("Tables failed validation: %v", err)
	}

	// Import what the dashboard serves, not the raw file rows.
	servedResults, servedSignificance := s.Tables()
	if err := postgres.NewImporter(db).Import(ctx, servedResults, servedSignificance); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	stats := s.Stats()
	log.Printf("Imported %d result rows and %d significance rows", len(servedResults.Rows), len(servedSignificance.Rows))
	if stats.Dropped() > 0 {
		log.Printf("Skipped %d rows: %d incomplete results, %d incomplete significance, %d results outside bounds, %d duplicate significance",
			stats.Dropped(), stats.IncompleteResults, stats.IncompleteSignificance, stats.UnboundedResults, stats.DuplicateSignificance)
	}
}
