package main

import (
	"context"
	"log"
	"os"

	"vaeval/adapters/excel"
	"vaeval/adapters/postgres"
	"vaeval/domain/va"
	"vaeval/internal"
	"vaeval/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [csv_results_dir]")
	}

	databaseURL := os.Args[1]
	ctx := context.Background()

	// Connect to database
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.NewRunner(internal.NewDefaultLogger()).Run(ctx, db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	log.Printf("Schema is up to date")

	if len(os.Args) < 3 {
		return
	}

	resultsDir := os.Args[2]
	imported, skipped, err := importResults(ctx, excel.NewCSVStore(resultsDir), postgres.NewResultRepository(db))
	if err != nil {
		log.Fatalf("Failed to import results from %s: %v", resultsDir, err)
	}
	log.Printf("Import completed: %d runs imported, %d skipped", imported, skipped)
}

// stemRepository is the slice of the postgres repository the import needs
type stemRepository interface {
	SaveStem(ctx context.Context, stem string, result *va.Result) error
}

// importResults copies every CSV result set in src into dst, keyed by stem.
// Stems that fail to load are logged and skipped.
func importResults(ctx context.Context, src *excel.CSVStore, dst stemRepository) (imported, skipped int, err error) {
	stems, err := src.Stems(ctx, "")
	if err != nil {
		return 0, 0, err
	}
	log.Printf("Found %d result sets to import", len(stems))

	for _, stem := range stems {
		result, err := src.Load(ctx, stem)
		if err != nil {
			log.Printf("Failed to load %s: %v", stem, err)
			skipped++
			continue
		}
		if err := dst.SaveStem(ctx, stem, result); err != nil {
			return imported, skipped, err
		}
		log.Printf("Imported %s (%d splits)", stem, result.NumSplits())
		imported++
	}
	return imported, skipped, nil
}
