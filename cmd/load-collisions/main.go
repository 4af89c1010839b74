package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/cognicore/crashsearch/pkg/crashsearch/store"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store/sqlite"
)

const batchSize = 1000

func main() {
	var (
		dbPath  = flag.String("db", "", "SQLite database path (required)")
		csvPath = flag.String("csv", "", "Collision CSV export path (required)")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *csvPath == "" {
		log.Fatal("--csv required")
	}

	ctx := context.Background()

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	log.Printf("reading %s", *csvPath)
	result, err := store.ReadCSV(f)
	if err != nil {
		log.Fatal("read csv: ", err)
	}
	log.Printf("parsed %d rows (%d skipped)", len(result.Rows), result.Skipped)

	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal("open store: ", err)
	}
	defer st.Close()

	for i := 0; i < len(result.Rows); i += batchSize {
		end := i + batchSize
		if end > len(result.Rows) {
			end = len(result.Rows)
		}
		if err := st.InsertRows(ctx, result.Rows[i:end]); err != nil {
			log.Fatal("insert rows: ", err)
		}
		log.Printf("inserted %d/%d", end, len(result.Rows))
	}

	log.Printf("done: %d rows loaded into %s", len(result.Rows), *dbPath)
}
