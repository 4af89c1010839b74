package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cognicore/crashsearch/pkg/crashsearch"
	"github.com/cognicore/crashsearch/pkg/crashsearch/config"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store/sqlite"
)

func main() {
	var (
		dbPath    = flag.String("db", "", "SQLite database path (required)")
		vocabPath = flag.String("vocab", "", "Vocabulary YAML path (required)")
		query     = flag.String("query", "", "One-shot query (non-interactive mode)")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *vocabPath == "" {
		log.Fatal("--vocab required")
	}

	ctx := context.Background()

	st, err := sqlite.Open(ctx, *dbPath)
	if err != nil {
		log.Fatal("open store: ", err)
	}
	defer st.Close()

	loader := &config.Loader{VocabPath: *vocabPath, Store: st}
	comp, err := loader.Load(ctx)
	if err != nil {
		log.Fatal("load vocabularies: ", err)
	}

	interp, err := crashsearch.NewInterpreter(crashsearch.Options{
		Vocabs:         comp.Vocabs,
		FuzzyThreshold: comp.Config.Limits.FuzzyThreshold,
		MaxQueryBytes:  comp.Config.Limits.MaxQueryBytes,
	})
	if err != nil {
		log.Fatal(err)
	}

	engine, err := crashsearch.NewEngine(interp, st)
	if err != nil {
		log.Fatal(err)
	}

	// One-shot query mode
	if *query != "" {
		if err := executeQuery(ctx, engine, *query); err != nil {
			log.Fatal(err)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  Crashsearch CLI")
	fmt.Println("  NYC collision search")
	fmt.Println("===========================================")
	fmt.Println()
	fmt.Println("Type a search (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			continue
		}

		if err := executeQuery(ctx, engine, q); err != nil {
			fmt.Println("error:", err)
		}
		fmt.Println()
	}
}

func executeQuery(ctx context.Context, engine *crashsearch.Engine, query string) error {
	result, err := engine.Search(ctx, query, 0)
	if err != nil {
		return err
	}
	fmt.Printf("filters: %s\n", result.Filters)
	fmt.Printf("matches: %d records\n", result.Count)
	return nil
}
