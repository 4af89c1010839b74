package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/cognicore/crashsearch/internal/server"
	"github.com/cognicore/crashsearch/pkg/crashsearch"
	"github.com/cognicore/crashsearch/pkg/crashsearch/config"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store/sqlite"
)

func main() {
	// .env is optional; real env vars win either way
	_ = godotenv.Load()

	var (
		dbPath    = flag.String("db", envOr("CRASHSEARCH_DB", "collisions.db"), "SQLite database path")
		vocabPath = flag.String("vocab", envOr("CRASHSEARCH_VOCAB", "configs/vocab.yaml"), "Vocabulary YAML path")
		addr      = flag.String("addr", ":"+envOr("PORT", "8080"), "Listen address")
	)
	flag.Parse()

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

	h := server.NewHandler(engine, comp.Vocabs)
	log.Printf("crashsearch server listening on %s", *addr)
	if err := h.Router().Run(*addr); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
