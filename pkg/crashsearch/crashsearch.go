// Package crashsearch turns free-text dashboard queries over the NYC
// collision dataset into structured filter sets, and answers filtered
// queries and report requests against a collision store.
package crashsearch

import (
	"context"
	"fmt"
	"time"

	"github.com/cognicore/crashsearch/pkg/crashsearch/filter"
	"github.com/cognicore/crashsearch/pkg/crashsearch/internalerr"
	"github.com/cognicore/crashsearch/pkg/crashsearch/match"
	"github.com/cognicore/crashsearch/pkg/crashsearch/report"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store"
	"github.com/cognicore/crashsearch/pkg/crashsearch/tokenize"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

// DefaultMaxQueryBytes bounds query length so worst-case fuzzy matching cost
// stays bounded. Overridable via Options.
const DefaultMaxQueryBytes = 500

// Interpreter is the query-to-filter pipeline: tokenize, recognize, build.
// It holds only read-only state and may serve concurrent queries.
type Interpreter struct {
	recognizer    *match.Recognizer
	builder       *filter.Builder
	maxQueryBytes int
}

// Options configures an Interpreter.
type Options struct {
	Vocabs *vocab.Vocabularies

	// FuzzyThreshold is the maximum normalized edit distance accepted as a
	// fuzzy alias match; 0 means match.DefaultFuzzyThreshold.
	FuzzyThreshold float64

	// MaxQueryBytes rejects longer queries with ErrQueryTooLong;
	// 0 means DefaultMaxQueryBytes.
	MaxQueryBytes int
}

// NewInterpreter creates an interpreter over frozen vocabularies.
func NewInterpreter(opts Options) (*Interpreter, error) {
	if opts.Vocabs == nil {
		return nil, fmt.Errorf("interpreter: nil vocabularies: %w", internalerr.ErrInvalidConfig)
	}
	maxBytes := opts.MaxQueryBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxQueryBytes
	}
	return &Interpreter{
		recognizer:    match.NewRecognizer(opts.Vocabs, opts.FuzzyThreshold),
		builder:       filter.NewBuilder(opts.Vocabs),
		maxQueryBytes: maxBytes,
	}, nil
}

// Interpret converts a raw search query into a filter Set. Unrecognized
// input degrades to an empty Set; the only error condition is a query
// exceeding the length bound, reported as internalerr.ErrQueryTooLong.
func (i *Interpreter) Interpret(query string) (filter.Set, error) {
	if len(query) > i.maxQueryBytes {
		return filter.Set{}, fmt.Errorf("%d bytes exceeds limit of %d: %w",
			len(query), i.maxQueryBytes, internalerr.ErrQueryTooLong)
	}

	tokens := tokenize.Tokenize(query)
	if len(tokens) == 0 {
		return filter.Set{}, nil
	}

	candidates := i.recognizer.Recognize(tokens)
	return i.builder.Build(candidates), nil
}

// Engine couples the interpreter with a collision store and a report builder.
type Engine struct {
	interp  *Interpreter
	store   store.Store
	reports *report.Builder
}

// NewEngine creates an engine. The store is required; reports get a default
// builder when none is supplied.
func NewEngine(interp *Interpreter, st store.Store) (*Engine, error) {
	if interp == nil {
		return nil, fmt.Errorf("engine: nil interpreter: %w", internalerr.ErrInvalidConfig)
	}
	if st == nil {
		return nil, fmt.Errorf("engine: %w", internalerr.ErrStoreUnavailable)
	}
	return &Engine{interp: interp, store: st, reports: report.New()}, nil
}

// Close shuts down the underlying store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Interpret exposes the interpreter for callers that only need filters.
func (e *Engine) Interpret(query string) (filter.Set, error) {
	return e.interp.Interpret(query)
}

// SearchResult is the outcome of a free-text search.
type SearchResult struct {
	Filters filter.Set
	Count   int64
	Rows    []store.Row
}

// Search interprets the query and runs the resulting filters against the
// store. limit bounds the returned rows; the count always covers the full
// match set.
func (e *Engine) Search(ctx context.Context, query string, limit int) (SearchResult, error) {
	set, err := e.interp.Interpret(query)
	if err != nil {
		return SearchResult{}, err
	}

	count, err := e.store.CountRows(ctx, set)
	if err != nil {
		return SearchResult{}, fmt.Errorf("count rows: %w", err)
	}

	var rows []store.Row
	if limit != 0 {
		rows, err = e.store.SelectRows(ctx, set, limit)
		if err != nil {
			return SearchResult{}, fmt.Errorf("select rows: %w", err)
		}
	}

	return SearchResult{Filters: set, Count: count, Rows: rows}, nil
}

// GenerateReport summarizes every row matching the filter Set.
func (e *Engine) GenerateReport(ctx context.Context, set filter.Set) (report.Report, error) {
	rows, err := e.store.SelectRows(ctx, set, 0)
	if err != nil {
		return report.Report{}, fmt.Errorf("select rows: %w", err)
	}
	return e.reports.Build(set, rows, time.Now()), nil
}
