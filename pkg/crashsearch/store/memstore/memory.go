// Package memstore is an in-memory store.Store for tests and small datasets.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/crashsearch/pkg/crashsearch/filter"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

// Store keeps rows in insertion order behind an RWMutex.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	rows   []store.Row
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{nextID: 1}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// InsertRows appends rows, assigning IDs.
func (s *Store) InsertRows(ctx context.Context, rows []store.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		r.ID = s.nextID
		s.nextID++
		s.rows = append(s.rows, r)
	}
	return nil
}

// CountRows returns the number of rows passing the filter Set.
func (s *Store) CountRows(ctx context.Context, set filter.Set) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.rows {
		if r.Matches(set) {
			n++
		}
	}
	return n, nil
}

// SelectRows returns up to limit rows passing the filter Set, in insertion
// order. limit <= 0 means unlimited.
func (s *Store) SelectRows(ctx context.Context, set filter.Set, limit int) ([]store.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Row
	for _, r := range s.rows {
		if !r.Matches(set) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// DistinctValues returns the non-empty values of a category, most frequent
// first, ties alphabetical.
func (s *Store) DistinctValues(ctx context.Context, cat vocab.Category, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, r := range s.rows {
		if v := r.CategoryValue(cat); v != "" {
			counts[v]++
		}
	}

	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})

	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values, nil
}

// YearRange returns the min and max crash year across all rows.
func (s *Store) YearRange(ctx context.Context) (int, int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	min, max := 0, 0
	for _, r := range s.rows {
		y := r.CrashDate.Year()
		if min == 0 || y < min {
			min = y
		}
		if y > max {
			max = y
		}
	}
	if min == 0 {
		return 0, 0, false, nil
	}
	return min, max, true, nil
}
