// Package report builds the summary behind the dashboard's Generate Report
// action: counts and breakdowns over the rows matching a filter Set. The
// breakdowns mirror the dashboard's charts (crashes per borough, injury
// types, monthly series, hour-by-weekday matrix); rendering them is the
// dashboard's job, not this package's.
package report

import (
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/crashsearch/pkg/crashsearch/filter"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store"
)

// Report is a structured summary of the rows matching a filter Set.
type Report struct {
	ID          string           `json:"id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Filters     filter.Set       `json:"filters"`
	Total       int              `json:"total"`
	Message     string           `json:"message"`
	ByBorough   []ValueCount     `json:"by_borough"`
	ByInjury    []ValueCount     `json:"by_injury"`
	ByMonth     []MonthCount     `json:"by_month"`
	HourWeekday [24][7]int       `json:"hour_weekday"`
	Locations   []store.Location `json:"locations,omitempty"`
}

// ValueCount is one bar of a categorical breakdown.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// MonthCount is one point of the monthly crash series.
type MonthCount struct {
	Month string `json:"month"` // "2022-01"
	Count int    `json:"count"`
}

// Builder constructs reports with monotonic ULID identifiers. It is safe
// for concurrent use.
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	// MaxLocations caps the location sample included in a report, matching
	// the dashboard's map sampling. Zero disables locations entirely.
	MaxLocations int
}

// New creates a report builder with the default location sample size.
func New() *Builder {
	return &Builder{
		entropy:      ulid.Monotonic(rand.Reader, 0),
		MaxLocations: 1000,
	}
}

// Build summarizes the given rows, which are assumed to already match set.
func (b *Builder) Build(set filter.Set, rows []store.Row, now time.Time) Report {
	b.mu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), b.entropy).String()
	b.mu.Unlock()

	r := Report{
		ID:          id,
		GeneratedAt: now,
		Filters:     set,
		Total:       len(rows),
		Message:     fmt.Sprintf("Report generated successfully: %d records found.", len(rows)),
	}

	borough := make(map[string]int)
	injury := make(map[string]int)
	month := make(map[string]int)

	for _, row := range rows {
		if row.Borough != "" {
			borough[row.Borough]++
		}
		if row.PersonInjury != "" {
			injury[row.PersonInjury]++
		}
		if !row.CrashDate.IsZero() {
			month[row.CrashDate.Format("2006-01")]++
			if hour := row.Hour(); hour >= 0 {
				r.HourWeekday[hour][int(row.CrashDate.Weekday())]++
			}
		}
		if row.HasLocation && b.MaxLocations > 0 && len(r.Locations) < b.MaxLocations {
			r.Locations = append(r.Locations, store.Location{Latitude: row.Latitude, Longitude: row.Longitude})
		}
	}

	r.ByBorough = sortedCounts(borough)
	r.ByInjury = sortedCounts(injury)

	months := make([]string, 0, len(month))
	for m := range month {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		r.ByMonth = append(r.ByMonth, MonthCount{Month: m, Count: month[m]})
	}

	return r
}

// sortedCounts orders a breakdown by count descending, ties alphabetical.
func sortedCounts(counts map[string]int) []ValueCount {
	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
