// Package store persists collision records and answers filtered queries over
// them. The query contract matches the dashboard's: a row passes a filter Set
// when, for every category present in the Set, the row's value for that
// category is among the selected ones.
package store

import (
	"context"
	"time"

	"github.com/cognicore/crashsearch/pkg/crashsearch/filter"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

// Store is the interface for persisting and querying collision rows.
type Store interface {
	Close() error

	InsertRows(ctx context.Context, rows []Row) error
	CountRows(ctx context.Context, set filter.Set) (int64, error)
	SelectRows(ctx context.Context, set filter.Set, limit int) ([]Row, error)

	// DistinctValues feeds vocabulary bootstrap: the non-empty values a
	// category actually takes in the dataset, most frequent first. limit <= 0
	// means unlimited.
	DistinctValues(ctx context.Context, cat vocab.Category, limit int) ([]string, error)

	// YearRange returns the span of crash years present in the dataset.
	// ok is false when the store holds no rows.
	YearRange(ctx context.Context) (min, max int, ok bool, err error)
}

// Row is one collision record, carrying the columns the dashboard filters and
// aggregates on.
type Row struct {
	ID                 int64     `json:"id"`
	CrashDate          time.Time `json:"crash_date"`
	CrashTime          string    `json:"crash_time,omitempty"` // "HH:MM", empty when unknown
	Borough            string    `json:"borough,omitempty"`
	Latitude           float64   `json:"lat,omitempty"`
	Longitude          float64   `json:"lon,omitempty"`
	HasLocation        bool      `json:"has_location"`
	PersonType         string    `json:"person_type,omitempty"`
	PersonInjury       string    `json:"person_injury,omitempty"`
	VehicleType        string    `json:"vehicle_type,omitempty"`
	ContributingFactor string    `json:"contributing_factor,omitempty"`
}

// Location is a crash coordinate pair, sampled into report map data.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// CategoryValue returns the row's value for a filter category. Year is
// rendered as the four-digit crash year.
func (r Row) CategoryValue(cat vocab.Category) string {
	switch cat {
	case vocab.Borough:
		return r.Borough
	case vocab.Year:
		if r.CrashDate.IsZero() {
			return ""
		}
		return r.CrashDate.Format("2006")
	case vocab.VehicleType:
		return r.VehicleType
	case vocab.ContributingFactor:
		return r.ContributingFactor
	case vocab.InjuryType:
		return r.PersonInjury
	case vocab.PersonType:
		return r.PersonType
	}
	return ""
}

// Matches reports whether the row passes every category predicate in the Set.
func (r Row) Matches(set filter.Set) bool {
	for _, cat := range set.Categories() {
		if !set.Allows(cat, r.CategoryValue(cat)) {
			return false
		}
	}
	return true
}
