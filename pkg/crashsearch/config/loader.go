package config

import (
	"context"
	"fmt"

	"github.com/cognicore/crashsearch/pkg/crashsearch/store"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

// Loader builds the frozen vocabulary tables from the curated YAML plus,
// optionally, the dataset itself. The dataset contributes the values the
// curated file cannot know (the years actually covered, the long tail of
// contributing factors); the curated file contributes the aliases the data
// cannot know ("bk" for BROOKLYN, "cyclist" for BICYCLIST).
type Loader struct {
	VocabPath string

	// Store, when set, bootstraps category values from the dataset.
	Store store.Store

	// VehicleTypeLimit caps dataset-derived vehicle types;
	// 0 means DefaultVehicleTypeLimit.
	VehicleTypeLimit int
}

// Components holds everything the loader produced.
type Components struct {
	Config *Config
	Vocabs *vocab.Vocabularies
}

// Load reads the configuration, merges in dataset values, and returns frozen
// vocabularies ready for the recognizer. Any failure here is startup-fatal
// for the caller.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg, err := Load(l.VocabPath)
	if err != nil {
		return nil, err
	}

	vocabs := vocab.New()
	for name, entries := range cfg.Categories {
		cat := vocab.Category(name)
		for _, e := range entries {
			err := vocabs.Add(cat, vocab.Entry{Canonical: e.Canonical, Aliases: e.Aliases})
			if err != nil {
				return nil, fmt.Errorf("vocab entry %q/%q: %w", name, e.Canonical, err)
			}
		}
	}

	yearMin, yearMax := cfg.Years.Min, cfg.Years.Max
	if l.Store != nil {
		if err := l.bootstrap(ctx, vocabs); err != nil {
			return nil, err
		}
		// The dataset's actual coverage beats the configured bounds.
		if min, max, ok, err := l.Store.YearRange(ctx); err != nil {
			return nil, fmt.Errorf("bootstrap year range: %w", err)
		} else if ok {
			yearMin, yearMax = min, max
		}
	}
	if yearMin > 0 {
		if err := vocabs.SetYearRange(yearMin, yearMax); err != nil {
			return nil, err
		}
	}

	if err := vocabs.Freeze(); err != nil {
		return nil, err
	}
	return &Components{Config: cfg, Vocabs: vocabs}, nil
}

func (l *Loader) bootstrap(ctx context.Context, vocabs *vocab.Vocabularies) error {
	vehicleLimit := l.VehicleTypeLimit
	if vehicleLimit <= 0 {
		vehicleLimit = DefaultVehicleTypeLimit
	}

	limits := map[vocab.Category]int{
		vocab.Borough:            0,
		vocab.VehicleType:        vehicleLimit,
		vocab.ContributingFactor: 0,
		vocab.InjuryType:         0,
		vocab.PersonType:         0,
	}

	for cat, limit := range limits {
		values, err := l.Store.DistinctValues(ctx, cat, limit)
		if err != nil {
			return fmt.Errorf("bootstrap %s values: %w", cat, err)
		}
		for _, v := range values {
			if err := vocabs.Add(cat, vocab.Entry{Canonical: v}); err != nil {
				return err
			}
		}
	}
	return nil
}
