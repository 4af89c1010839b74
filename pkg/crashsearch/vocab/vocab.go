package vocab

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cognicore/crashsearch/pkg/crashsearch/internalerr"
	"github.com/cognicore/crashsearch/pkg/crashsearch/tokenize"
)

// Category identifies one filterable dimension of the collision dataset.
type Category string

const (
	Borough            Category = "borough"
	Year               Category = "year"
	VehicleType        Category = "vehicle_type"
	ContributingFactor Category = "contributing_factor"
	InjuryType         Category = "injury_type"
	PersonType         Category = "person_type"
)

// Categories returns all known categories in a stable order.
func Categories() []Category {
	return []Category{Borough, Year, VehicleType, ContributingFactor, InjuryType, PersonType}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case Borough, Year, VehicleType, ContributingFactor, InjuryType, PersonType:
		return true
	}
	return false
}

// Entry is a canonical filter value plus the surface forms that resolve to it.
// The canonical string itself always counts as an alias.
type Entry struct {
	Canonical string
	Aliases   []string
}

// Vocabulary holds the entries for one category. Aliases are indexed in
// tokenizer-normalized form so lookup agrees with query tokenization.
type Vocabulary struct {
	category Category
	entries  []Entry
	index    map[string]string // normalized alias → canonical
}

// Vocabularies is the full read-only vocabulary table, one Vocabulary per
// category. It is built once at startup and shared by reference across
// concurrent queries; nothing mutates it after Freeze.
type Vocabularies struct {
	byCategory map[Category]*Vocabulary
	yearMin    int
	yearMax    int
	frozen     bool
}

// New creates an empty vocabulary table. Populate it with Add and SetYearRange
// during startup, then call Freeze before handing it to the recognizer.
func New() *Vocabularies {
	return &Vocabularies{byCategory: make(map[Category]*Vocabulary)}
}

// Add registers an entry under the given category. Duplicate canonicals merge
// their alias lists. Calling Add after Freeze panics: the table is shared
// read-only state once queries start flowing.
func (v *Vocabularies) Add(cat Category, e Entry) error {
	if v.frozen {
		panic("vocab: Add after Freeze")
	}
	if !cat.Valid() {
		return fmt.Errorf("vocab: unknown category %q: %w", cat, internalerr.ErrInvalidConfig)
	}
	if tokenize.Normalize(e.Canonical) == "" {
		return fmt.Errorf("vocab: empty canonical in category %q: %w", cat, internalerr.ErrInvalidConfig)
	}

	voc := v.byCategory[cat]
	if voc == nil {
		voc = &Vocabulary{category: cat, index: make(map[string]string)}
		v.byCategory[cat] = voc
	}

	for i := range voc.entries {
		if voc.entries[i].Canonical == e.Canonical {
			voc.entries[i].Aliases = append(voc.entries[i].Aliases, e.Aliases...)
			voc.reindex(voc.entries[i])
			return nil
		}
	}

	voc.entries = append(voc.entries, Entry{Canonical: e.Canonical, Aliases: append([]string(nil), e.Aliases...)})
	voc.reindex(voc.entries[len(voc.entries)-1])
	return nil
}

func (voc *Vocabulary) reindex(e Entry) {
	forms := append([]string{e.Canonical}, e.Aliases...)
	for _, form := range forms {
		norm := tokenize.Normalize(form)
		if norm == "" {
			continue
		}
		// First registration wins so alias collisions stay deterministic.
		if _, ok := voc.index[norm]; !ok {
			voc.index[norm] = e.Canonical
		}
	}
}

// SetYearRange bounds the plausible year values to the dataset's coverage.
// Years outside [min, max] are dropped during filter building, never guessed.
func (v *Vocabularies) SetYearRange(min, max int) error {
	if v.frozen {
		panic("vocab: SetYearRange after Freeze")
	}
	if min <= 0 || max < min {
		return fmt.Errorf("vocab: year range [%d, %d]: %w", min, max, internalerr.ErrInvalidConfig)
	}
	v.yearMin, v.yearMax = min, max
	for y := min; y <= max; y++ {
		if err := v.Add(Year, Entry{Canonical: strconv.Itoa(y)}); err != nil {
			return err
		}
	}
	return nil
}

// Freeze marks the table immutable. It returns an error when no category has
// any entries, which is a startup-fatal condition for the recognizer.
func (v *Vocabularies) Freeze() error {
	total := 0
	for _, voc := range v.byCategory {
		total += len(voc.entries)
	}
	if total == 0 {
		return fmt.Errorf("vocab: no entries loaded: %w", internalerr.ErrInvalidConfig)
	}
	v.frozen = true
	return nil
}

// Category returns the vocabulary for a category, or nil when it has no entries.
func (v *Vocabularies) Category(cat Category) *Vocabulary {
	return v.byCategory[cat]
}

// YearRange returns the configured plausible year bounds. ok is false when no
// range was configured, in which case year plausibility falls back to plain
// vocabulary membership.
func (v *Vocabularies) YearRange() (min, max int, ok bool) {
	return v.yearMin, v.yearMax, v.yearMin > 0
}

// Contains reports whether canonical is a known value of the category.
func (v *Vocabularies) Contains(cat Category, canonical string) bool {
	voc := v.byCategory[cat]
	if voc == nil {
		return false
	}
	for _, e := range voc.entries {
		if e.Canonical == canonical {
			return true
		}
	}
	return false
}

// Canonicals returns the sorted canonical values of a category.
func (v *Vocabularies) Canonicals(cat Category) []string {
	voc := v.byCategory[cat]
	if voc == nil {
		return nil
	}
	out := make([]string, len(voc.entries))
	for i, e := range voc.entries {
		out[i] = e.Canonical
	}
	sort.Strings(out)
	return out
}

// Lookup resolves a normalized surface form to its canonical value.
func (voc *Vocabulary) Lookup(normalized string) (string, bool) {
	canonical, ok := voc.index[normalized]
	return canonical, ok
}

// Forms calls fn for every indexed surface form with its canonical value.
// Iteration order is sorted so fuzzy matching stays deterministic.
func (voc *Vocabulary) Forms(fn func(form, canonical string)) {
	forms := make([]string, 0, len(voc.index))
	for form := range voc.index {
		forms = append(forms, form)
	}
	sort.Strings(forms)
	for _, form := range forms {
		fn(form, voc.index[form])
	}
}

// MaxWindow returns the largest token count across the indexed surface forms.
func (voc *Vocabulary) MaxWindow() int {
	max := 1
	for form := range voc.index {
		if n := len(tokenize.Tokenize(form)); n > max {
			max = n
		}
	}
	return max
}
