// Package filter defines the structured filter predicate produced from a
// search query and the builder that assembles it from candidate matches.
//
// A Set maps categories to allowed canonical values. Values within a category
// combine with OR; categories combine with AND. A category absent from the
// Set leaves that dimension unfiltered.
package filter

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

// Set is the sole artifact crossing the boundary to the dataset query layer.
// It is immutable once built; accessors return copies.
type Set struct {
	values map[vocab.Category][]string // sorted, deduplicated
}

// NewSet builds a Set from a category → values mapping, copying, sorting and
// deduplicating the input. Empty value lists are dropped.
func NewSet(values map[vocab.Category][]string) Set {
	m := make(map[vocab.Category][]string, len(values))
	for cat, vals := range values {
		cleaned := dedupSorted(vals)
		if len(cleaned) > 0 {
			m[cat] = cleaned
		}
	}
	return Set{values: m}
}

// Empty reports whether no category has any selected value. An empty Set
// means "show everything".
func (s Set) Empty() bool { return len(s.values) == 0 }

// Categories returns categories with at least one selected value, in the
// canonical category order.
func (s Set) Categories() []vocab.Category {
	var out []vocab.Category
	for _, cat := range vocab.Categories() {
		if len(s.values[cat]) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// Values returns the selected canonical values for a category, sorted.
func (s Set) Values(cat vocab.Category) []string {
	vals := s.values[cat]
	if len(vals) == 0 {
		return nil
	}
	return append([]string(nil), vals...)
}

// Has reports whether canonical is selected for the category.
func (s Set) Has(cat vocab.Category, canonical string) bool {
	for _, v := range s.values[cat] {
		if v == canonical {
			return true
		}
	}
	return false
}

// Allows reports whether a row value passes the category's predicate: true
// when the category is unfiltered or the value is among the selected ones.
func (s Set) Allows(cat vocab.Category, value string) bool {
	vals := s.values[cat]
	if len(vals) == 0 {
		return true
	}
	for _, v := range vals {
		if v == value {
			return true
		}
	}
	return false
}

// Equal reports whether two Sets select exactly the same values.
func (s Set) Equal(other Set) bool {
	if len(s.values) != len(other.values) {
		return false
	}
	for cat, vals := range s.values {
		otherVals := other.values[cat]
		if len(vals) != len(otherVals) {
			return false
		}
		for i := range vals {
			if vals[i] != otherVals[i] {
				return false
			}
		}
	}
	return true
}

// Merge returns a Set where categories present in override replace the same
// categories in s. The dashboard uses this to let a parsed search query
// override the dropdowns it binds while leaving the others alone.
func (s Set) Merge(override Set) Set {
	merged := make(map[vocab.Category][]string, len(s.values)+len(override.values))
	for cat, vals := range s.values {
		merged[cat] = vals
	}
	for cat, vals := range override.values {
		merged[cat] = vals
	}
	return NewSet(merged)
}

// String renders the Set for logs and the CLI, e.g.
// "borough=[BROOKLYN QUEENS] year=[2022]".
func (s Set) String() string {
	if s.Empty() {
		return "(unfiltered)"
	}
	var b strings.Builder
	for i, cat := range s.Categories() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(cat))
		b.WriteString("=[")
		b.WriteString(strings.Join(s.values[cat], " "))
		b.WriteByte(']')
	}
	return b.String()
}

// MarshalJSON encodes the Set as a plain category → values object.
func (s Set) MarshalJSON() ([]byte, error) {
	m := make(map[vocab.Category][]string, len(s.values))
	for cat, vals := range s.values {
		m[cat] = vals
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a category → values object, dropping unknown
// categories rather than failing on them.
func (s *Set) UnmarshalJSON(data []byte) error {
	var m map[vocab.Category][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for cat := range m {
		if !cat.Valid() {
			delete(m, cat)
		}
	}
	*s = NewSet(m)
	return nil
}

func dedupSorted(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
