package filter

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

func TestNewSetSortsAndDedups(t *testing.T) {
	s := NewSet(map[vocab.Category][]string{
		vocab.Borough: {"QUEENS", "BROOKLYN", "QUEENS", ""},
		vocab.Year:    {},
	})

	if got := s.Values(vocab.Borough); !reflect.DeepEqual(got, []string{"BROOKLYN", "QUEENS"}) {
		t.Errorf("Values = %v", got)
	}
	if got := s.Categories(); !reflect.DeepEqual(got, []vocab.Category{vocab.Borough}) {
		t.Errorf("Categories = %v, empty value lists should be dropped", got)
	}
}

func TestSetImmutability(t *testing.T) {
	input := map[vocab.Category][]string{vocab.Borough: {"BRONX"}}
	s := NewSet(input)

	input[vocab.Borough][0] = "QUEENS"
	if !s.Has(vocab.Borough, "BRONX") {
		t.Error("Set must copy its input")
	}

	vals := s.Values(vocab.Borough)
	vals[0] = "QUEENS"
	if !s.Has(vocab.Borough, "BRONX") {
		t.Error("Values must return a copy")
	}
}

func TestEmpty(t *testing.T) {
	if !NewSet(nil).Empty() {
		t.Error("nil input should build an empty Set")
	}
	if NewSet(map[vocab.Category][]string{vocab.Year: {"2022"}}).Empty() {
		t.Error("Set with values is not empty")
	}
}

func TestAllows(t *testing.T) {
	s := NewSet(map[vocab.Category][]string{vocab.Borough: {"BROOKLYN", "QUEENS"}})

	if !s.Allows(vocab.Borough, "QUEENS") {
		t.Error("selected value should pass")
	}
	if s.Allows(vocab.Borough, "BRONX") {
		t.Error("unselected value should fail")
	}
	if !s.Allows(vocab.Year, "2022") {
		t.Error("unfiltered category allows everything")
	}
}

func TestEqual(t *testing.T) {
	a := NewSet(map[vocab.Category][]string{vocab.Borough: {"QUEENS", "BROOKLYN"}})
	b := NewSet(map[vocab.Category][]string{vocab.Borough: {"BROOKLYN", "QUEENS"}})
	c := NewSet(map[vocab.Category][]string{vocab.Borough: {"BROOKLYN"}})

	if !a.Equal(b) {
		t.Error("order of input values must not matter")
	}
	if a.Equal(c) {
		t.Error("different value sets must not be equal")
	}
}

func TestMerge(t *testing.T) {
	dropdowns := NewSet(map[vocab.Category][]string{
		vocab.Borough:     {"BRONX"},
		vocab.VehicleType: {"Taxi"},
	})
	parsed := NewSet(map[vocab.Category][]string{
		vocab.Borough: {"BROOKLYN", "QUEENS"},
		vocab.Year:    {"2022"},
	})

	merged := dropdowns.Merge(parsed)

	if got := merged.Values(vocab.Borough); !reflect.DeepEqual(got, []string{"BROOKLYN", "QUEENS"}) {
		t.Errorf("parsed borough should override dropdown, got %v", got)
	}
	if !merged.Has(vocab.VehicleType, "Taxi") {
		t.Error("unbound dropdown category should survive")
	}
	if !merged.Has(vocab.Year, "2022") {
		t.Error("parsed-only category should be added")
	}
}

func TestString(t *testing.T) {
	if got := NewSet(nil).String(); got != "(unfiltered)" {
		t.Errorf("String = %q", got)
	}

	s := NewSet(map[vocab.Category][]string{
		vocab.Year:    {"2022"},
		vocab.Borough: {"QUEENS", "BROOKLYN"},
	})
	want := "borough=[BROOKLYN QUEENS] year=[2022]"
	if got := s.String(); got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	s := NewSet(map[vocab.Category][]string{
		vocab.Borough: {"BROOKLYN"},
		vocab.Year:    {"2021", "2022"},
	})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Set
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if !s.Equal(decoded) {
		t.Errorf("round trip changed the Set: %s vs %s", s, decoded)
	}
}

func TestUnmarshalDropsUnknownCategories(t *testing.T) {
	var s Set
	err := json.Unmarshal([]byte(`{"borough":["QUEENS"],"weather":["RAIN"]}`), &s)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Has(vocab.Borough, "QUEENS") {
		t.Error("known category lost")
	}
	if len(s.Categories()) != 1 {
		t.Errorf("unknown category kept: %v", s.Categories())
	}
}
