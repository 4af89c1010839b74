package crashsearch

import (
	"context"
	"testing"
	"time"

	"github.com/cognicore/crashsearch/pkg/crashsearch/filter"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store"
	"github.com/cognicore/crashsearch/pkg/crashsearch/store/memstore"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

// End-to-end: raw query in, filtered rows and report out, against an
// in-memory dataset shaped like the collision export.

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedEngine(t *testing.T) *Engine {
	t.Helper()

	ctx := context.Background()
	st := memstore.New()
	rows := []store.Row{
		{CrashDate: day(2022, 1, 3), CrashTime: "09:15", Borough: "BROOKLYN",
			PersonType: "PEDESTRIAN", PersonInjury: "INJURED", VehicleType: "Sedan"},
		{CrashDate: day(2022, 4, 9), CrashTime: "17:40", Borough: "BROOKLYN",
			PersonType: "BICYCLIST", PersonInjury: "KILLED", VehicleType: "Taxi"},
		{CrashDate: day(2021, 7, 21), CrashTime: "23:05", Borough: "QUEENS",
			PersonType: "OCCUPANT", PersonInjury: "INJURED", VehicleType: "Sedan"},
		{CrashDate: day(2021, 8, 2), CrashTime: "12:30", Borough: "MANHATTAN",
			PersonType: "PEDESTRIAN", PersonInjury: "KILLED", VehicleType: "Taxi"},
	}
	if err := st.InsertRows(ctx, rows); err != nil {
		t.Fatal(err)
	}

	interp, err := NewInterpreter(Options{Vocabs: testVocabs(t)})
	if err != nil {
		t.Fatal(err)
	}
	engine, err := NewEngine(interp, st)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func TestSearchEndToEnd(t *testing.T) {
	engine := seedEngine(t)
	ctx := context.Background()

	result, err := engine.Search(ctx, "brooklyn 2022 pedestrian crashes", -1)
	if err != nil {
		t.Fatal(err)
	}

	if result.Count != 1 {
		t.Errorf("Count = %d, want 1", result.Count)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("Rows = %d", len(result.Rows))
	}
	if result.Rows[0].Borough != "BROOKLYN" || result.Rows[0].PersonType != "PEDESTRIAN" {
		t.Errorf("row = %+v", result.Rows[0])
	}
}

func TestSearchUnrecognizedShowsEverything(t *testing.T) {
	engine := seedEngine(t)

	result, err := engine.Search(context.Background(), "xyzzy gibberish", -1)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Filters.Empty() {
		t.Errorf("filters = %s", result.Filters)
	}
	if result.Count != 4 {
		t.Errorf("Count = %d, want all rows", result.Count)
	}
}

func TestSearchZeroLimitSkipsRows(t *testing.T) {
	engine := seedEngine(t)

	result, err := engine.Search(context.Background(), "brooklyn", 0)
	if err != nil {
		t.Fatal(err)
	}
	if result.Count != 2 {
		t.Errorf("Count = %d", result.Count)
	}
	if result.Rows != nil {
		t.Errorf("Rows should be skipped at limit 0, got %d", len(result.Rows))
	}
}

func TestGenerateReportEndToEnd(t *testing.T) {
	engine := seedEngine(t)
	ctx := context.Background()

	set, err := engine.Interpret("taxi fatalities")
	if err != nil {
		t.Fatal(err)
	}

	rep, err := engine.GenerateReport(ctx, set)
	if err != nil {
		t.Fatal(err)
	}

	if rep.Total != 2 {
		t.Errorf("Total = %d, want the two fatal taxi crashes", rep.Total)
	}
	if rep.Message != "Report generated successfully: 2 records found." {
		t.Errorf("Message = %q", rep.Message)
	}
	if len(rep.ByBorough) != 2 {
		t.Errorf("ByBorough = %+v", rep.ByBorough)
	}
}

func TestGenerateReportUnfiltered(t *testing.T) {
	engine := seedEngine(t)

	rep, err := engine.GenerateReport(context.Background(), filter.NewSet(nil))
	if err != nil {
		t.Fatal(err)
	}
	if rep.Total != 4 {
		t.Errorf("Total = %d", rep.Total)
	}
	if got := rep.Filters.Values(vocab.Borough); got != nil {
		t.Errorf("unexpected filters: %v", got)
	}
}
