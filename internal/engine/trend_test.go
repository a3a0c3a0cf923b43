package engine

import (
	"context"
	"testing"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/store"
)

func refKey(date string) scenario.Key {
	return scenario.Key{Country: "JAM", Storm: "BERYL", ForecastDate: date, WindThreshold: scenario.ReferenceThreshold}
}

func TestFindPreviousForecast(t *testing.T) {
	mem := store.NewMemory()
	for _, date := range []string{"20240701000000", "20240701120000", "20240702000000", "20240703000000"} {
		mem.Admins = append(mem.Admins, tileRecord(refKey(date), "JAM_0001_V2", 100, 0, 0))
	}
	e := New(mem)

	tests := []struct {
		name        string
		current     string
		expected    string
		hasPrevious bool
	}{
		{"MiddleOfSeries", "20240702000000", "20240701120000", true},
		{"LatestRun", "20240703000000", "20240702000000", true},
		{"FirstRun", "20240701000000", "", false},
		{"BetweenRuns", "20240701180000", "20240701120000", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.FindPreviousForecast(context.Background(), "JAM", "BERYL", tt.current)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.HasPrevious != tt.hasPrevious {
				t.Fatalf("HasPrevious = %v, want %v", got.HasPrevious, tt.hasPrevious)
			}
			if got.PreviousForecastDate != tt.expected {
				t.Errorf("previous = %q, want %q", got.PreviousForecastDate, tt.expected)
			}
		})
	}
}

func TestFindPreviousForecastBadDate(t *testing.T) {
	e := New(store.NewMemory())
	if _, err := e.FindPreviousForecast(context.Background(), "JAM", "BERYL", "2024-07-03"); err == nil {
		t.Error("expected an error for a malformed forecast date")
	}
}

func TestCompareTotalsPercentChange(t *testing.T) {
	current := testKey
	previous := testKey.WithForecastDate("20240702000000")

	mem := store.NewMemory()
	mem.Tiles = []store.ImpactRecord{
		tileRecord(current, "tile-1", 1500, 300, 0),
		tileRecord(previous, "tile-1", 1000, 0, 0),
	}

	e := New(mem)
	got, err := e.CompareTotals(context.Background(), current, previous)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Population.Change != 500 {
		t.Errorf("population change = %v, want 500", got.Population.Change)
	}
	if got.Population.PercentChange == nil || *got.Population.PercentChange != 50.0 {
		t.Errorf("population percent change = %v, want 50.0", got.Population.PercentChange)
	}

	// Growth from a zero base has no percentage representation.
	if got.TotalChildren.PercentChange != nil {
		t.Errorf("children percent change = %v, want nil for zero baseline", *got.TotalChildren.PercentChange)
	}
	if got.TotalChildren.Change != 300 {
		t.Errorf("children change = %v, want 300", got.TotalChildren.Change)
	}

	// Zero to zero is a plain 0% change.
	if got.Schools.PercentChange == nil || *got.Schools.PercentChange != 0 {
		t.Errorf("schools percent change = %v, want 0", got.Schools.PercentChange)
	}
}

func TestCompareAdminBreakdownOuterJoin(t *testing.T) {
	current := testKey
	previous := testKey.WithForecastDate("20240702000000")

	mem := store.NewMemory()
	mem.Admins = []store.ImpactRecord{
		tileRecord(current, "JAM_0001_V2", 500, 0, 0),
		tileRecord(previous, "JAM_0001_V2", 450, 0, 0),
		// Present only in the previous run: matched against a zero current.
		tileRecord(previous, "JAM_0002_V2", 200, 0, 0),
		// Present only in the current run.
		tileRecord(current, "JAM_0003_V2", 80, 0, 0),
	}
	mem.Tiles = []store.ImpactRecord{
		tileRecord(current, "tile-1", 580, 0, 0),
		tileRecord(previous, "tile-1", 650, 0, 0),
	}

	e := New(mem)
	got, err := e.CompareAdminBreakdown(context.Background(), current, previous)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Areas) != 3 {
		t.Fatalf("areas = %d, want 3 (outer join keeps one-sided areas)", len(got.Areas))
	}

	// Sorted by absolute change descending: -200, +80, +50.
	if got.Areas[0].ZoneID != "JAM_0002_V2" || got.Areas[0].Delta.Change != -200 {
		t.Errorf("first row = %s/%v, want JAM_0002_V2/-200", got.Areas[0].ZoneID, got.Areas[0].Delta.Change)
	}
	if got.Areas[1].ZoneID != "JAM_0003_V2" || got.Areas[1].Delta.Change != 80 {
		t.Errorf("second row = %s/%v, want JAM_0003_V2/80", got.Areas[1].ZoneID, got.Areas[1].Delta.Change)
	}
	if got.Areas[2].Delta.Change != 50 {
		t.Errorf("third row change = %v, want 50", got.Areas[2].Delta.Change)
	}

	// The vanished area reports a nil percent change only when its previous
	// value was zero; here previous=200, current=0 gives -100%.
	if got.Areas[0].Delta.PercentChange == nil || *got.Areas[0].Delta.PercentChange != -100.0 {
		t.Errorf("vanished area percent change = %v, want -100.0", got.Areas[0].Delta.PercentChange)
	}
}
