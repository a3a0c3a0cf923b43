package engine

import (
	"context"
	"testing"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/store"
)

func TestAdminBreakdownGroupsAndSorts(t *testing.T) {
	mem := store.NewMemory()
	mem.Admins = []store.ImpactRecord{
		tileRecord(testKey, "JAM_0002_V2", 300, 0, 0),
		tileRecord(testKey, "JAM_0001_V2", 400, 0, 0),
		tileRecord(testKey, "JAM_0001_V2", 600, 0, 0), // same zone, summed
		tileRecord(testKey, "JAM_0003_V2", 300, 0, 0),
	}
	// The tile total matches the admin sum, so the cross-check passes.
	mem.Tiles = []store.ImpactRecord{tileRecord(testKey, "tile-1", 1600, 0, 0)}
	mem.Names = map[string]map[string]string{
		"JAM": {"JAM_0001_V2": "Kingston"},
	}

	e := New(mem)
	got, err := e.AdminBreakdown(context.Background(), testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Areas) != 3 {
		t.Fatalf("areas = %d, want 3", len(got.Areas))
	}
	if got.Areas[0].ZoneID != "JAM_0001_V2" || got.Areas[0].Population != 1000 {
		t.Errorf("first area = %s/%v, want JAM_0001_V2/1000", got.Areas[0].ZoneID, got.Areas[0].Population)
	}
	if got.Areas[0].Name != "Kingston" {
		t.Errorf("name = %s, want Kingston", got.Areas[0].Name)
	}
	// Unmapped zones fall back to the raw id.
	if got.Areas[1].Name != "JAM_0002_V2" {
		t.Errorf("fallback name = %s, want raw id", got.Areas[1].Name)
	}
	// Population ties sort by zone id ascending.
	if got.Areas[1].ZoneID != "JAM_0002_V2" || got.Areas[2].ZoneID != "JAM_0003_V2" {
		t.Errorf("tie order = %s, %s, want JAM_0002_V2 then JAM_0003_V2", got.Areas[1].ZoneID, got.Areas[2].ZoneID)
	}
	if !got.Consistent || got.Warning != "" {
		t.Errorf("expected consistent result, got warning %q", got.Warning)
	}
}

func TestAdminBreakdownInconsistencyWarning(t *testing.T) {
	mem := store.NewMemory()
	mem.Admins = []store.ImpactRecord{
		tileRecord(testKey, "JAM_0001_V2", 1000, 0, 0),
	}
	// Tile total disagrees with the admin sum by far more than 0.01%.
	mem.Tiles = []store.ImpactRecord{tileRecord(testKey, "tile-1", 2000, 0, 0)}

	e := New(mem)
	got, err := e.AdminBreakdown(context.Background(), testKey)
	if err != nil {
		t.Fatalf("cross-check failure must be a warning, not an error: %v", err)
	}
	if got.Consistent || got.Warning == "" {
		t.Errorf("expected inconsistency warning, got %+v", got)
	}
	// The per-area numbers are still reported.
	if len(got.Areas) != 1 || got.Areas[0].Population != 1000 {
		t.Errorf("areas = %+v, want the admin rows untouched", got.Areas)
	}
}

func TestAdminBreakdownWithinTolerance(t *testing.T) {
	mem := store.NewMemory()
	mem.Admins = []store.ImpactRecord{
		tileRecord(testKey, "JAM_0001_V2", 260194, 0, 0),
	}
	// Off by well under 0.01% relative.
	mem.Tiles = []store.ImpactRecord{tileRecord(testKey, "tile-1", 260194.01, 0, 0)}

	e := New(mem)
	got, err := e.AdminBreakdown(context.Background(), testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Consistent {
		t.Errorf("sub-tolerance disagreement should pass, got warning %q", got.Warning)
	}
}

func TestAdminBreakdownMissingAdminRowsWarns(t *testing.T) {
	mem := store.NewMemory()
	// Tile rows exist but the admin view is empty: a threshold or data
	// mismatch, not a clean no-data state.
	mem.Tiles = []store.ImpactRecord{tileRecord(testKey, "tile-1", 2000, 0, 0)}

	e := New(mem)
	got, err := e.AdminBreakdown(context.Background(), testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Consistent || got.Warning == "" {
		t.Errorf("expected inconsistency warning when only tile rows exist, got %+v", got)
	}
}

func TestAdminBreakdownNoData(t *testing.T) {
	e := New(store.NewMemory())
	got, err := e.AdminBreakdown(context.Background(), testKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HasData || len(got.Areas) != 0 {
		t.Errorf("empty store: got %+v, want no-data result", got)
	}
	if !got.Consistent {
		t.Error("no data should not raise an inconsistency warning")
	}
}
