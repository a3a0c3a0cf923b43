package gen

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/store"
)

func TestParseThresholds(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{name: "single", input: "50", want: []int{50}},
		{name: "list with spaces", input: "34, 50, 64", want: []int{34, 50, 64}},
		{name: "not a knot value", input: "34,55", wantErr: true},
		{name: "not a number", input: "34,fifty", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseThresholds(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseThresholds(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseThresholds(%q): %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

// TestGenerateRoundTrip writes a small dataset and reads it back through the
// file store, checking the generated views hold together.
func TestGenerateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Country:    "JAM",
		Storm:      "BERYL",
		Runs:       2,
		Members:    52,
		Zones:      4,
		Thresholds: []int{34, 50},
		Format:     "csv",
		Seed:       7,
		Now:        time.Date(2024, 7, 3, 5, 0, 0, 0, time.UTC),
	}
	if err := Generate(cfg, dir); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	st, err := store.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer st.Close()
	ctx := context.Background()

	dates, err := st.ForecastDates(ctx, "JAM", "BERYL", 34)
	if err != nil {
		t.Fatalf("ForecastDates: %v", err)
	}
	if len(dates) != cfg.Runs {
		t.Fatalf("got %d forecast dates, want %d", len(dates), cfg.Runs)
	}

	key := scenario.Key{Country: "JAM", Storm: "BERYL", ForecastDate: dates[0], WindThreshold: 34}

	thresholds, err := st.WindThresholds(ctx, key.Country, key.Storm, key.ForecastDate)
	if err != nil {
		t.Fatalf("WindThresholds: %v", err)
	}
	if len(thresholds) != 2 || thresholds[0] != 34 || thresholds[1] != 50 {
		t.Fatalf("thresholds = %v, want [34 50]", thresholds)
	}

	admins, err := st.AdminImpacts(ctx, key)
	if err != nil {
		t.Fatalf("AdminImpacts: %v", err)
	}
	if len(admins) != cfg.Zones {
		t.Fatalf("got %d admin rows, want %d", len(admins), cfg.Zones)
	}

	tiles, err := st.TileImpacts(ctx, key, 15)
	if err != nil {
		t.Fatalf("TileImpacts: %v", err)
	}
	if len(tiles) != cfg.Zones*tilesPerZone {
		t.Fatalf("got %d tile rows, want %d", len(tiles), cfg.Zones*tilesPerZone)
	}

	// Tiles split admin totals exactly, so the two sums must agree.
	var adminPop, tilePop float64
	for _, r := range admins {
		adminPop += store.Val(r.Population)
	}
	for _, r := range tiles {
		tilePop += store.Val(r.Population)
	}
	if math.Abs(adminPop-tilePop) > 1e-6*adminPop {
		t.Fatalf("tile population %v diverges from admin population %v", tilePop, adminPop)
	}

	severities, err := st.TrackSeverities(ctx, key)
	if err != nil {
		t.Fatalf("TrackSeverities: %v", err)
	}
	if len(severities) == 0 {
		t.Fatal("no track severities generated")
	}
	for _, r := range severities {
		if r.Member < 1 || r.Member > cfg.Members {
			t.Fatalf("member %d out of range", r.Member)
		}
	}

	schools, err := st.SchoolImpacts(ctx, key)
	if err != nil {
		t.Fatalf("SchoolImpacts: %v", err)
	}
	if len(schools) != cfg.Zones*3 {
		t.Fatalf("got %d schools, want %d", len(schools), cfg.Zones*3)
	}

	names, err := st.AdminNames(ctx, "JAM")
	if err != nil {
		t.Fatalf("AdminNames: %v", err)
	}
	for _, r := range admins {
		if names[r.ZoneID] == "" {
			t.Fatalf("zone %s missing from admin names", r.ZoneID)
		}
	}
}
