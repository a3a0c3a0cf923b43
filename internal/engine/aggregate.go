package engine

import (
	"context"
	"time"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/store"
)

// Totals is the fixed measure set every aggregation reports. TotalChildren is
// derived as school-age plus infant population.
type Totals struct {
	Population          float64 `json:"population"`
	TotalChildren       float64 `json:"total_children"`
	SchoolAgePopulation float64 `json:"school_age_population"`
	InfantPopulation    float64 `json:"infant_population"`
	BuiltSurfaceM2      float64 `json:"built_surface_m2"`
	NumSchools          float64 `json:"num_schools"`
	NumHealthCenters    float64 `json:"num_health_centers"`
}

func (t *Totals) addImpact(m store.Measures) {
	t.Population += store.Val(m.Population)
	t.SchoolAgePopulation += store.Val(m.SchoolAgePopulation)
	t.InfantPopulation += store.Val(m.InfantPopulation)
	t.BuiltSurfaceM2 += store.Val(m.BuiltSurfaceM2)
	t.NumSchools += store.Val(m.NumSchools)
	t.NumHealthCenters += store.Val(m.NumHealthCenters)
	t.TotalChildren = t.SchoolAgePopulation + t.InfantPopulation
}

// ExpectedImpact is the probability-weighted impact summed across all tiles
// the scenario touches. RowCount is diagnostic only; HasData distinguishes a
// genuine zero-impact forecast from an empty query window.
type ExpectedImpact struct {
	Key      scenario.Key `json:"scenario"`
	RowCount int          `json:"row_count"`
	HasData  bool         `json:"has_data"`
	Totals
}

// ExpectedImpact sums tile-level expected-impact rows for one scenario.
// Null measures count as zero; an empty result set is a valid no-data
// result, not an error.
func (e *Engine) ExpectedImpact(ctx context.Context, key scenario.Key) (ExpectedImpact, error) {
	result := ExpectedImpact{Key: key}
	if err := key.Validate(); err != nil {
		e.opOutcome("get_expected_impact", false, err)
		return result, err
	}

	start := time.Now()
	records, err := e.store.TileImpacts(ctx, key, e.zoom)
	e.observe("tile_impacts", start, err)
	if err != nil {
		e.opOutcome("get_expected_impact", false, err)
		return result, err
	}

	for _, r := range records {
		result.addImpact(r.Measures)
	}
	result.RowCount = len(records)
	result.HasData = len(records) > 0
	e.opOutcome("get_expected_impact", result.HasData, nil)
	return result, nil
}
