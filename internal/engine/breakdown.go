package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/store"
)

// consistencyTolerance is the relative disagreement allowed between the
// admin-breakdown population sum and the expected-impact total (0.01%).
const consistencyTolerance = 1e-4

// AdminArea is one administrative area's summed expected impact. Name falls
// back to the raw zone id when no human-readable mapping exists.
type AdminArea struct {
	ZoneID string `json:"zone_id"`
	Name   string `json:"name"`
	Totals
}

// AdminBreakdown is the per-administrative-area decomposition of a scenario's
// expected impact. When the population sum disagrees with the expected-impact
// total beyond tolerance, Consistent is false and Warning explains the
// mismatch; the per-area numbers are still individually correct.
type AdminBreakdown struct {
	Key        scenario.Key `json:"scenario"`
	HasData    bool         `json:"has_data"`
	Areas      []AdminArea  `json:"areas"`
	Consistent bool         `json:"consistent"`
	Warning    string       `json:"warning,omitempty"`
}

// AdminBreakdown groups admin-level rows by zone, resolves display names and
// cross-checks the population sum against the tile-level expected total. The
// name lookup and expected total are fetched in parallel with the breakdown
// rows.
func (e *Engine) AdminBreakdown(ctx context.Context, key scenario.Key) (AdminBreakdown, error) {
	result := AdminBreakdown{Key: key, Consistent: true}
	if err := key.Validate(); err != nil {
		e.opOutcome("get_admin_breakdown", false, err)
		return result, err
	}

	var (
		records  []store.ImpactRecord
		names    map[string]string
		expected ExpectedImpact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		var err error
		records, err = e.store.AdminImpacts(gctx, key)
		e.observe("admin_impacts", start, err)
		return err
	})
	g.Go(func() error {
		start := time.Now()
		var err error
		names, err = e.store.AdminNames(gctx, key.Country)
		e.observe("admin_names", start, err)
		return err
	})
	g.Go(func() error {
		var err error
		expected, err = e.ExpectedImpact(gctx, key)
		return err
	})
	if err := g.Wait(); err != nil {
		e.opOutcome("get_admin_breakdown", false, err)
		return result, err
	}

	byZone := make(map[string]*AdminArea)
	for _, r := range records {
		area, ok := byZone[r.ZoneID]
		if !ok {
			name := r.ZoneID
			if n, found := names[r.ZoneID]; found {
				name = n
			}
			area = &AdminArea{ZoneID: r.ZoneID, Name: name}
			byZone[r.ZoneID] = area
		}
		area.addImpact(r.Measures)
	}

	areas := make([]AdminArea, 0, len(byZone))
	for _, a := range byZone {
		areas = append(areas, *a)
	}
	sort.Slice(areas, func(i, j int) bool {
		if areas[i].Population != areas[j].Population {
			return areas[i].Population > areas[j].Population
		}
		return areas[i].ZoneID < areas[j].ZoneID
	})

	result.Areas = areas
	result.HasData = len(areas) > 0

	// One side empty while the other has rows is itself a mismatch, so the
	// check runs whenever either query returned data.
	if result.HasData || expected.HasData {
		var sum float64
		for _, a := range areas {
			sum += a.Population
		}
		if !withinTolerance(sum, expected.Population) {
			result.Consistent = false
			result.Warning = fmt.Sprintf(
				"admin breakdown population sum %.1f disagrees with expected impact total %.1f; check that every query in this report uses the same wind threshold",
				sum, expected.Population)
			e.metrics.ObserveInconsistency()
			log.Warn().
				Str("scenario", key.String()).
				Float64("breakdown_sum", sum).
				Float64("expected_total", expected.Population).
				Msg("Admin breakdown disagrees with expected impact total")
		}
	}

	e.opOutcome("get_admin_breakdown", result.HasData, nil)
	return result, nil
}

func withinTolerance(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= consistencyTolerance*scale
}
