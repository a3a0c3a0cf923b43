package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/stats"
)

// PreviousForecast names the forecast run immediately preceding the current
// one. HasPrevious is false for the first run of a storm; comparators must
// short-circuit rather than fabricate a zero baseline.
type PreviousForecast struct {
	Country              string `json:"country"`
	Storm                string `json:"storm"`
	CurrentForecastDate  string `json:"current_forecast_date"`
	PreviousForecastDate string `json:"previous_forecast_date,omitempty"`
	HasPrevious          bool   `json:"has_previous"`
}

// FindPreviousForecast returns the latest forecast date strictly before the
// current one for the same country and storm. The lookup runs at the
// reference threshold, the most data-rich one, so its catalog is complete
// even when higher thresholds have no rows.
func (e *Engine) FindPreviousForecast(ctx context.Context, country, storm, currentDate string) (PreviousForecast, error) {
	result := PreviousForecast{Country: country, Storm: storm, CurrentForecastDate: currentDate}
	if _, err := scenario.ParseForecastDate(currentDate); err != nil {
		e.opOutcome("find_previous_forecast", false, err)
		return result, err
	}

	start := time.Now()
	dates, err := e.store.ForecastDates(ctx, country, storm, scenario.ReferenceThreshold)
	e.observe("forecast_dates", start, err)
	if err != nil {
		e.opOutcome("find_previous_forecast", false, err)
		return result, err
	}

	// Fixed-width timestamps compare correctly as strings.
	for _, d := range dates {
		if d < currentDate && d > result.PreviousForecastDate {
			result.PreviousForecastDate = d
			result.HasPrevious = true
		}
	}
	e.opOutcome("find_previous_forecast", result.HasPrevious, nil)
	return result, nil
}

// MeasureDelta holds one measure's forecast-over-forecast movement.
// PercentChange is nil when the previous value is zero and the current is
// not; growth from a zero base has no percentage representation.
type MeasureDelta struct {
	Current       float64  `json:"current"`
	Previous      float64  `json:"previous"`
	Change        float64  `json:"change"`
	PercentChange *float64 `json:"percent_change"`
}

func delta(current, previous float64) MeasureDelta {
	d := MeasureDelta{Current: current, Previous: previous, Change: current - previous}
	switch {
	case previous == 0 && current == 0:
		zero := 0.0
		d.PercentChange = &zero
	case previous == 0:
		// nil: no percentage representation.
	default:
		pct := stats.Round1((current - previous) / previous * 100)
		d.PercentChange = &pct
	}
	return d
}

// TotalsComparison diffs two forecast runs' expected totals per measure.
type TotalsComparison struct {
	Current       scenario.Key `json:"current_scenario"`
	Previous      scenario.Key `json:"previous_scenario"`
	HasData       bool         `json:"has_data"`
	Population    MeasureDelta `json:"population"`
	TotalChildren MeasureDelta `json:"total_children"`
	SchoolAge     MeasureDelta `json:"school_age_population"`
	Infant        MeasureDelta `json:"infant_population"`
	BuiltSurface  MeasureDelta `json:"built_surface_m2"`
	Schools       MeasureDelta `json:"num_schools"`
	HealthCenters MeasureDelta `json:"num_health_centers"`
}

// CompareTotals runs the expected-impact aggregation for both scenarios in
// parallel and diffs the results. HasData reflects the current run only; a
// missing previous run should be caught earlier via FindPreviousForecast.
func (e *Engine) CompareTotals(ctx context.Context, current, previous scenario.Key) (TotalsComparison, error) {
	result := TotalsComparison{Current: current, Previous: previous}
	if err := current.Validate(); err != nil {
		e.opOutcome("compare_totals", false, err)
		return result, err
	}
	if err := previous.Validate(); err != nil {
		e.opOutcome("compare_totals", false, err)
		return result, err
	}

	var cur, prev ExpectedImpact
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cur, err = e.ExpectedImpact(gctx, current)
		return err
	})
	g.Go(func() error {
		var err error
		prev, err = e.ExpectedImpact(gctx, previous)
		return err
	})
	if err := g.Wait(); err != nil {
		e.opOutcome("compare_totals", false, err)
		return result, err
	}

	result.HasData = cur.HasData
	result.Population = delta(cur.Population, prev.Population)
	result.TotalChildren = delta(cur.TotalChildren, prev.TotalChildren)
	result.SchoolAge = delta(cur.SchoolAgePopulation, prev.SchoolAgePopulation)
	result.Infant = delta(cur.InfantPopulation, prev.InfantPopulation)
	result.BuiltSurface = delta(cur.BuiltSurfaceM2, prev.BuiltSurfaceM2)
	result.Schools = delta(cur.NumSchools, prev.NumSchools)
	result.HealthCenters = delta(cur.NumHealthCenters, prev.NumHealthCenters)
	e.opOutcome("compare_totals", result.HasData, nil)
	return result, nil
}

// AreaDelta is one administrative area's population movement between runs.
// Interpretation (improved/worsened/stable) is left to the caller.
type AreaDelta struct {
	ZoneID string       `json:"zone_id"`
	Name   string       `json:"name"`
	Delta  MeasureDelta `json:"population"`
}

// BreakdownComparison diffs two runs' admin breakdowns area by area.
type BreakdownComparison struct {
	Current  scenario.Key `json:"current_scenario"`
	Previous scenario.Key `json:"previous_scenario"`
	HasData  bool         `json:"has_data"`
	Areas    []AreaDelta  `json:"areas"`
}

// CompareAdminBreakdown full-outer-joins the two breakdowns by zone id. An
// area present in only one run is matched against zero on the other side.
// Rows come back sorted by absolute population change, largest first.
func (e *Engine) CompareAdminBreakdown(ctx context.Context, current, previous scenario.Key) (BreakdownComparison, error) {
	result := BreakdownComparison{Current: current, Previous: previous}
	if err := current.Validate(); err != nil {
		e.opOutcome("compare_admin_breakdown", false, err)
		return result, err
	}
	if err := previous.Validate(); err != nil {
		e.opOutcome("compare_admin_breakdown", false, err)
		return result, err
	}

	var cur, prev AdminBreakdown
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cur, err = e.AdminBreakdown(gctx, current)
		return err
	})
	g.Go(func() error {
		var err error
		prev, err = e.AdminBreakdown(gctx, previous)
		return err
	})
	if err := g.Wait(); err != nil {
		e.opOutcome("compare_admin_breakdown", false, err)
		return result, err
	}

	type side struct {
		name              string
		current, previous float64
	}
	byZone := make(map[string]*side)
	for _, a := range cur.Areas {
		byZone[a.ZoneID] = &side{name: a.Name, current: a.Population}
	}
	for _, a := range prev.Areas {
		s, ok := byZone[a.ZoneID]
		if !ok {
			s = &side{name: a.Name}
			byZone[a.ZoneID] = s
		}
		s.previous = a.Population
	}

	areas := make([]AreaDelta, 0, len(byZone))
	for zone, s := range byZone {
		areas = append(areas, AreaDelta{
			ZoneID: zone,
			Name:   s.name,
			Delta:  delta(s.current, s.previous),
		})
	}
	sort.Slice(areas, func(i, j int) bool {
		ci, cj := math.Abs(areas[i].Delta.Change), math.Abs(areas[j].Delta.Change)
		if ci != cj {
			return ci > cj
		}
		return areas[i].ZoneID < areas[j].ZoneID
	})

	result.Areas = areas
	result.HasData = cur.HasData || prev.HasData
	e.opOutcome("compare_admin_breakdown", result.HasData, nil)
	return result, nil
}
