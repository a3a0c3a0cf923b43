package engine

import (
	"context"
	"sort"
	"time"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/stats"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/store"
)

// ForecastCatalog lists the (storm, forecast run) combinations present in
// the store, most recent first.
type ForecastCatalog struct {
	Forecasts []store.ForecastInfo `json:"forecasts"`
}

// Forecasts returns the forecast catalog.
func (e *Engine) Forecasts(ctx context.Context) (ForecastCatalog, error) {
	start := time.Now()
	infos, err := e.store.Forecasts(ctx)
	e.observe("forecasts", start, err)
	if err != nil {
		e.opOutcome("list_forecasts", false, err)
		return ForecastCatalog{}, err
	}
	e.opOutcome("list_forecasts", len(infos) > 0, nil)
	return ForecastCatalog{Forecasts: infos}, nil
}

// ThresholdCatalog lists the wind thresholds with data for one storm and
// forecast run, ascending, plus the preferred analysis threshold (50 kt when
// available, otherwise the highest available).
type ThresholdCatalog struct {
	Country      string `json:"country"`
	Storm        string `json:"storm"`
	ForecastDate string `json:"forecast_date"`
	Thresholds   []int  `json:"thresholds"`
	Preferred    *int   `json:"preferred_threshold,omitempty"`
}

// WindThresholds returns the available thresholds for a forecast run.
func (e *Engine) WindThresholds(ctx context.Context, country, storm, forecastDate string) (ThresholdCatalog, error) {
	result := ThresholdCatalog{Country: country, Storm: storm, ForecastDate: forecastDate}
	if _, err := scenario.ParseForecastDate(forecastDate); err != nil {
		e.opOutcome("list_wind_thresholds", false, err)
		return result, err
	}

	start := time.Now()
	thresholds, err := e.store.WindThresholds(ctx, country, storm, forecastDate)
	e.observe("wind_thresholds", start, err)
	if err != nil {
		e.opOutcome("list_wind_thresholds", false, err)
		return result, err
	}

	result.Thresholds = thresholds
	if preferred, ok := scenario.PreferredThreshold(thresholds); ok {
		result.Preferred = &preferred
	}
	e.opOutcome("list_wind_thresholds", len(thresholds) > 0, nil)
	return result, nil
}

// Freshness reports the most recent forecast issue time across all storms and
// its age relative to the engine clock.
type Freshness struct {
	HasData      bool    `json:"has_data"`
	ForecastDate string  `json:"forecast_date,omitempty"`
	AgeHours     float64 `json:"age_hours,omitempty"`
}

// LatestForecast returns store freshness. Forecast runs are issued every six
// hours; an age much beyond that means the ETL has fallen behind.
func (e *Engine) LatestForecast(ctx context.Context) (Freshness, error) {
	start := time.Now()
	latest, ok, err := e.store.LatestForecastTime(ctx)
	e.observe("latest_forecast_time", start, err)
	if err != nil {
		e.opOutcome("get_latest_forecast_time", false, err)
		return Freshness{}, err
	}
	if !ok {
		e.opOutcome("get_latest_forecast_time", false, nil)
		return Freshness{}, nil
	}

	age := e.clock.Now().UTC().Sub(latest)
	e.opOutcome("get_latest_forecast_time", true, nil)
	return Freshness{
		HasData:      true,
		ForecastDate: scenario.FormatForecastDate(latest),
		AgeHours:     stats.Round1(age.Hours()),
	}, nil
}

// SchoolList is the per-school exposure listing for one scenario, sorted by
// probability descending. ExpectedImpacted sums the probabilities, giving
// the expected number of schools affected.
type SchoolList struct {
	Key              scenario.Key         `json:"scenario"`
	HasData          bool                 `json:"has_data"`
	Count            int                  `json:"count"`
	ExpectedImpacted float64              `json:"expected_impacted"`
	Schools          []store.SchoolImpact `json:"schools"`
}

// SchoolImpacts returns the school exposure list for one scenario.
func (e *Engine) SchoolImpacts(ctx context.Context, key scenario.Key) (SchoolList, error) {
	result := SchoolList{Key: key}
	if err := key.Validate(); err != nil {
		e.opOutcome("get_school_impacts", false, err)
		return result, err
	}

	start := time.Now()
	schools, err := e.store.SchoolImpacts(ctx, key)
	e.observe("school_impacts", start, err)
	if err != nil {
		e.opOutcome("get_school_impacts", false, err)
		return result, err
	}

	sort.Slice(schools, func(i, j int) bool {
		if schools[i].Probability != schools[j].Probability {
			return schools[i].Probability > schools[j].Probability
		}
		return schools[i].SchoolID < schools[j].SchoolID
	})
	var expected float64
	for _, s := range schools {
		expected += s.Probability
	}

	result.Schools = schools
	result.Count = len(schools)
	result.ExpectedImpacted = stats.Round1(expected)
	result.HasData = len(schools) > 0
	e.opOutcome("get_school_impacts", result.HasData, nil)
	return result, nil
}

// HealthCenterList mirrors SchoolList for health facilities.
type HealthCenterList struct {
	Key              scenario.Key               `json:"scenario"`
	HasData          bool                       `json:"has_data"`
	Count            int                        `json:"count"`
	ExpectedImpacted float64                    `json:"expected_impacted"`
	HealthCenters    []store.HealthCenterImpact `json:"health_centers"`
}

// HealthCenterImpacts returns the health-facility exposure list for one
// scenario.
func (e *Engine) HealthCenterImpacts(ctx context.Context, key scenario.Key) (HealthCenterList, error) {
	result := HealthCenterList{Key: key}
	if err := key.Validate(); err != nil {
		e.opOutcome("get_health_center_impacts", false, err)
		return result, err
	}

	start := time.Now()
	hcs, err := e.store.HealthCenterImpacts(ctx, key)
	e.observe("hc_impacts", start, err)
	if err != nil {
		e.opOutcome("get_health_center_impacts", false, err)
		return result, err
	}

	sort.Slice(hcs, func(i, j int) bool {
		if hcs[i].Probability != hcs[j].Probability {
			return hcs[i].Probability > hcs[j].Probability
		}
		return hcs[i].FacilityID < hcs[j].FacilityID
	})
	var expected float64
	for _, h := range hcs {
		expected += h.Probability
	}

	result.HealthCenters = hcs
	result.Count = len(hcs)
	result.ExpectedImpacted = stats.Round1(expected)
	result.HasData = len(hcs) > 0
	e.opOutcome("get_health_center_impacts", result.HasData, nil)
	return result, nil
}
