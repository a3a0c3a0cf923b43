package store

import (
	"time"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

// Measures carries the fixed set of impact measures shared by the tile, admin
// and track record families. A nil field means "not computed" for that zone;
// an explicit zero means "computed, zero impact". The distinction matters:
// sums treat nil as zero, but presentation layers must not describe a nil as
// a real zero-impact result.
type Measures struct {
	Population          *float64 `json:"population"`
	SchoolAgePopulation *float64 `json:"school_age_population"`
	InfantPopulation    *float64 `json:"infant_population"`
	BuiltSurfaceM2      *float64 `json:"built_surface_m2"`
	NumSchools          *float64 `json:"num_schools"`
	NumHealthCenters    *float64 `json:"num_hcs"`
	SettlementClass     *float64 `json:"smod_class,omitempty"`
	RelativeWealthIndex *float64 `json:"rwi,omitempty"`
}

// ImpactRecord is one zone's probability-weighted expected impact for one
// scenario. ZoneID is a mercator tile id at tile granularity or an admin unit
// id (e.g. "JAM_0005_V2") at admin granularity.
type ImpactRecord struct {
	ZoneID      string       `json:"zone_id"`
	Key         scenario.Key `json:"-"`
	Probability *float64     `json:"probability"`
	Measures
}

// SeverityRecord is one ensemble member's realized (not probability-weighted)
// impact at one zone. Unlike ImpactRecord it describes a single deterministic
// track realization.
type SeverityRecord struct {
	ZoneID string       `json:"zone_id"`
	Member int          `json:"ensemble_member"`
	Key    scenario.Key `json:"-"`
	Measures
}

// SchoolImpact is one school's exposure probability for one scenario.
type SchoolImpact struct {
	SchoolID    string  `json:"school_id"`
	Name        string  `json:"name,omitempty"`
	AdminZone   string  `json:"admin_zone,omitempty"`
	Probability float64 `json:"probability"`
}

// HealthCenterImpact is one health facility's exposure probability for one
// scenario.
type HealthCenterImpact struct {
	FacilityID  string  `json:"facility_id"`
	Name        string  `json:"name,omitempty"`
	AdminZone   string  `json:"admin_zone,omitempty"`
	Probability float64 `json:"probability"`
}

// ForecastInfo describes one (storm, forecast run) combination present in the
// store, with the number of distinct ensemble members it carries.
type ForecastInfo struct {
	Storm         string `json:"storm"`
	ForecastDate  string `json:"forecast_date"`
	EnsembleCount int    `json:"ensemble_count"`
}

// ForecastTime returns the parsed forecast issue time.
func (f ForecastInfo) ForecastTime() (time.Time, error) {
	return scenario.ParseForecastDate(f.ForecastDate)
}

// Val returns the measure value with nil treated as zero. Sums over records
// use this; presence is tracked separately via row counts.
func Val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Ptr is a convenience for building records in fixtures and generators.
func Ptr(v float64) *float64 { return &v }
