// Package store defines the Impact Data Store contract consumed by the
// aggregation engine, plus the concrete backends: Postgres impact tables and
// a filesystem directory of per-scenario view files (parquet or CSV) laid out
// the way the impact ETL writes them.
//
// The store is read-only from the engine's point of view. Backends translate
// their transport failures into scenario.ErrDataUnavailable; an empty result
// set is never an error.
package store

import (
	"context"
	"time"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

// Store is the query contract every backend implements. All methods honor
// context cancellation and deadlines; none of them retries internally.
type Store interface {
	// TileImpacts returns expected-impact rows at mercator-tile granularity
	// for one scenario, restricted to a single zoom level. Mixing zoom levels
	// would double count, so the zoom is an explicit argument.
	TileImpacts(ctx context.Context, key scenario.Key, zoom int) ([]ImpactRecord, error)

	// AdminImpacts returns expected-impact rows at administrative-area
	// granularity for one scenario.
	AdminImpacts(ctx context.Context, key scenario.Key) ([]ImpactRecord, error)

	// TrackSeverities returns per-ensemble-member realized severity rows for
	// one scenario.
	TrackSeverities(ctx context.Context, key scenario.Key) ([]SeverityRecord, error)

	// SchoolImpacts returns per-school exposure probabilities for one scenario.
	SchoolImpacts(ctx context.Context, key scenario.Key) ([]SchoolImpact, error)

	// HealthCenterImpacts returns per-facility exposure probabilities for one
	// scenario.
	HealthCenterImpacts(ctx context.Context, key scenario.Key) ([]HealthCenterImpact, error)

	// ForecastDates returns every forecast date available for the given
	// country and storm at the given threshold, ascending.
	ForecastDates(ctx context.Context, country, storm string, threshold int) ([]string, error)

	// Forecasts returns the catalog of (storm, forecast run) combinations,
	// most recent first.
	Forecasts(ctx context.Context) ([]ForecastInfo, error)

	// LatestForecastTime returns the most recent forecast issue time across
	// all storms. ok is false when the store holds no forecasts at all.
	LatestForecastTime(ctx context.Context) (t time.Time, ok bool, err error)

	// WindThresholds returns the thresholds that actually have data for the
	// given country, storm and forecast date, ascending.
	WindThresholds(ctx context.Context, country, storm, forecastDate string) ([]int, error)

	// AdminNames returns the admin-id to human-readable-name mapping for a
	// country. Used for display only, never as an aggregation key.
	AdminNames(ctx context.Context, country string) (map[string]string, error)

	// Close releases backend resources.
	Close()
}
