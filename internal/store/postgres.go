package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

// Postgres serves the impact view tables from a PostgreSQL database. The
// tables mirror the view families written by the impact ETL:
//
//	tile_impact_views   (tile granularity, per zoom level)
//	admin_impact_views  (administrative-area granularity)
//	track_severity_views (per ensemble member)
//	school_impact_views / hc_impact_views
//	admin_names
//
// Every query is bounded by queryTimeout; transport failures surface as
// scenario.ErrDataUnavailable.
type Postgres struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
	builder      sq.StatementBuilderType
}

const defaultQueryTimeout = 15 * time.Second

// NewPostgres connects a pool to the given DSN.
func NewPostgres(ctx context.Context, dsn string, queryTimeout time.Duration) (*Postgres, error) {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, scenario.Unavailable("connect", err)
	}
	return &Postgres{
		pool:         pool,
		queryTimeout: queryTimeout,
		builder:      sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.queryTimeout)
}

func keyEq(key scenario.Key) sq.Eq {
	return sq.Eq{
		"country":        key.Country,
		"storm":          key.Storm,
		"forecast_date":  key.ForecastDate,
		"wind_threshold": key.WindThreshold,
	}
}

var impactColumns = []string{
	"zone_id",
	"probability",
	"e_population",
	"e_school_age_population",
	"e_infant_population",
	"e_built_surface_m2",
	"e_num_schools",
	"e_num_hcs",
	"e_smod_class",
	"e_rwi",
}

func (p *Postgres) queryImpacts(ctx context.Context, query sq.SelectBuilder, key scenario.Key, table string) ([]ImpactRecord, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, scenario.Unavailable(table, err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, scenario.Unavailable(table, err)
	}
	defer rows.Close()

	var records []ImpactRecord
	for rows.Next() {
		rec := ImpactRecord{Key: key}
		if err := rows.Scan(
			&rec.ZoneID,
			&rec.Probability,
			&rec.Population,
			&rec.SchoolAgePopulation,
			&rec.InfantPopulation,
			&rec.BuiltSurfaceM2,
			&rec.NumSchools,
			&rec.NumHealthCenters,
			&rec.SettlementClass,
			&rec.RelativeWealthIndex,
		); err != nil {
			return nil, scenario.Unavailable(table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, scenario.Unavailable(table, err)
	}
	return records, nil
}

// TileImpacts implements Store.
func (p *Postgres) TileImpacts(ctx context.Context, key scenario.Key, zoom int) ([]ImpactRecord, error) {
	q := p.builder.Select(impactColumns...).
		From("tile_impact_views").
		Where(keyEq(key)).
		Where(sq.Eq{"zoom_level": zoom})
	return p.queryImpacts(ctx, q, key, "tile_impact_views")
}

// AdminImpacts implements Store.
func (p *Postgres) AdminImpacts(ctx context.Context, key scenario.Key) ([]ImpactRecord, error) {
	q := p.builder.Select(impactColumns...).
		From("admin_impact_views").
		Where(keyEq(key))
	return p.queryImpacts(ctx, q, key, "admin_impact_views")
}

// TrackSeverities implements Store.
func (p *Postgres) TrackSeverities(ctx context.Context, key scenario.Key) ([]SeverityRecord, error) {
	q := p.builder.Select(
		"zone_id",
		"ensemble_member",
		"severity_population",
		"severity_school_age_population",
		"severity_infant_population",
		"severity_built_surface_m2",
		"severity_schools",
		"severity_hcs",
	).
		From("track_severity_views").
		Where(keyEq(key))

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, scenario.Unavailable("track_severity_views", err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, scenario.Unavailable("track_severity_views", err)
	}
	defer rows.Close()

	var records []SeverityRecord
	for rows.Next() {
		rec := SeverityRecord{Key: key}
		if err := rows.Scan(
			&rec.ZoneID,
			&rec.Member,
			&rec.Population,
			&rec.SchoolAgePopulation,
			&rec.InfantPopulation,
			&rec.BuiltSurfaceM2,
			&rec.NumSchools,
			&rec.NumHealthCenters,
		); err != nil {
			return nil, scenario.Unavailable("track_severity_views", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, scenario.Unavailable("track_severity_views", err)
	}
	return records, nil
}

func (p *Postgres) queryEntityImpacts(ctx context.Context, table, idColumn string, key scenario.Key) ([]SchoolImpact, error) {
	q := p.builder.Select(idColumn, "name", "admin_zone", "probability").
		From(table).
		Where(keyEq(key)).
		OrderBy("probability DESC", idColumn+" ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, scenario.Unavailable(table, err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, scenario.Unavailable(table, err)
	}
	defer rows.Close()

	var records []SchoolImpact
	for rows.Next() {
		var rec SchoolImpact
		var name, zone *string
		if err := rows.Scan(&rec.SchoolID, &name, &zone, &rec.Probability); err != nil {
			return nil, scenario.Unavailable(table, err)
		}
		if name != nil {
			rec.Name = *name
		}
		if zone != nil {
			rec.AdminZone = *zone
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, scenario.Unavailable(table, err)
	}
	return records, nil
}

// SchoolImpacts implements Store.
func (p *Postgres) SchoolImpacts(ctx context.Context, key scenario.Key) ([]SchoolImpact, error) {
	return p.queryEntityImpacts(ctx, "school_impact_views", "school_id", key)
}

// HealthCenterImpacts implements Store.
func (p *Postgres) HealthCenterImpacts(ctx context.Context, key scenario.Key) ([]HealthCenterImpact, error) {
	schools, err := p.queryEntityImpacts(ctx, "hc_impact_views", "facility_id", key)
	if err != nil {
		return nil, err
	}
	records := make([]HealthCenterImpact, 0, len(schools))
	for _, s := range schools {
		records = append(records, HealthCenterImpact{
			FacilityID:  s.SchoolID,
			Name:        s.Name,
			AdminZone:   s.AdminZone,
			Probability: s.Probability,
		})
	}
	return records, nil
}

// ForecastDates implements Store.
func (p *Postgres) ForecastDates(ctx context.Context, country, storm string, threshold int) ([]string, error) {
	q := p.builder.Select("DISTINCT forecast_date").
		From("admin_impact_views").
		Where(sq.Eq{"country": country, "storm": storm, "wind_threshold": threshold}).
		OrderBy("forecast_date ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, scenario.Unavailable("forecast_dates", err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, scenario.Unavailable("forecast_dates", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, scenario.Unavailable("forecast_dates", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, scenario.Unavailable("forecast_dates", err)
	}
	return dates, nil
}

// Forecasts implements Store.
func (p *Postgres) Forecasts(ctx context.Context) ([]ForecastInfo, error) {
	q := p.builder.Select("storm", "forecast_date", "COUNT(DISTINCT ensemble_member) AS ensemble_count").
		From("track_severity_views").
		GroupBy("storm", "forecast_date").
		OrderBy("forecast_date DESC", "storm ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, scenario.Unavailable("forecasts", err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, scenario.Unavailable("forecasts", err)
	}
	defer rows.Close()

	var infos []ForecastInfo
	for rows.Next() {
		var info ForecastInfo
		if err := rows.Scan(&info.Storm, &info.ForecastDate, &info.EnsembleCount); err != nil {
			return nil, scenario.Unavailable("forecasts", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, scenario.Unavailable("forecasts", err)
	}
	return infos, nil
}

// LatestForecastTime implements Store. Forecast dates are fixed-width digit
// strings, so the lexicographic MAX is the chronological maximum.
func (p *Postgres) LatestForecastTime(ctx context.Context) (time.Time, bool, error) {
	q := p.builder.Select("MAX(forecast_date)").From("track_severity_views")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return time.Time{}, false, scenario.Unavailable("latest_forecast", err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var max *string
	if err := p.pool.QueryRow(ctx, sqlStr, args...).Scan(&max); err != nil {
		return time.Time{}, false, scenario.Unavailable("latest_forecast", err)
	}
	if max == nil {
		return time.Time{}, false, nil
	}
	t, err := scenario.ParseForecastDate(*max)
	if err != nil {
		log.Warn().Str("forecast_date", *max).Msg("Store holds an unparseable forecast date")
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// WindThresholds implements Store.
func (p *Postgres) WindThresholds(ctx context.Context, country, storm, forecastDate string) ([]int, error) {
	q := p.builder.Select("DISTINCT wind_threshold").
		From("admin_impact_views").
		Where(sq.Eq{"country": country, "storm": storm, "forecast_date": forecastDate}).
		OrderBy("wind_threshold ASC")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, scenario.Unavailable("wind_thresholds", err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, scenario.Unavailable("wind_thresholds", err)
	}
	defer rows.Close()

	var thresholds []int
	for rows.Next() {
		var t int
		if err := rows.Scan(&t); err != nil {
			return nil, scenario.Unavailable("wind_thresholds", err)
		}
		thresholds = append(thresholds, t)
	}
	if err := rows.Err(); err != nil {
		return nil, scenario.Unavailable("wind_thresholds", err)
	}
	return thresholds, nil
}

// AdminNames implements Store.
func (p *Postgres) AdminNames(ctx context.Context, country string) (map[string]string, error) {
	q := p.builder.Select("zone_id", "name").
		From("admin_names").
		Where(sq.Eq{"country": country})

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, scenario.Unavailable("admin_names", err)
	}

	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	rows, err := p.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, scenario.Unavailable("admin_names", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, scenario.Unavailable("admin_names", err)
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, scenario.Unavailable("admin_names", err)
	}
	return names, nil
}
