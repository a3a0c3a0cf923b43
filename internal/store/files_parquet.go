package store

import (
	"context"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

// Parquet row schemas mirroring the columns the impact ETL writes. Measures
// are OPTIONAL in the files: a missing value means "not computed" and decodes
// to nil, which sums later treat as zero.

type impactRow struct {
	ZoneID              string   `parquet:"name=zone_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Probability         *float64 `parquet:"name=probability, type=DOUBLE, repetitiontype=OPTIONAL"`
	EPopulation         *float64 `parquet:"name=E_population, type=DOUBLE, repetitiontype=OPTIONAL"`
	ESchoolAgePop       *float64 `parquet:"name=E_school_age_population, type=DOUBLE, repetitiontype=OPTIONAL"`
	EInfantPop          *float64 `parquet:"name=E_infant_population, type=DOUBLE, repetitiontype=OPTIONAL"`
	EBuiltSurfaceM2     *float64 `parquet:"name=E_built_surface_m2, type=DOUBLE, repetitiontype=OPTIONAL"`
	ENumSchools         *float64 `parquet:"name=E_num_schools, type=DOUBLE, repetitiontype=OPTIONAL"`
	ENumHealthCenters   *float64 `parquet:"name=E_num_hcs, type=DOUBLE, repetitiontype=OPTIONAL"`
	ESettlementClass    *float64 `parquet:"name=E_smod_class, type=DOUBLE, repetitiontype=OPTIONAL"`
	ERelativeWealthIdx  *float64 `parquet:"name=E_rwi, type=DOUBLE, repetitiontype=OPTIONAL"`
}

type severityRow struct {
	ZoneID             string   `parquet:"name=zone_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	EnsembleMember     int64    `parquet:"name=ensemble_member, type=INT64"`
	SeverityPopulation *float64 `parquet:"name=severity_population, type=DOUBLE, repetitiontype=OPTIONAL"`
	SeveritySchoolAge  *float64 `parquet:"name=severity_school_age_population, type=DOUBLE, repetitiontype=OPTIONAL"`
	SeverityInfant     *float64 `parquet:"name=severity_infant_population, type=DOUBLE, repetitiontype=OPTIONAL"`
	SeverityBuiltM2    *float64 `parquet:"name=severity_built_surface_m2, type=DOUBLE, repetitiontype=OPTIONAL"`
	SeveritySchools    *float64 `parquet:"name=severity_schools, type=DOUBLE, repetitiontype=OPTIONAL"`
	SeverityHCs        *float64 `parquet:"name=severity_hcs, type=DOUBLE, repetitiontype=OPTIONAL"`
}

type entityRow struct {
	EntityID    string  `parquet:"name=entity_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name        *string `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	AdminZone   *string `parquet:"name=admin_zone, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Probability float64 `parquet:"name=probability, type=DOUBLE"`
}

const parquetReadBatch = 1024

// readParquet reads every row of a parquet view into a slice of T, checking
// the context between batches.
func readParquet[T any](ctx context.Context, path string) ([]T, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, scenario.Unavailable(path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(T), 4)
	if err != nil {
		return nil, scenario.Unavailable(path, err)
	}
	defer pr.ReadStop()

	total := int(pr.GetNumRows())
	out := make([]T, 0, total)
	for len(out) < total {
		if err := ctx.Err(); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		n := parquetReadBatch
		if rem := total - len(out); rem < n {
			n = rem
		}
		batch := make([]T, n)
		if err := pr.Read(&batch); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (f *FileStore) readImpactFile(ctx context.Context, path string, key scenario.Key) ([]ImpactRecord, error) {
	if filepath.Ext(path) == ".csv" {
		return readImpactCSV(path, key)
	}
	rows, err := readParquet[impactRow](ctx, path)
	if err != nil {
		return nil, err
	}
	records := make([]ImpactRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, ImpactRecord{
			ZoneID:      r.ZoneID,
			Key:         key,
			Probability: r.Probability,
			Measures: Measures{
				Population:          r.EPopulation,
				SchoolAgePopulation: r.ESchoolAgePop,
				InfantPopulation:    r.EInfantPop,
				BuiltSurfaceM2:      r.EBuiltSurfaceM2,
				NumSchools:          r.ENumSchools,
				NumHealthCenters:    r.ENumHealthCenters,
				SettlementClass:     r.ESettlementClass,
				RelativeWealthIndex: r.ERelativeWealthIdx,
			},
		})
	}
	return records, nil
}

func (f *FileStore) readSeverityFile(ctx context.Context, path string, key scenario.Key) ([]SeverityRecord, error) {
	if filepath.Ext(path) == ".csv" {
		return readSeverityCSV(path, key)
	}
	rows, err := readParquet[severityRow](ctx, path)
	if err != nil {
		return nil, err
	}
	records := make([]SeverityRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, SeverityRecord{
			ZoneID: r.ZoneID,
			Member: int(r.EnsembleMember),
			Key:    key,
			Measures: Measures{
				Population:          r.SeverityPopulation,
				SchoolAgePopulation: r.SeveritySchoolAge,
				InfantPopulation:    r.SeverityInfant,
				BuiltSurfaceM2:      r.SeverityBuiltM2,
				NumSchools:          r.SeveritySchools,
				NumHealthCenters:    r.SeverityHCs,
			},
		})
	}
	return records, nil
}

func (f *FileStore) readEntityFile(ctx context.Context, path string) ([]SchoolImpact, error) {
	if filepath.Ext(path) == ".csv" {
		return readEntityCSV(path)
	}
	rows, err := readParquet[entityRow](ctx, path)
	if err != nil {
		return nil, err
	}
	records := make([]SchoolImpact, 0, len(rows))
	for _, r := range rows {
		rec := SchoolImpact{SchoolID: r.EntityID, Probability: r.Probability}
		if r.Name != nil {
			rec.Name = *r.Name
		}
		if r.AdminZone != nil {
			rec.AdminZone = *r.AdminZone
		}
		records = append(records, rec)
	}
	return records, nil
}
