package gen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

// Row schemas matching what the file store reads.

type impactRow struct {
	ZoneID            string   `parquet:"name=zone_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Probability       *float64 `parquet:"name=probability, type=DOUBLE, repetitiontype=OPTIONAL"`
	EPopulation       *float64 `parquet:"name=E_population, type=DOUBLE, repetitiontype=OPTIONAL"`
	ESchoolAgePop     *float64 `parquet:"name=E_school_age_population, type=DOUBLE, repetitiontype=OPTIONAL"`
	EInfantPop        *float64 `parquet:"name=E_infant_population, type=DOUBLE, repetitiontype=OPTIONAL"`
	EBuiltSurfaceM2   *float64 `parquet:"name=E_built_surface_m2, type=DOUBLE, repetitiontype=OPTIONAL"`
	ENumSchools       *float64 `parquet:"name=E_num_schools, type=DOUBLE, repetitiontype=OPTIONAL"`
	ENumHealthCenters *float64 `parquet:"name=E_num_hcs, type=DOUBLE, repetitiontype=OPTIONAL"`
	ESettlementClass  *float64 `parquet:"name=E_smod_class, type=DOUBLE, repetitiontype=OPTIONAL"`
	ERelativeWealth   *float64 `parquet:"name=E_rwi, type=DOUBLE, repetitiontype=OPTIONAL"`
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

func saveScenario(outDir string, key scenario.Key, format string, admins, tiles []impactRow, severities []severityRow, schools, hcs []entityRow) error {
	base := key.String()
	if err := saveRows(filepath.Join(outDir, "admin_views", base), format, admins, impactHeader, impactRecord); err != nil {
		return err
	}
	tileBase := fmt.Sprintf("%s_%d", base, 15)
	if err := saveRows(filepath.Join(outDir, "mercator_views", tileBase), format, tiles, impactHeader, impactRecord); err != nil {
		return err
	}
	if err := saveRows(filepath.Join(outDir, "track_views", base), format, severities, severityHeader, severityRecord); err != nil {
		return err
	}
	if err := saveRows(filepath.Join(outDir, "school_views", base), format, schools, entityHeader, entityRecord); err != nil {
		return err
	}
	return saveRows(filepath.Join(outDir, "hc_views", base), format, hcs, entityHeader, entityRecord)
}

// saveRows writes one view file in the requested format. pathBase carries no
// extension; the format decides it.
func saveRows[T any](pathBase, format string, rows []T, header []string, record func(T) []string) error {
	if err := os.MkdirAll(filepath.Dir(pathBase), 0755); err != nil {
		return err
	}
	if format == "csv" {
		return saveCSV(pathBase+".csv", rows, header, record)
	}
	return saveParquet(pathBase+".parquet", rows)
}

func saveParquet[T any](path string, rows []T) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(T), 4)
	if err != nil {
		fw.Close()
		return err
	}
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return err
	}
	return fw.Close()
}

func saveCSV[T any](path string, rows []T, header []string, record func(T) []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(record(row)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var impactHeader = []string{"zone_id", "probability", "E_population", "E_school_age_population", "E_infant_population", "E_built_surface_m2", "E_num_schools", "E_num_hcs", "E_smod_class", "E_rwi"}

func impactRecord(r impactRow) []string {
	return []string{
		r.ZoneID,
		cell(r.Probability), cell(r.EPopulation), cell(r.ESchoolAgePop), cell(r.EInfantPop),
		cell(r.EBuiltSurfaceM2), cell(r.ENumSchools), cell(r.ENumHealthCenters),
		cell(r.ESettlementClass), cell(r.ERelativeWealth),
	}
}

var severityHeader = []string{"zone_id", "ensemble_member", "severity_population", "severity_school_age_population", "severity_infant_population", "severity_built_surface_m2", "severity_schools", "severity_hcs"}

func severityRecord(r severityRow) []string {
	return []string{
		r.ZoneID, strconv.FormatInt(r.EnsembleMember, 10),
		cell(r.SeverityPopulation), cell(r.SeveritySchoolAge), cell(r.SeverityInfant),
		cell(r.SeverityBuiltM2), cell(r.SeveritySchools), cell(r.SeverityHCs),
	}
}

var entityHeader = []string{"entity_id", "name", "admin_zone", "probability"}

func entityRecord(r entityRow) []string {
	name, zone := "", ""
	if r.Name != nil {
		name = *r.Name
	}
	if r.AdminZone != nil {
		zone = *r.AdminZone
	}
	return []string{r.EntityID, name, zone, strconv.FormatFloat(r.Probability, 'f', -1, 64)}
}

func cell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// saveAdminNames writes the id-to-name mapping. Always CSV; the store reads
// it as CSV regardless of the view format.
func saveAdminNames(outDir, country string, zones []zone, _ string) error {
	dir := filepath.Join(outDir, "admin_names")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	file, err := os.Create(filepath.Join(dir, country+".csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"zone_id", "name"}); err != nil {
		return err
	}
	for _, z := range zones {
		if err := w.Write([]string{z.id, z.name}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
