package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

// CSV views carry the same columns as their parquet counterparts, with a
// header row. An empty cell decodes to nil ("not computed"), never to zero.

type csvTable struct {
	cols map[string]int
	rows [][]string
}

func readCSVTable(path string) (*csvTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, scenario.Unavailable(path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return &csvTable{cols: map[string]int{}}, nil
		}
		return nil, scenario.Unavailable(path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		rows = append(rows, row)
	}
	return &csvTable{cols: cols, rows: rows}, nil
}

func (t *csvTable) str(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// optFloat parses an optional measure cell. Missing columns and empty cells
// are nil; anything else must parse.
func (t *csvTable) optFloat(row []string, col string) (*float64, error) {
	s := t.str(row, col)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col, err)
	}
	return &v, nil
}

func (t *csvTable) measures(row []string, prefix string) (Measures, error) {
	var m Measures
	var err error
	if m.Population, err = t.optFloat(row, prefix+"population"); err != nil {
		return m, err
	}
	if m.SchoolAgePopulation, err = t.optFloat(row, prefix+"school_age_population"); err != nil {
		return m, err
	}
	if m.InfantPopulation, err = t.optFloat(row, prefix+"infant_population"); err != nil {
		return m, err
	}
	if m.BuiltSurfaceM2, err = t.optFloat(row, prefix+"built_surface_m2"); err != nil {
		return m, err
	}
	return m, nil
}

func readImpactCSV(path string, key scenario.Key) ([]ImpactRecord, error) {
	t, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	records := make([]ImpactRecord, 0, len(t.rows))
	for _, row := range t.rows {
		rec := ImpactRecord{ZoneID: t.str(row, "zone_id"), Key: key}
		if rec.Measures, err = t.measures(row, "E_"); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		if rec.Probability, err = t.optFloat(row, "probability"); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		if rec.NumSchools, err = t.optFloat(row, "E_num_schools"); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		if rec.NumHealthCenters, err = t.optFloat(row, "E_num_hcs"); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		if rec.SettlementClass, err = t.optFloat(row, "E_smod_class"); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		if rec.RelativeWealthIndex, err = t.optFloat(row, "E_rwi"); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseMember decodes the ensemble_member column. Some exporters label the
// control track "control" instead of its numeric id.
func parseMember(s string) (int, error) {
	if strings.EqualFold(s, "control") {
		return scenario.DeterministicMember, nil
	}
	return strconv.Atoi(s)
}

func readSeverityCSV(path string, key scenario.Key) ([]SeverityRecord, error) {
	t, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	records := make([]SeverityRecord, 0, len(t.rows))
	for _, row := range t.rows {
		rec := SeverityRecord{ZoneID: t.str(row, "zone_id"), Key: key}
		member, convErr := parseMember(t.str(row, "ensemble_member"))
		if convErr != nil {
			return nil, scenario.Unavailable(path, fmt.Errorf("ensemble_member: %w", convErr))
		}
		rec.Member = member
		if rec.Measures, err = t.measures(row, "severity_"); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		if rec.NumSchools, err = t.optFloat(row, "severity_schools"); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		if rec.NumHealthCenters, err = t.optFloat(row, "severity_hcs"); err != nil {
			return nil, scenario.Unavailable(path, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readEntityCSV(path string) ([]SchoolImpact, error) {
	t, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	records := make([]SchoolImpact, 0, len(t.rows))
	for _, row := range t.rows {
		rec := SchoolImpact{
			SchoolID:  t.str(row, "entity_id"),
			Name:      t.str(row, "name"),
			AdminZone: t.str(row, "admin_zone"),
		}
		p, convErr := strconv.ParseFloat(t.str(row, "probability"), 64)
		if convErr != nil {
			return nil, scenario.Unavailable(path, fmt.Errorf("probability: %w", convErr))
		}
		rec.Probability = p
		records = append(records, rec)
	}
	return records, nil
}

func readAdminNamesCSV(path string) (map[string]string, error) {
	t, err := readCSVTable(path)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(t.rows))
	for _, row := range t.rows {
		id := t.str(row, "zone_id")
		name := t.str(row, "name")
		if id == "" || name == "" {
			continue
		}
		names[id] = name
	}
	return names, nil
}
