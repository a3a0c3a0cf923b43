package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

// View directory names, matching what the impact ETL writes.
const (
	mercatorViewsDir = "mercator_views"
	adminViewsDir    = "admin_views"
	trackViewsDir    = "track_views"
	schoolViewsDir   = "school_views"
	hcViewsDir       = "hc_views"
	adminNamesDir    = "admin_names"
)

// FileStore serves impact views from a directory tree of per-scenario files.
// Scenario metadata is embedded in the filenames:
//
//	mercator_views/{CTY}_{STORM}_{YYYYMMDDHHMMSS}_{TH}_{ZOOM}.parquet
//	track_views/{CTY}_{STORM}_{YYYYMMDDHHMMSS}_{TH}.parquet
//	admin_views/..., school_views/..., hc_views/...
//	admin_names/{CTY}.csv
//
// Each view may be a parquet file or a CSV with a header row; parquet wins
// when both exist. A missing file is an empty result, not an error.
type FileStore struct {
	root string
}

// NewFileStore opens a view directory. The root must exist; individual view
// subdirectories may appear later as the ETL produces them.
func NewFileStore(root string) (*FileStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, scenario.Unavailable("views root", err)
	}
	if !info.IsDir() {
		return nil, scenario.Unavailable("views root", os.ErrInvalid)
	}
	return &FileStore{root: root}, nil
}

// Close implements Store. The file store holds no resources.
func (f *FileStore) Close() {}

// resolveView returns the path of an existing view file for the given base
// name (without extension), preferring parquet. ok is false when neither
// format exists, which callers treat as "no data".
func (f *FileStore) resolveView(dir, base string) (path string, ok bool) {
	for _, ext := range []string{".parquet", ".csv"} {
		p := filepath.Join(f.root, dir, base+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

func scenarioBase(key scenario.Key) string {
	return key.String()
}

func tileBase(key scenario.Key, zoom int) string {
	return key.String() + "_" + strconv.Itoa(zoom)
}

// TileImpacts implements Store.
func (f *FileStore) TileImpacts(ctx context.Context, key scenario.Key, zoom int) ([]ImpactRecord, error) {
	path, ok := f.resolveView(mercatorViewsDir, tileBase(key, zoom))
	if !ok {
		return nil, nil
	}
	return f.readImpactFile(ctx, path, key)
}

// AdminImpacts implements Store.
func (f *FileStore) AdminImpacts(ctx context.Context, key scenario.Key) ([]ImpactRecord, error) {
	path, ok := f.resolveView(adminViewsDir, scenarioBase(key))
	if !ok {
		return nil, nil
	}
	return f.readImpactFile(ctx, path, key)
}

// TrackSeverities implements Store.
func (f *FileStore) TrackSeverities(ctx context.Context, key scenario.Key) ([]SeverityRecord, error) {
	path, ok := f.resolveView(trackViewsDir, scenarioBase(key))
	if !ok {
		return nil, nil
	}
	return f.readSeverityFile(ctx, path, key)
}

// SchoolImpacts implements Store.
func (f *FileStore) SchoolImpacts(ctx context.Context, key scenario.Key) ([]SchoolImpact, error) {
	path, ok := f.resolveView(schoolViewsDir, scenarioBase(key))
	if !ok {
		return nil, nil
	}
	return f.readEntityFile(ctx, path)
}

// HealthCenterImpacts implements Store.
func (f *FileStore) HealthCenterImpacts(ctx context.Context, key scenario.Key) ([]HealthCenterImpact, error) {
	path, ok := f.resolveView(hcViewsDir, scenarioBase(key))
	if !ok {
		return nil, nil
	}
	entities, err := f.readEntityFile(ctx, path)
	if err != nil {
		return nil, err
	}
	records := make([]HealthCenterImpact, 0, len(entities))
	for _, e := range entities {
		records = append(records, HealthCenterImpact{
			FacilityID:  e.SchoolID,
			Name:        e.Name,
			AdminZone:   e.AdminZone,
			Probability: e.Probability,
		})
	}
	return records, nil
}

// viewName is the scenario metadata parsed out of a view filename.
type viewName struct {
	Country   string
	Storm     string
	Date      string
	Threshold int
	Zoom      int
	HasZoom   bool
}

// parseViewName splits {CTY}_{STORM}_{DATE}_{TH}[_{ZOOM}] from a filename
// without extension. Storm names never contain underscores.
func parseViewName(base string) (viewName, bool) {
	parts := strings.Split(base, "_")
	if len(parts) != 4 && len(parts) != 5 {
		return viewName{}, false
	}
	v := viewName{Country: parts[0], Storm: parts[1], Date: parts[2]}
	if _, err := scenario.ParseForecastDate(v.Date); err != nil {
		return viewName{}, false
	}
	th, err := strconv.Atoi(parts[3])
	if err != nil || !scenario.ValidThreshold(th) {
		return viewName{}, false
	}
	v.Threshold = th
	if len(parts) == 5 {
		zoom, err := strconv.Atoi(parts[4])
		if err != nil {
			return viewName{}, false
		}
		v.Zoom = zoom
		v.HasZoom = true
	}
	return v, true
}

// listViews parses every view filename in a subdirectory. A missing
// subdirectory is an empty catalog.
func (f *FileStore) listViews(dir string) ([]viewName, error) {
	entries, err := os.ReadDir(filepath.Join(f.root, dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, scenario.Unavailable(dir, err)
	}
	var views []viewName
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".parquet" && ext != ".csv" {
			continue
		}
		v, ok := parseViewName(strings.TrimSuffix(name, ext))
		if !ok {
			log.Debug().Str("file", name).Msg("Skipping view file with unrecognized name")
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// ForecastDates implements Store.
func (f *FileStore) ForecastDates(ctx context.Context, country, storm string, threshold int) ([]string, error) {
	views, err := f.listViews(adminViewsDir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var dates []string
	for _, v := range views {
		if v.Country != country || v.Storm != storm || v.Threshold != threshold || seen[v.Date] {
			continue
		}
		seen[v.Date] = true
		dates = append(dates, v.Date)
	}
	sort.Strings(dates)
	return dates, nil
}

// Forecasts implements Store. Ensemble counts come from reading one track
// view per (storm, forecast) combination; the catalog is small enough that
// this stays cheap.
func (f *FileStore) Forecasts(ctx context.Context) ([]ForecastInfo, error) {
	views, err := f.listViews(trackViewsDir)
	if err != nil {
		return nil, err
	}

	// Member counts can differ across thresholds (fewer tracks overlap at
	// higher winds), so count at the lowest threshold on disk; that is the
	// reference threshold whenever its view exists.
	type comb struct{ storm, date string }
	picked := make(map[comb]viewName)
	for _, v := range views {
		c := comb{v.Storm, v.Date}
		if cur, ok := picked[c]; !ok || v.Threshold < cur.Threshold {
			picked[c] = v
		}
	}

	infos := make([]ForecastInfo, 0, len(picked))
	for c, v := range picked {
		key := scenario.Key{Country: v.Country, Storm: v.Storm, ForecastDate: v.Date, WindThreshold: v.Threshold}
		severities, err := f.TrackSeverities(ctx, key)
		if err != nil {
			return nil, err
		}
		members := make(map[int]bool)
		for _, s := range severities {
			members[s.Member] = true
		}
		infos = append(infos, ForecastInfo{
			Storm:         c.storm,
			ForecastDate:  c.date,
			EnsembleCount: len(members),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].ForecastDate != infos[j].ForecastDate {
			return infos[i].ForecastDate > infos[j].ForecastDate
		}
		return infos[i].Storm < infos[j].Storm
	})
	return infos, nil
}

// LatestForecastTime implements Store.
func (f *FileStore) LatestForecastTime(ctx context.Context) (time.Time, bool, error) {
	views, err := f.listViews(trackViewsDir)
	if err != nil {
		return time.Time{}, false, err
	}
	var max string
	for _, v := range views {
		if v.Date > max {
			max = v.Date
		}
	}
	if max == "" {
		return time.Time{}, false, nil
	}
	t, err := scenario.ParseForecastDate(max)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// WindThresholds implements Store.
func (f *FileStore) WindThresholds(ctx context.Context, country, storm, forecastDate string) ([]int, error) {
	views, err := f.listViews(adminViewsDir)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool)
	var thresholds []int
	for _, v := range views {
		if v.Country != country || v.Storm != storm || v.Date != forecastDate || seen[v.Threshold] {
			continue
		}
		seen[v.Threshold] = true
		thresholds = append(thresholds, v.Threshold)
	}
	sort.Ints(thresholds)
	return thresholds, nil
}

// AdminNames implements Store.
func (f *FileStore) AdminNames(ctx context.Context, country string) (map[string]string, error) {
	path := filepath.Join(f.root, adminNamesDir, country+".csv")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, scenario.Unavailable("admin_names", err)
	}
	return readAdminNamesCSV(path)
}
