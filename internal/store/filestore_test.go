package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

func writeView(t *testing.T, root, dir, name, content string) {
	t.Helper()
	full := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, name), []byte(content), 0o644))
}

func testKey(t *testing.T) scenario.Key {
	t.Helper()
	key, err := scenario.New("JAM", "BERYL", "20240703000000", 50)
	require.NoError(t, err)
	return key
}

func TestParseViewName(t *testing.T) {
	tests := []struct {
		name string
		base string
		want viewName
		ok   bool
	}{
		{
			name: "admin view",
			base: "JAM_BERYL_20240703000000_50",
			want: viewName{Country: "JAM", Storm: "BERYL", Date: "20240703000000", Threshold: 50},
			ok:   true,
		},
		{
			name: "tile view with zoom",
			base: "JAM_BERYL_20240703000000_64_15",
			want: viewName{Country: "JAM", Storm: "BERYL", Date: "20240703000000", Threshold: 64, Zoom: 15, HasZoom: true},
			ok:   true,
		},
		{name: "too few parts", base: "JAM_BERYL_20240703000000"},
		{name: "bad date", base: "JAM_BERYL_2024_50"},
		{name: "unknown threshold", base: "JAM_BERYL_20240703000000_55"},
		{name: "non-numeric zoom", base: "JAM_BERYL_20240703000000_50_xx"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseViewName(tc.base)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestFileStoreAdminImpactsCSV(t *testing.T) {
	root := t.TempDir()
	writeView(t, root, adminViewsDir, "JAM_BERYL_20240703000000_50.csv",
		"zone_id,probability,E_population,E_school_age_population,E_infant_population,E_built_surface_m2,E_num_schools,E_num_hcs\n"+
			"JAM_0001_V2,0.82,120500.5,30125.1,6025.2,1500000,140,12\n"+
			"JAM_0002_V2,0.4,,,,,,\n")

	fs, err := NewFileStore(root)
	require.NoError(t, err)

	records, err := fs.AdminImpacts(context.Background(), testKey(t))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "JAM_0001_V2", records[0].ZoneID)
	require.NotNil(t, records[0].Probability)
	assert.Equal(t, 0.82, *records[0].Probability)
	require.NotNil(t, records[0].Population)
	assert.Equal(t, 120500.5, *records[0].Population)
	assert.Equal(t, 140.0, Val(records[0].NumSchools))

	// Empty cells decode to nil, not zero.
	assert.Nil(t, records[1].Population)
	assert.Nil(t, records[1].NumSchools)
}

func TestFileStoreMissingViewIsEmpty(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	records, err := fs.AdminImpacts(context.Background(), testKey(t))
	require.NoError(t, err)
	assert.Empty(t, records)

	severities, err := fs.TrackSeverities(context.Background(), testKey(t))
	require.NoError(t, err)
	assert.Empty(t, severities)
}

func TestFileStoreTrackSeveritiesCSV(t *testing.T) {
	root := t.TempDir()
	writeView(t, root, trackViewsDir, "JAM_BERYL_20240703000000_50.csv",
		"zone_id,ensemble_member,severity_population,severity_school_age_population,severity_infant_population,severity_built_surface_m2,severity_schools,severity_hcs\n"+
			"JAM_0001_V2,1,100000,25000,5000,1200000,120,10\n"+
			"JAM_0001_V2,51,130000,32500,6500,1600000,150,13\n")

	fs, err := NewFileStore(root)
	require.NoError(t, err)

	records, err := fs.TrackSeverities(context.Background(), testKey(t))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Member)
	assert.Equal(t, 51, records[1].Member)
	assert.Equal(t, 130000.0, Val(records[1].Population))
}

func TestFileStoreCatalog(t *testing.T) {
	root := t.TempDir()
	severityHeader := "zone_id,ensemble_member,severity_population\n"
	writeView(t, root, adminViewsDir, "JAM_BERYL_20240701000000_34.csv", "zone_id\n")
	writeView(t, root, adminViewsDir, "JAM_BERYL_20240703000000_34.csv", "zone_id\n")
	writeView(t, root, adminViewsDir, "JAM_BERYL_20240703000000_50.csv", "zone_id\n")
	writeView(t, root, adminViewsDir, "JAM_RAFAEL_20241105000000_34.csv", "zone_id\n")
	writeView(t, root, adminViewsDir, "notes.txt", "ignored\n")
	writeView(t, root, trackViewsDir, "JAM_BERYL_20240703000000_34.csv",
		severityHeader+"JAM_0001_V2,1,100\nJAM_0001_V2,2,90\nJAM_0002_V2,1,50\n")
	writeView(t, root, trackViewsDir, "JAM_RAFAEL_20241105000000_34.csv",
		severityHeader+"JAM_0001_V2,1,10\n")

	fs, err := NewFileStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	dates, err := fs.ForecastDates(ctx, "JAM", "BERYL", 34)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240701000000", "20240703000000"}, dates)

	thresholds, err := fs.WindThresholds(ctx, "JAM", "BERYL", "20240703000000")
	require.NoError(t, err)
	assert.Equal(t, []int{34, 50}, thresholds)

	infos, err := fs.Forecasts(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "RAFAEL", infos[0].Storm)
	assert.Equal(t, 1, infos[0].EnsembleCount)
	assert.Equal(t, "BERYL", infos[1].Storm)
	assert.Equal(t, 2, infos[1].EnsembleCount)

	latest, ok, err := fs.LatestForecastTime(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 11, 5, 0, 0, 0, 0, time.UTC), latest)
}

func TestFileStoreLatestForecastTimeEmpty(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := fs.LatestForecastTime(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreAdminNames(t *testing.T) {
	root := t.TempDir()
	writeView(t, root, adminNamesDir, "JAM.csv",
		"zone_id,name\nJAM_0001_V2,Kingston\nJAM_0002_V2,Saint Andrew\n,missing\n")

	fs, err := NewFileStore(root)
	require.NoError(t, err)

	names, err := fs.AdminNames(context.Background(), "JAM")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"JAM_0001_V2": "Kingston",
		"JAM_0002_V2": "Saint Andrew",
	}, names)

	empty, err := fs.AdminNames(context.Background(), "HTI")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFileStoreSchoolAndHealthCenterImpacts(t *testing.T) {
	root := t.TempDir()
	entityHeader := "entity_id,name,admin_zone,probability\n"
	writeView(t, root, schoolViewsDir, "JAM_BERYL_20240703000000_50.csv",
		entityHeader+"SCH-1,May Pen Primary,JAM_0003_V2,0.9\n")
	writeView(t, root, hcViewsDir, "JAM_BERYL_20240703000000_50.csv",
		entityHeader+"HC-7,Clarendon Clinic,JAM_0003_V2,0.75\n")

	fs, err := NewFileStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	schools, err := fs.SchoolImpacts(ctx, testKey(t))
	require.NoError(t, err)
	require.Len(t, schools, 1)
	assert.Equal(t, "SCH-1", schools[0].SchoolID)
	assert.Equal(t, 0.9, schools[0].Probability)

	hcs, err := fs.HealthCenterImpacts(ctx, testKey(t))
	require.NoError(t, err)
	require.Len(t, hcs, 1)
	assert.Equal(t, "HC-7", hcs[0].FacilityID)
	assert.Equal(t, "Clarendon Clinic", hcs[0].Name)
}

func TestFileStoreControlMemberLabel(t *testing.T) {
	root := t.TempDir()
	writeView(t, root, trackViewsDir, "JAM_BERYL_20240703000000_50.csv",
		"zone_id,ensemble_member,severity_population\n"+
			"JAM_0001_V2,1,100000\n"+
			"JAM_0001_V2,control,130000\n")

	fs, err := NewFileStore(root)
	require.NoError(t, err)

	records, err := fs.TrackSeverities(context.Background(), testKey(t))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, scenario.DeterministicMember, records[1].Member)
}

func TestFileStoreForecastsCountAtLowestThreshold(t *testing.T) {
	root := t.TempDir()
	severityHeader := "zone_id,ensemble_member,severity_population\n"
	// Fewer members overlap at higher winds; the catalog must count at the
	// lowest threshold, not whichever view lists first.
	writeView(t, root, trackViewsDir, "JAM_BERYL_20240703000000_64.csv",
		severityHeader+"JAM_0001_V2,1,100\n")
	writeView(t, root, trackViewsDir, "JAM_BERYL_20240703000000_34.csv",
		severityHeader+"JAM_0001_V2,1,300\nJAM_0001_V2,2,250\nJAM_0002_V2,3,120\n")

	fs, err := NewFileStore(root)
	require.NoError(t, err)

	infos, err := fs.Forecasts(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, 3, infos[0].EnsembleCount)
}
