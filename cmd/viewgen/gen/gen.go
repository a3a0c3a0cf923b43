// Package gen produces synthetic impact view files in the directory layout
// the file store consumes. Useful for demos and for exercising the MCP
// server without access to real forecast data.
package gen

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

// Config controls the generated dataset.
type Config struct {
	Country    string
	Storm      string
	Runs       int
	Members    int
	Zones      int
	Thresholds []int
	Format     string // "parquet" or "csv"
	Seed       int64
	Now        time.Time
}

// ParseThresholds parses a comma-separated threshold list and validates each
// value against the enumerated knot set.
func ParseThresholds(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		th, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		if !scenario.ValidThreshold(th) {
			return nil, fmt.Errorf("threshold %d is not one of the enumerated knot values", th)
		}
		out = append(out, th)
	}
	return out, nil
}

// zone is one synthetic administrative area with a stable population base.
type zone struct {
	id      string
	name    string
	basePop float64
}

const tilesPerZone = 4

// Generate writes one complete view tree.
func Generate(cfg Config, outDir string) error {
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Now.UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	zones := makeZones(cfg, rng)
	if err := saveAdminNames(outDir, cfg.Country, zones, cfg.Format); err != nil {
		return err
	}

	// Runs are 6 hours apart, the newest aligned to the last synoptic hour.
	newest := cfg.Now.Truncate(6 * time.Hour)
	for run := 0; run < cfg.Runs; run++ {
		issued := newest.Add(-time.Duration(cfg.Runs-1-run) * 6 * time.Hour)
		date := scenario.FormatForecastDate(issued)
		// Later runs intensify, so trend comparisons have movement to show.
		intensity := 0.7 + 0.3*float64(run+1)/float64(cfg.Runs)

		for _, th := range cfg.Thresholds {
			key := scenario.Key{Country: cfg.Country, Storm: cfg.Storm, ForecastDate: date, WindThreshold: th}
			// Higher thresholds cover less area.
			reach := intensity * 34.0 / float64(th)
			if err := generateScenario(cfg, rng, zones, key, reach, outDir); err != nil {
				return err
			}
		}
	}
	return nil
}

func makeZones(cfg Config, rng *rand.Rand) []zone {
	zones := make([]zone, cfg.Zones)
	for i := range zones {
		zones[i] = zone{
			id:      fmt.Sprintf("%s_%04d_V2", cfg.Country, i+1),
			name:    fmt.Sprintf("District %02d", i+1),
			basePop: 20000 + rng.Float64()*180000,
		}
	}
	return zones
}

func generateScenario(cfg Config, rng *rand.Rand, zones []zone, key scenario.Key, reach float64, outDir string) error {
	admins := make([]impactRow, 0, len(zones))
	tiles := make([]impactRow, 0, len(zones)*tilesPerZone)
	for _, z := range zones {
		prob := clamp(reach*(0.2+rng.Float64()*0.8), 0, 1)
		row := expectedRow(z, prob)
		admins = append(admins, row)

		// Tile values split the zone total exactly, keeping the tile sum
		// equal to the admin sum for the cross-consistency check.
		for t := 0; t < tilesPerZone; t++ {
			tile := row
			tile.ZoneID = fmt.Sprintf("%s-%d-%d", quadKeyPrefix(rng), 15, t)
			tile.EPopulation = scale(row.EPopulation, 1.0/tilesPerZone)
			tile.ESchoolAgePop = scale(row.ESchoolAgePop, 1.0/tilesPerZone)
			tile.EInfantPop = scale(row.EInfantPop, 1.0/tilesPerZone)
			tile.EBuiltSurfaceM2 = scale(row.EBuiltSurfaceM2, 1.0/tilesPerZone)
			tile.ENumSchools = scale(row.ENumSchools, 1.0/tilesPerZone)
			tile.ENumHealthCenters = scale(row.ENumHealthCenters, 1.0/tilesPerZone)
			tiles = append(tiles, tile)
		}
	}

	severities := make([]severityRow, 0, cfg.Members*len(zones))
	for member := 1; member <= cfg.Members; member++ {
		// Each member's track overlaps a random subset of zones; a few
		// members miss the country entirely.
		overlap := rng.Float64()
		if member == scenario.DeterministicMember {
			overlap = 0.6
		}
		if overlap < 0.05 {
			continue
		}
		for _, z := range zones {
			if rng.Float64() > overlap*reach {
				continue
			}
			severities = append(severities, severityRowFor(z, member, rng))
		}
	}

	schools := entityRows(rng, zones, "SCH", 3)
	hcs := entityRows(rng, zones, "HC", 1)

	return saveScenario(outDir, key, cfg.Format, admins, tiles, severities, schools, hcs)
}

func expectedRow(z zone, prob float64) impactRow {
	pop := z.basePop * prob
	return impactRow{
		ZoneID:            z.id,
		Probability:       ptr(prob),
		EPopulation:       ptr(pop),
		ESchoolAgePop:     ptr(pop * 0.22),
		EInfantPop:        ptr(pop * 0.05),
		EBuiltSurfaceM2:   ptr(pop * 40),
		ENumSchools:       ptr(pop / 800),
		ENumHealthCenters: ptr(pop / 9000),
		ESettlementClass:  ptr(13 + prob*17),
		ERelativeWealth:   ptr(prob - 0.5),
	}
}

func severityRowFor(z zone, member int, rng *rand.Rand) severityRow {
	pop := z.basePop * (0.3 + rng.Float64()*0.9)
	return severityRow{
		ZoneID:             z.id,
		EnsembleMember:     int64(member),
		SeverityPopulation: ptr(pop),
		SeveritySchoolAge:  ptr(pop * 0.22),
		SeverityInfant:     ptr(pop * 0.05),
		SeverityBuiltM2:    ptr(pop * 40),
		SeveritySchools:    ptr(pop / 800),
		SeverityHCs:        ptr(pop / 9000),
	}
}

func entityRows(rng *rand.Rand, zones []zone, prefix string, perZone int) []entityRow {
	rows := make([]entityRow, 0, len(zones)*perZone)
	for _, z := range zones {
		for i := 0; i < perZone; i++ {
			rows = append(rows, entityRow{
				EntityID:    fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8]),
				Name:        ptrStr(fmt.Sprintf("%s %s %d", z.name, prefix, i+1)),
				AdminZone:   ptrStr(z.id),
				Probability: clamp(rng.Float64(), 0, 1),
			})
		}
	}
	return rows
}

func quadKeyPrefix(rng *rand.Rand) string {
	digits := make([]byte, 8)
	for i := range digits {
		digits[i] = byte('0' + rng.Intn(4))
	}
	return string(digits)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ptr(v float64) *float64 { return &v }

func ptrStr(s string) *string { return &s }

func scale(v *float64, f float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * f
	return &scaled
}
