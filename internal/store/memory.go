package store

import (
	"context"
	"sort"
	"time"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

// Memory is an in-memory Store used by tests and demos. Fixtures populate the
// exported fields directly; queries filter the same way the real backends do.
// When Err is set, every query fails with it, which lets tests exercise the
// DataUnavailable path.
type Memory struct {
	Tiles      []ImpactRecord
	TileZooms  map[string]int // zone_id -> zoom level, defaults to Zoom
	Zoom       int
	Admins     []ImpactRecord
	Severities []SeverityRecord
	Schools    map[string][]SchoolImpact        // keyed by scenario key string
	HCs        map[string][]HealthCenterImpact  // keyed by scenario key string
	Names      map[string]map[string]string     // country -> zone_id -> name
	Err        error
}

// NewMemory returns an empty store with a default zoom of 15.
func NewMemory() *Memory {
	return &Memory{Zoom: 15}
}

// Close implements Store.
func (m *Memory) Close() {}

func sameKey(a, b scenario.Key) bool { return a == b }

// TileImpacts implements Store.
func (m *Memory) TileImpacts(_ context.Context, key scenario.Key, zoom int) ([]ImpactRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []ImpactRecord
	for _, r := range m.Tiles {
		if !sameKey(r.Key, key) {
			continue
		}
		z := m.Zoom
		if m.TileZooms != nil {
			if override, ok := m.TileZooms[r.ZoneID]; ok {
				z = override
			}
		}
		if z != zoom {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// AdminImpacts implements Store.
func (m *Memory) AdminImpacts(_ context.Context, key scenario.Key) ([]ImpactRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []ImpactRecord
	for _, r := range m.Admins {
		if sameKey(r.Key, key) {
			out = append(out, r)
		}
	}
	return out, nil
}

// TrackSeverities implements Store.
func (m *Memory) TrackSeverities(_ context.Context, key scenario.Key) ([]SeverityRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []SeverityRecord
	for _, r := range m.Severities {
		if sameKey(r.Key, key) {
			out = append(out, r)
		}
	}
	return out, nil
}

// SchoolImpacts implements Store.
func (m *Memory) SchoolImpacts(_ context.Context, key scenario.Key) ([]SchoolImpact, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Schools[key.String()], nil
}

// HealthCenterImpacts implements Store.
func (m *Memory) HealthCenterImpacts(_ context.Context, key scenario.Key) ([]HealthCenterImpact, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.HCs[key.String()], nil
}

// ForecastDates implements Store.
func (m *Memory) ForecastDates(_ context.Context, country, storm string, threshold int) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	seen := make(map[string]bool)
	var dates []string
	for _, r := range m.Admins {
		k := r.Key
		if k.Country != country || k.Storm != storm || k.WindThreshold != threshold || seen[k.ForecastDate] {
			continue
		}
		seen[k.ForecastDate] = true
		dates = append(dates, k.ForecastDate)
	}
	sort.Strings(dates)
	return dates, nil
}

// Forecasts implements Store.
func (m *Memory) Forecasts(_ context.Context) ([]ForecastInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	type comb struct{ storm, date string }
	members := make(map[comb]map[int]bool)
	for _, r := range m.Severities {
		c := comb{r.Key.Storm, r.Key.ForecastDate}
		if members[c] == nil {
			members[c] = make(map[int]bool)
		}
		members[c][r.Member] = true
	}
	infos := make([]ForecastInfo, 0, len(members))
	for c, ms := range members {
		infos = append(infos, ForecastInfo{Storm: c.storm, ForecastDate: c.date, EnsembleCount: len(ms)})
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
func (m *Memory) LatestForecastTime(_ context.Context) (time.Time, bool, error) {
	if m.Err != nil {
		return time.Time{}, false, m.Err
	}
	var max string
	for _, r := range m.Severities {
		if r.Key.ForecastDate > max {
			max = r.Key.ForecastDate
		}
	}
	for _, r := range m.Admins {
		if r.Key.ForecastDate > max {
			max = r.Key.ForecastDate
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
func (m *Memory) WindThresholds(_ context.Context, country, storm, forecastDate string) ([]int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	seen := make(map[int]bool)
	var out []int
	for _, r := range m.Admins {
		k := r.Key
		if k.Country != country || k.Storm != storm || k.ForecastDate != forecastDate || seen[k.WindThreshold] {
			continue
		}
		seen[k.WindThreshold] = true
		out = append(out, k.WindThreshold)
	}
	sort.Ints(out)
	return out, nil
}

// AdminNames implements Store.
func (m *Memory) AdminNames(_ context.Context, country string) (map[string]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Names == nil {
		return map[string]string{}, nil
	}
	names := m.Names[country]
	if names == nil {
		return map[string]string{}, nil
	}
	return names, nil
}
