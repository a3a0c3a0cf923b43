package engine

import (
	"context"
	"sort"
	"time"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/stats"
)

// MemberImpact is one ensemble member's severity impact summed over every
// zone its track touches.
type MemberImpact struct {
	Member int `json:"ensemble_member"`
	Totals
}

// WorstCase identifies the ensemble member with the largest summed population
// impact. HasWorstCase is false when no member has geographic overlap with
// populated zones; Member is nil in that case and the totals are zero.
type WorstCase struct {
	Key          scenario.Key `json:"scenario"`
	HasWorstCase bool         `json:"has_worst_case"`
	Member       *int         `json:"ensemble_member"`
	Totals
}

// DeterministicImpact is the summed impact of the control (deterministic)
// track, ensemble member 51. HasData is false when the control member is
// absent or touched no populated zone.
type DeterministicImpact struct {
	Key     scenario.Key `json:"scenario"`
	HasData bool         `json:"has_data"`
	Totals
}

// memberImpacts groups severity rows by ensemble member and sums each
// member's measures. Members whose summed population is exactly zero are
// dropped: their tracks have no geographic overlap and must not dilute
// worst-case or distribution analysis. The result is sorted by member id.
func (e *Engine) memberImpacts(ctx context.Context, key scenario.Key) ([]MemberImpact, error) {
	start := time.Now()
	records, err := e.store.TrackSeverities(ctx, key)
	e.observe("track_severities", start, err)
	if err != nil {
		return nil, err
	}

	byMember := make(map[int]*MemberImpact)
	for _, r := range records {
		agg, ok := byMember[r.Member]
		if !ok {
			agg = &MemberImpact{Member: r.Member}
			byMember[r.Member] = agg
		}
		agg.addImpact(r.Measures)
	}

	members := make([]MemberImpact, 0, len(byMember))
	for _, agg := range byMember {
		if agg.Population == 0 {
			continue
		}
		members = append(members, *agg)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Member < members[j].Member })
	return members, nil
}

// WorstCase returns the maximum-population ensemble member for one scenario.
// Ties on population resolve to the lowest member id, which the ascending
// member order guarantees.
func (e *Engine) WorstCase(ctx context.Context, key scenario.Key) (WorstCase, error) {
	result := WorstCase{Key: key}
	if err := key.Validate(); err != nil {
		e.opOutcome("get_worst_case", false, err)
		return result, err
	}

	members, err := e.memberImpacts(ctx, key)
	if err != nil {
		e.opOutcome("get_worst_case", false, err)
		return result, err
	}
	if len(members) == 0 {
		e.opOutcome("get_worst_case", false, nil)
		return result, nil
	}

	worst := members[0]
	for _, m := range members[1:] {
		if m.Population > worst.Population {
			worst = m
		}
	}
	member := worst.Member
	result.HasWorstCase = true
	result.Member = &member
	result.Totals = worst.Totals
	e.opOutcome("get_worst_case", true, nil)
	return result, nil
}

// DeterministicImpact returns the control track's summed impact.
func (e *Engine) DeterministicImpact(ctx context.Context, key scenario.Key) (DeterministicImpact, error) {
	result := DeterministicImpact{Key: key}
	if err := key.Validate(); err != nil {
		e.opOutcome("get_deterministic_impact", false, err)
		return result, err
	}

	members, err := e.memberImpacts(ctx, key)
	if err != nil {
		e.opOutcome("get_deterministic_impact", false, err)
		return result, err
	}
	for _, m := range members {
		if m.Member == scenario.DeterministicMember {
			result.HasData = true
			result.Totals = m.Totals
			break
		}
	}
	e.opOutcome("get_deterministic_impact", result.HasData, nil)
	return result, nil
}

// memberTotals converts member impacts into the distribution analyzer's
// input shape.
func memberTotals(members []MemberImpact) []stats.MemberTotals {
	totals := make([]stats.MemberTotals, len(members))
	for i, m := range members {
		totals[i] = stats.MemberTotals{
			Member:        m.Member,
			Population:    m.Population,
			Children:      m.TotalChildren,
			Schools:       m.NumSchools,
			HealthCenters: m.NumHealthCenters,
		}
	}
	return totals
}

// Distribution is the ensemble spread for one scenario plus the risk reading
// derived from it.
type Distribution struct {
	Key     scenario.Key `json:"scenario"`
	HasData bool         `json:"has_data"`
	stats.DistributionSummary
}

// Distribution computes percentile statistics across ensemble members.
func (e *Engine) Distribution(ctx context.Context, key scenario.Key) (Distribution, error) {
	result := Distribution{Key: key}
	if err := key.Validate(); err != nil {
		e.opOutcome("get_distribution", false, err)
		return result, err
	}

	members, err := e.memberImpacts(ctx, key)
	if err != nil {
		e.opOutcome("get_distribution", false, err)
		return result, err
	}
	result.DistributionSummary = stats.Describe(memberTotals(members))
	result.HasData = len(members) > 0
	e.opOutcome("get_distribution", result.HasData, nil)
	return result, nil
}

// ExceedanceCurves are per-measure survival functions over the ensemble,
// with the control track's position marked when present.
type ExceedanceCurves struct {
	Key           scenario.Key          `json:"scenario"`
	HasData       bool                  `json:"has_data"`
	Population    stats.ExceedanceCurve `json:"population"`
	Children      stats.ExceedanceCurve `json:"children"`
	Schools       stats.ExceedanceCurve `json:"schools"`
	HealthCenters stats.ExceedanceCurve `json:"health_centers"`
}

// Exceedance builds the exceedance curves for one scenario.
func (e *Engine) Exceedance(ctx context.Context, key scenario.Key) (ExceedanceCurves, error) {
	result := ExceedanceCurves{Key: key}
	if err := key.Validate(); err != nil {
		e.opOutcome("get_exceedance", false, err)
		return result, err
	}

	members, err := e.memberImpacts(ctx, key)
	if err != nil {
		e.opOutcome("get_exceedance", false, err)
		return result, err
	}
	if len(members) == 0 {
		e.opOutcome("get_exceedance", false, nil)
		return result, nil
	}

	var det *MemberImpact
	for i := range members {
		if members[i].Member == scenario.DeterministicMember {
			det = &members[i]
			break
		}
	}
	pick := func(field func(MemberImpact) float64) ([]float64, *float64) {
		values := make([]float64, len(members))
		for i, m := range members {
			values[i] = field(m)
		}
		if det == nil {
			return values, nil
		}
		v := field(*det)
		return values, &v
	}

	values, dv := pick(func(m MemberImpact) float64 { return m.Population })
	result.Population = stats.Exceedance(values, dv)
	values, dv = pick(func(m MemberImpact) float64 { return m.TotalChildren })
	result.Children = stats.Exceedance(values, dv)
	values, dv = pick(func(m MemberImpact) float64 { return m.NumSchools })
	result.Schools = stats.Exceedance(values, dv)
	values, dv = pick(func(m MemberImpact) float64 { return m.NumHealthCenters })
	result.HealthCenters = stats.Exceedance(values, dv)
	result.HasData = true
	e.opOutcome("get_exceedance", true, nil)
	return result, nil
}
