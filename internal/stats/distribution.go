package stats

// MemberTotals is one ensemble member's impact summed over every zone the
// track touches. Members with zero summed population never reach this
// package; the aggregation layer excludes them before analysis.
type MemberTotals struct {
	Member        int     `json:"ensemble_member"`
	Population    float64 `json:"population"`
	Children      float64 `json:"children"`
	Schools       float64 `json:"schools"`
	HealthCenters float64 `json:"health_centers"`
}

// MeasureDistribution is the full percentile spread for one impact measure
// across ensemble members.
type MeasureDistribution struct {
	Min    float64 `json:"min"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// MeasureBrief is the abbreviated spread reported for secondary measures.
type MeasureBrief struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// DistributionSummary describes how impact varies across the ensemble for one
// scenario. Computed fresh on every call; never cached.
type DistributionSummary struct {
	Population    MeasureDistribution `json:"population"`
	Children      MeasureBrief        `json:"children"`
	Schools       MeasureBrief        `json:"schools"`
	HealthCenters MeasureBrief        `json:"health_centers"`

	TotalMembers         int      `json:"total_members"`
	MembersNearWorstCase int      `json:"members_within_20_percent_of_worst_case"`
	PctNearWorstCase     float64  `json:"percentage_near_worst_case"`
	WorstToMedianRatio   *float64 `json:"worst_to_median_ratio"` // null when the median is 0
}

func distribute(values []float64) MeasureDistribution {
	return MeasureDistribution{
		Min:    Min(values),
		P10:    Percentile(values, 10),
		P25:    Percentile(values, 25),
		P50:    Percentile(values, 50),
		P75:    Percentile(values, 75),
		P90:    Percentile(values, 90),
		Max:    Max(values),
		Mean:   Mean(values),
		StdDev: StdDev(values),
	}
}

func brief(values []float64) MeasureBrief {
	return MeasureBrief{
		Min:    Min(values),
		Median: Median(values),
		Max:    Max(values),
		Mean:   Mean(values),
	}
}

// Describe computes the DistributionSummary over per-member totals. With a
// single member the percentiles collapse to that value, stddev is 0 and every
// member is "near" the worst case. With no members the zero value is returned
// and the caller is expected to flag the result as no-data.
func Describe(members []MemberTotals) DistributionSummary {
	if len(members) == 0 {
		return DistributionSummary{}
	}

	populations := make([]float64, 0, len(members))
	children := make([]float64, 0, len(members))
	schools := make([]float64, 0, len(members))
	hcs := make([]float64, 0, len(members))
	for _, m := range members {
		populations = append(populations, m.Population)
		children = append(children, m.Children)
		schools = append(schools, m.Schools)
		hcs = append(hcs, m.HealthCenters)
	}

	summary := DistributionSummary{
		Population:    distribute(populations),
		Children:      brief(children),
		Schools:       brief(schools),
		HealthCenters: brief(hcs),
		TotalMembers:  len(members),
	}

	near := 0
	cutoff := 0.8 * summary.Population.Max
	for _, p := range populations {
		if p >= cutoff {
			near++
		}
	}
	summary.MembersNearWorstCase = near
	summary.PctNearWorstCase = Round1(float64(near) / float64(len(members)) * 100)

	if summary.Population.P50 != 0 {
		ratio := summary.Population.Max / summary.Population.P50
		summary.WorstToMedianRatio = &ratio
	}
	return summary
}
