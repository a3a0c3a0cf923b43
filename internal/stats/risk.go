package stats

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// RiskCategory is the three-way reading of how representative the worst-case
// ensemble member is of the ensemble as a whole.
type RiskCategory string

const (
	// RiskSpecialCase marks a worst case that is a highly unlikely outlier.
	RiskSpecialCase RiskCategory = "SPECIAL_CASE"
	// RiskPlausible marks a worst case that is plausible but not the most
	// likely outcome.
	RiskPlausible RiskCategory = "PLAUSIBLE"
	// RiskRealThreat marks a worst case that a large share of the ensemble
	// clusters around.
	RiskRealThreat RiskCategory = "REAL_THREAT"
)

// RiskClassification is the category plus the human-readable rationale.
type RiskClassification struct {
	Category    RiskCategory `json:"category"`
	Description string       `json:"description"`
	Reasoning   string       `json:"reasoning"`
}

// ClassifyRisk maps (percentage of members near the worst case, worst-case to
// median ratio) to a risk category. The bands overlap, so the branches are
// evaluated in priority order and the first match wins. WorstToMedianRatio
// may be nil when the ensemble median is zero; that pairs with NaN handling
// in the fallback branch.
func ClassifyRisk(pctNearWorst float64, worstToMedianRatio *float64) RiskClassification {
	ratio := math.NaN()
	if worstToMedianRatio != nil {
		ratio = *worstToMedianRatio
	}

	switch {
	case pctNearWorst < 10.0 && ratio > 5.0:
		return RiskClassification{
			Category:    RiskSpecialCase,
			Description: "a highly unlikely outlier",
			Reasoning: fmt.Sprintf(
				"Only %.1f%% of ensemble members are within 20%% of the worst case, and the worst case is %.1fx the ensemble median.",
				pctNearWorst, ratio),
		}
	case (pctNearWorst >= 10.0 && pctNearWorst <= 30.0) || (ratio >= 3.0 && ratio <= 5.0):
		return RiskClassification{
			Category:    RiskPlausible,
			Description: "plausible, but not the most likely outcome",
			Reasoning: fmt.Sprintf(
				"%.1f%% of ensemble members are within 20%% of the worst case, with a worst-to-median ratio of %.1f.",
				pctNearWorst, ratio),
		}
	case pctNearWorst > 30.0 || ratio < 3.0:
		return RiskClassification{
			Category:    RiskRealThreat,
			Description: "a real threat the ensemble clusters around",
			Reasoning: fmt.Sprintf(
				"%.1f%% of ensemble members are within 20%% of the worst case (worst-to-median ratio %.1f).",
				pctNearWorst, ratio),
		}
	}

	// Reachable only with NaN or otherwise inconsistent inputs.
	log.Warn().
		Float64("pct_near_worst_case", pctNearWorst).
		Float64("worst_to_median_ratio", ratio).
		Msg("Risk inputs out of range, falling back to PLAUSIBLE")
	return RiskClassification{
		Category:    RiskPlausible,
		Description: "plausible, but not the most likely outcome",
		Reasoning:   "Distribution statistics were incomplete; treating the worst case as plausible by default.",
	}
}
