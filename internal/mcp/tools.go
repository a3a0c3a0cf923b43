package mcp

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
)

// Tool is one entry in the tools/list catalog.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

func stringProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func thresholdProp() *jsonschema.Schema {
	enum := make([]any, len(scenario.WindThresholds))
	for i, t := range scenario.WindThresholds {
		enum[i] = t
	}
	return &jsonschema.Schema{
		Type:        "integer",
		Description: "Wind speed threshold in knots",
		Enum:        enum,
	}
}

// scenarioSchema is the shared input shape for every per-scenario tool.
func scenarioSchema(extra map[string]*jsonschema.Schema, extraRequired ...string) *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		"country":        stringProp("ISO3 country code, e.g. JAM"),
		"storm":          stringProp("Storm name, e.g. BERYL"),
		"forecast_date":  stringProp("Forecast issue time as YYYYMMDDHHMMSS (UTC)"),
		"wind_threshold": thresholdProp(),
	}
	required := []string{"country", "storm", "forecast_date", "wind_threshold"}
	for name, schema := range extra {
		props[name] = schema
	}
	required = append(required, extraRequired...)
	return &jsonschema.Schema{Type: "object", Properties: props, Required: required}
}

func (s *Server) listTools() interface{} {
	return map[string]interface{}{
		"tools": []Tool{
			{
				Name: "get_expected_impact",
				Description: "Sum the probability-weighted expected impact (population, children, schools, health centers, built surface) for one storm scenario. " +
					"Check has_data: an all-zero result with has_data=false means no data, not a zero-impact forecast. " +
					"Call list_wind_thresholds first and use its preferred_threshold for every tool in one report; mixing thresholds breaks cross-consistency.",
				InputSchema: scenarioSchema(nil),
			},
			{
				Name: "get_worst_case",
				Description: "Find the ensemble member with the largest summed population impact and return its totals. " +
					"Ensemble members with no geographic overlap are excluded. When has_worst_case=false there is no qualifying member; do not present the zero totals as a real scenario.",
				InputSchema: scenarioSchema(nil),
			},
			{
				Name: "get_deterministic_impact",
				Description: "Sum the impact of the deterministic (control) forecast track, ensemble member " +
					fmt.Sprintf("%d.", scenario.DeterministicMember),
				InputSchema: scenarioSchema(nil),
			},
			{
				Name: "get_distribution",
				Description: "Compute the ensemble distribution for a scenario: min/p10/p25/p50/p75/p90/max/mean/stddev of population impact across members, " +
					"plus percentage_near_worst_case and worst_to_median_ratio. Feed those two numbers to classify_risk.",
				InputSchema: scenarioSchema(nil),
			},
			{
				Name: "classify_risk",
				Description: "Classify how representative the worst case is: SPECIAL_CASE (unlikely outlier), PLAUSIBLE, or REAL_THREAT. " +
					"Inputs come from get_distribution. Omit worst_to_median_ratio when the distribution reported it as null.",
				InputSchema: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"percentage_near_worst_case": {Type: "number", Description: "Share of members within 20% of the worst case, 0-100"},
						"worst_to_median_ratio":      {Type: "number", Description: "Worst-case population over ensemble median"},
					},
					Required: []string{"percentage_near_worst_case"},
				},
			},
			{
				Name: "get_admin_breakdown",
				Description: "Break a scenario's expected impact down by administrative area, largest population first. " +
					"When consistent=false the area sum disagrees with get_expected_impact, usually a wind-threshold mix-up; repeat the report with one threshold.",
				InputSchema: scenarioSchema(nil),
			},
			{
				Name: "get_exceedance_curves",
				Description: "Build exceedance curves (probability that ensemble impact exceeds a threshold) for population, children, schools and health centers, " +
					"with the deterministic track's position marked when available.",
				InputSchema: scenarioSchema(nil),
			},
			{
				Name: "find_previous_forecast",
				Description: "Find the forecast run immediately before the given one for the same country and storm. " +
					"When has_previous=false there is nothing to compare against; do not fabricate a zero baseline.",
				InputSchema: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"country":       stringProp("ISO3 country code"),
						"storm":         stringProp("Storm name"),
						"forecast_date": stringProp("Current forecast issue time, YYYYMMDDHHMMSS"),
					},
					Required: []string{"country", "storm", "forecast_date"},
				},
			},
			{
				Name: "compare_totals",
				Description: "Diff the expected totals of two forecast runs per measure. percent_change is null when the previous value was zero; " +
					"report the absolute change instead in that case.",
				InputSchema: scenarioSchema(map[string]*jsonschema.Schema{
					"previous_forecast_date": stringProp("Previous forecast issue time from find_previous_forecast"),
				}, "previous_forecast_date"),
			},
			{
				Name: "compare_admin_breakdown",
				Description: "Diff two forecast runs area by area (full outer join; areas present in only one run count as zero on the other side), " +
					"sorted by absolute population change. change < 0 means the area improved, change > 0 it worsened.",
				InputSchema: scenarioSchema(map[string]*jsonschema.Schema{
					"previous_forecast_date": stringProp("Previous forecast issue time from find_previous_forecast"),
				}, "previous_forecast_date"),
			},
			{
				Name:        "list_forecasts",
				Description: "List every (storm, forecast run) combination in the store with its ensemble member count, most recent first.",
				InputSchema: &jsonschema.Schema{Type: "object", Properties: map[string]*jsonschema.Schema{}},
			},
			{
				Name: "list_wind_thresholds",
				Description: "List the wind thresholds with data for one storm and forecast run, with the preferred analysis threshold " +
					"(50 kt when available, else the highest). Call this before the per-scenario tools.",
				InputSchema: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"country":       stringProp("ISO3 country code"),
						"storm":         stringProp("Storm name"),
						"forecast_date": stringProp("Forecast issue time, YYYYMMDDHHMMSS"),
					},
					Required: []string{"country", "storm", "forecast_date"},
				},
			},
			{
				Name:        "get_latest_forecast_time",
				Description: "Report the most recent forecast issue time across all storms and its age in hours. Runs arrive roughly every six hours.",
				InputSchema: &jsonschema.Schema{Type: "object", Properties: map[string]*jsonschema.Schema{}},
			},
			{
				Name:        "get_school_impacts",
				Description: "List individual schools with their exposure probability for a scenario, highest probability first, with the expected number of schools impacted.",
				InputSchema: scenarioSchema(nil),
			},
			{
				Name:        "get_health_center_impacts",
				Description: "List individual health facilities with their exposure probability for a scenario, highest probability first, with the expected number impacted.",
				InputSchema: scenarioSchema(nil),
			},
		},
	}
}
