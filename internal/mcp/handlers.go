package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/unicef-drp/Ahead-of-the-Storm/internal/scenario"
	"github.com/unicef-drp/Ahead-of-the-Storm/internal/stats"
)

type scenarioArgs struct {
	Country       string `json:"country"`
	Storm         string `json:"storm"`
	ForecastDate  string `json:"forecast_date"`
	WindThreshold int    `json:"wind_threshold"`
}

func (a scenarioArgs) key() (scenario.Key, error) {
	return scenario.New(a.Country, a.Storm, a.ForecastDate, a.WindThreshold)
}

type compareArgs struct {
	scenarioArgs
	PreviousForecastDate string `json:"previous_forecast_date"`
}

type forecastArgs struct {
	Country      string `json:"country"`
	Storm        string `json:"storm"`
	ForecastDate string `json:"forecast_date"`
}

type riskArgs struct {
	PctNearWorstCase   float64  `json:"percentage_near_worst_case"`
	WorstToMedianRatio *float64 `json:"worst_to_median_ratio"`
}

func (s *Server) callTool(ctx context.Context, requestID string, params json.RawMessage) (interface{}, interface{}) {
	var call struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, rpcError(codeInvalidParams, "Invalid params")
	}
	if len(call.Arguments) == 0 {
		call.Arguments = json.RawMessage("{}")
	}

	log.Debug().Str("request_id", requestID).Str("tool", call.Name).Msg("Calling tool")

	data, err := s.dispatch(ctx, call.Name, call.Arguments)
	if err != nil {
		if err == errUnknownTool {
			return nil, rpcError(codeMethodNotFound, "Tool not found: "+call.Name)
		}
		log.Warn().Str("request_id", requestID).Str("tool", call.Name).Err(err).Msg("Tool call failed")
		return nil, toolError(err)
	}
	return s.textContent(data), nil
}

var errUnknownTool = errors.New("unknown tool")

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, scenario.ErrInvalidKey
	}
	return v, nil
}

func (s *Server) dispatch(ctx context.Context, name string, raw json.RawMessage) (interface{}, error) {
	switch name {
	case "get_expected_impact":
		return s.withKey(ctx, raw, func(ctx context.Context, key scenario.Key) (interface{}, error) {
			return s.engine.ExpectedImpact(ctx, key)
		})
	case "get_worst_case":
		return s.withKey(ctx, raw, func(ctx context.Context, key scenario.Key) (interface{}, error) {
			return s.engine.WorstCase(ctx, key)
		})
	case "get_deterministic_impact":
		return s.withKey(ctx, raw, func(ctx context.Context, key scenario.Key) (interface{}, error) {
			return s.engine.DeterministicImpact(ctx, key)
		})
	case "get_distribution":
		return s.withKey(ctx, raw, func(ctx context.Context, key scenario.Key) (interface{}, error) {
			return s.engine.Distribution(ctx, key)
		})
	case "get_admin_breakdown":
		return s.withKey(ctx, raw, func(ctx context.Context, key scenario.Key) (interface{}, error) {
			return s.engine.AdminBreakdown(ctx, key)
		})
	case "get_exceedance_curves":
		return s.withKey(ctx, raw, func(ctx context.Context, key scenario.Key) (interface{}, error) {
			return s.engine.Exceedance(ctx, key)
		})
	case "get_school_impacts":
		return s.withKey(ctx, raw, func(ctx context.Context, key scenario.Key) (interface{}, error) {
			return s.engine.SchoolImpacts(ctx, key)
		})
	case "get_health_center_impacts":
		return s.withKey(ctx, raw, func(ctx context.Context, key scenario.Key) (interface{}, error) {
			return s.engine.HealthCenterImpacts(ctx, key)
		})

	case "classify_risk":
		args, err := decode[riskArgs](raw)
		if err != nil {
			return nil, err
		}
		return stats.ClassifyRisk(args.PctNearWorstCase, args.WorstToMedianRatio), nil

	case "find_previous_forecast":
		args, err := decode[forecastArgs](raw)
		if err != nil {
			return nil, err
		}
		return s.engine.FindPreviousForecast(ctx, args.Country, args.Storm, args.ForecastDate)

	case "compare_totals":
		current, previous, err := s.comparePair(raw)
		if err != nil {
			return nil, err
		}
		return s.engine.CompareTotals(ctx, current, previous)

	case "compare_admin_breakdown":
		current, previous, err := s.comparePair(raw)
		if err != nil {
			return nil, err
		}
		return s.engine.CompareAdminBreakdown(ctx, current, previous)

	case "list_forecasts":
		return s.engine.Forecasts(ctx)

	case "list_wind_thresholds":
		args, err := decode[forecastArgs](raw)
		if err != nil {
			return nil, err
		}
		return s.engine.WindThresholds(ctx, args.Country, args.Storm, args.ForecastDate)

	case "get_latest_forecast_time":
		return s.engine.LatestForecast(ctx)

	default:
		return nil, errUnknownTool
	}
}

func (s *Server) withKey(ctx context.Context, raw json.RawMessage, fn func(context.Context, scenario.Key) (interface{}, error)) (interface{}, error) {
	args, err := decode[scenarioArgs](raw)
	if err != nil {
		return nil, err
	}
	key, err := args.key()
	if err != nil {
		return nil, err
	}
	return fn(ctx, key)
}

func (s *Server) comparePair(raw json.RawMessage) (current, previous scenario.Key, err error) {
	args, err := decode[compareArgs](raw)
	if err != nil {
		return current, previous, err
	}
	current, err = args.key()
	if err != nil {
		return current, previous, err
	}
	previous = current.WithForecastDate(args.PreviousForecastDate)
	if err = previous.Validate(); err != nil {
		return current, previous, err
	}
	return current, previous, nil
}
